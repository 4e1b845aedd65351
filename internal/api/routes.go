package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mdforge/mdforge"
)

// convert renders the posted markdown and streams the PDF back. Validation
// problems map to 400, generation failures after all retries to 502.
func (s *Server) convert(c echo.Context) error {
	req := &ConvertRequest{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Error: err.Error()})
	}

	tmp, err := os.CreateTemp("", "mdforge-*.pdf")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, APIError{Error: fmt.Sprintf("creating output file: %s", err)})
	}
	outputPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(outputPath) }()

	result, err := s.conv.Convert(c.Request().Context(), req.toInput(), outputPath)
	if err != nil {
		status := http.StatusInternalServerError
		if isInputError(err) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, APIError{Error: err.Error()})
	}
	if !result.Success {
		return c.JSON(http.StatusBadGateway, APIError{Error: result.Error})
	}

	if result.Metadata != nil {
		c.Response().Header().Set("X-Engine-Used", result.Metadata.EngineUsed)
		c.Response().Header().Set("X-Pages", strconv.Itoa(result.Metadata.Pages))
		c.Response().Header().Set("X-Generation-Time", result.Metadata.GenerationTime.String())
	}
	return c.File(outputPath)
}

// isInputError reports whether the conversion failed on user input rather
// than inside the pipeline.
func isInputError(err error) bool {
	for _, sentinel := range []error{
		mdforge.ErrEmptyMarkdown,
		mdforge.ErrNoOutputPath,
		mdforge.ErrProtectionUnsupported,
		mdforge.ErrInvalidPageSize,
		mdforge.ErrInvalidOrientation,
		mdforge.ErrInvalidMargin,
		mdforge.ErrInvalidFooterPosition,
		mdforge.ErrInvalidTOCDepth,
		mdforge.ErrInvalidWatermarkColor,
		mdforge.ErrInvalidOrphans,
		mdforge.ErrInvalidWidows,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// health reports per-engine health. 200 when at least one engine is healthy,
// 503 otherwise.
func (s *Server) health(c echo.Context) error {
	statuses := s.conv.EngineStatus()

	type engineHealth struct {
		Healthy   bool      `json:"healthy"`
		Errors    []string  `json:"errors,omitempty"`
		LastCheck time.Time `json:"lastCheck"`
	}

	body := make(map[string]engineHealth, len(statuses))
	anyHealthy := false
	for name, st := range statuses {
		if st.Healthy {
			anyHealthy = true
		}
		body[name] = engineHealth{
			Healthy:   st.Healthy,
			Errors:    st.Errors,
			LastCheck: st.LastCheck,
		}
	}

	status := http.StatusOK
	if !anyHealthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, body)
}

// engines lists registered and currently healthy engine names.
func (s *Server) engines(c echo.Context) error {
	return c.JSON(http.StatusOK, EngineList{
		Available: s.conv.AvailableEngines(),
		Healthy:   s.conv.HealthyEngines(),
	})
}

// metrics reports per-engine generation counters.
func (s *Server) metrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.conv.EngineMetrics())
}

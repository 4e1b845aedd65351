package mdforge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mdforge/mdforge/engine"
	"github.com/mdforge/mdforge/internal/assets"
	"github.com/mdforge/mdforge/internal/fileutil"
	"github.com/mdforge/mdforge/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
)

// Config holds all configuration for document generation.
type Config struct {
	Style    string               `yaml:"style"`    // built-in stylesheet name (empty = default)
	Workers  int                  `yaml:"workers"`  // pool size for batch work (0 = auto)
	Timeout  time.Duration        `yaml:"timeout"`  // per-conversion timeout (0 = default)
	Listen   string               `yaml:"listen"`   // HTTP daemon bind address
	Strategy string               `yaml:"strategy"` // engine selection strategy (empty = health-first)
	Output   OutputConfig         `yaml:"output"`
	Page     PageConfig           `yaml:"page"`
	Footer   FooterConfig         `yaml:"footer"`
	Engine   engine.ManagerConfig `yaml:"engine"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// PageConfig defines default page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // inches
}

// ToPageSettings converts to PageSettings, or nil when unset.
func (p PageConfig) ToPageSettings() *PageSettings {
	if p.Size == "" && p.Orientation == "" && p.Margin == 0 {
		return nil
	}
	settings := DefaultPageSettings()
	if p.Size != "" {
		settings.Size = p.Size
	}
	if p.Orientation != "" {
		settings.Orientation = p.Orientation
	}
	if p.Margin != 0 {
		settings.Margin = p.Margin
	}
	return settings
}

// FooterConfig defines page footer options.
type FooterConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Position       string `yaml:"position"` // "left", "center", "right" (default: "right")
	ShowPageNumber bool   `yaml:"showPageNumber"`
	Date           string `yaml:"date"`   // literal, or "auto" / "auto:FORMAT"
	Status         string `yaml:"status"` // Optional: "DRAFT", "FINAL", "v1.2"
	Text           string `yaml:"text"`   // Optional free-form text
}

// ToFooter converts to Footer, or nil when disabled.
func (f FooterConfig) ToFooter() *Footer {
	if !f.Enabled {
		return nil
	}
	return &Footer{
		Position:       f.Position,
		ShowPageNumber: f.ShowPageNumber,
		Date:           f.Date,
		Status:         f.Status,
		Text:           f.Text,
	}
}

// DefaultConfig returns the baseline configuration: default stylesheet,
// auto-sized worker pool, and the engine manager defaults.
func DefaultConfig() *Config {
	return &Config{
		Style:   assets.DefaultStyleName,
		Timeout: defaultTimeout,
		Listen:  ":8080",
		Engine:  engine.DefaultManagerConfig(),
	}
}

// ServiceOptions maps the configuration onto functional options for New.
func (c *Config) ServiceOptions() ([]Option, error) {
	opts := []Option{
		WithEngineConfig(c.Engine),
		WithStyle(c.Style),
	}
	if c.Timeout > 0 {
		opts = append(opts, WithTimeout(c.Timeout))
	}
	if c.Strategy != "" {
		strategy, err := engine.StrategyByName(c.Strategy, c.Engine.PrimaryEngine)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithStrategy(strategy))
	}
	return opts, nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback). Fields absent
// from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/mdforge/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "mdforge", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

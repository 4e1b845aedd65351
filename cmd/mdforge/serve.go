package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mdforge/mdforge"
	"github.com/mdforge/mdforge/internal/api"
)

// runServe starts the HTTP conversion daemon and blocks until the context is
// cancelled.
func runServe(ctx context.Context, flags *serveFlags, env *Environment) error {
	cfg, err := loadConfigForFlags(flags.common.config)
	if err != nil {
		return err
	}

	mergeStyleFlags(&flags.style, cfg)
	mergeEngineFlags(&flags.engine, cfg)
	if flags.listen != "" {
		cfg.Listen = flags.listen
	}

	log := logrus.New()
	log.SetOutput(env.Stderr)
	if flags.common.verbose {
		log.SetLevel(logrus.DebugLevel)
	} else if flags.common.quiet {
		log.SetLevel(logrus.ErrorLevel)
	}

	opts, err := cfg.ServiceOptions()
	if err != nil {
		return err
	}
	opts = append(opts, mdforge.WithLogger(log))

	svc, err := mdforge.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("starting conversion service: %w", err)
	}
	defer func() { _ = svc.Close() }()

	server := api.NewServer(svc, log)
	return server.Start(ctx, cfg.Listen)
}

// Package commands implements the prediction service CLI.
package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/epilepsywatch/riskmon/internal/config"
	"github.com/epilepsywatch/riskmon/internal/logger"
	"github.com/epilepsywatch/riskmon/internal/server"
)

type Globals struct {
	Debug   bool
	Version string
}

type ServerCmd struct {
	Listen string `help:"Listen address, overrides LISTEN_ADDR"`
}

func (s *ServerCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Setup(globals.Debug)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if s.Listen != "" {
		cfg.Listen = s.Listen
	}

	srv := server.New(cfg, globals.Version)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().
		Str("version", globals.Version).
		Str("listen", cfg.Listen).
		Msg("prediction service starting")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

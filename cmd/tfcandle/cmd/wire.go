package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rustyeddy/tfcandle/config"
	"github.com/rustyeddy/tfcandle/internal/intake"
	"github.com/rustyeddy/tfcandle/internal/logger"
	"github.com/rustyeddy/tfcandle/internal/metrics"
	"github.com/rustyeddy/tfcandle/store"
)

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	store  store.CandleStore
	intake *intake.Service
}

func (a *app) Close() error {
	return a.store.Close()
}

// setup loads configuration and opens storage. m may be nil.
func setup(ctx context.Context, m *metrics.Metrics) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log := logger.Init(cfg.Log)

	cs, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	svc := intake.New(store.NewUploads(cfg.Storage.Root), cs,
		intake.WithLogger(log),
		intake.WithMetrics(m))

	return &app{cfg: cfg, log: log, store: cs, intake: svc}, nil
}

// Package store persists uploaded price files and the candles aggregated
// from them. Every artifact is keyed by the ULID assigned to its upload.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rustyeddy/tfcandle/config"
	"github.com/rustyeddy/tfcandle/market"
	"github.com/rustyeddy/tfcandle/pkg/id"
)

var (
	// ErrNotFound is returned by Get for IDs with no stored candle.
	ErrNotFound = errors.New("candle not found")

	// ErrInvalidID is returned for IDs that are not canonical ULIDs.
	ErrInvalidID = errors.New("invalid artifact id")
)

// CandleStore persists aggregated candles. Save returns a locator for the
// written artifact (a file path, a row reference or a key).
type CandleStore interface {
	Save(ctx context.Context, c market.AggregatedCandle) (string, error)
	Get(ctx context.Context, id string) (market.AggregatedCandle, error)
	Close() error
}

// Open returns the CandleStore selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Storage) (CandleStore, error) {
	switch cfg.Backend {
	case config.BackendJSON, "":
		return NewJSON(cfg.Root)
	case config.BackendSQLite:
		return NewSQLite(cfg.DBPath)
	case config.BackendCSV:
		return NewCSV(cfg.CSVPath)
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		return NewRedis(rdb, cfg.Redis.Namespace, cfg.Redis.TTL), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func checkID(s string) error {
	if !id.Valid(s) {
		return fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return nil
}

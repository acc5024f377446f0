// Package intake turns an uploaded price file into a stored candle: it
// saves the raw upload, folds the leading window of rows and persists the
// result under the upload's ID.
package intake

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyeddy/tfcandle/internal/metrics"
	"github.com/rustyeddy/tfcandle/market"
	"github.com/rustyeddy/tfcandle/store"
)

// Result describes one processed upload.
type Result struct {
	ID         string                  `json:"id"`
	UploadPath string                  `json:"upload_path"`
	Artifact   string                  `json:"artifact"`
	Candle     market.AggregatedCandle `json:"candle"`
}

type Service struct {
	uploads *store.Uploads
	candles store.CandleStore
	log     *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(uploads *store.Uploads, candles store.CandleStore, opts ...Option) *Service {
	s := &Service{
		uploads: uploads,
		candles: candles,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process stores the upload read from r and aggregates its first timeframe
// rows. name is the client's file name and only selects the format.
func (s *Service) Process(ctx context.Context, name string, r io.Reader, timeframe int) (Result, error) {
	if timeframe < 1 {
		s.metrics.ObserveAggregation(market.KindInvalidWindowSize, 0)
		return Result{}, fmt.Errorf("%w: %d", market.ErrInvalidWindowSize, timeframe)
	}

	start := time.Now()
	aid, path, err := s.uploads.Save(ctx, uploadExt(name), r)
	if err != nil {
		s.metrics.ObserveAggregation(metrics.ResultStoreError, 0)
		return Result{}, fmt.Errorf("save upload: %w", err)
	}
	if st, err := os.Stat(path); err == nil {
		s.metrics.AddUploadBytes(st.Size())
	}
	s.log.Info("upload saved",
		slog.String("id", aid),
		slog.String("name", name),
		slog.String("path", path))

	candle, err := s.aggregate(path, timeframe)
	if err != nil {
		s.metrics.ObserveAggregation(resultLabel(err), 0)
		s.log.Warn("aggregation failed",
			slog.String("id", aid),
			slog.Int("timeframe", timeframe),
			slog.String("kind", market.ErrorKind(err)),
			slog.String("error", err.Error()))
		return Result{}, err
	}
	candle.ID = aid

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	artifact, err := s.candles.Save(ctx, candle)
	if err != nil {
		s.metrics.ObserveAggregation(metrics.ResultStoreError, 0)
		return Result{}, fmt.Errorf("save candle %s: %w", aid, err)
	}
	s.metrics.ObserveAggregation(metrics.ResultOK, candle.Rows)

	s.log.Info("candle stored",
		slog.String("id", aid),
		slog.Int("timeframe", timeframe),
		slog.Int("rows", candle.Rows),
		slog.String("artifact", artifact),
		slog.Duration("elapsed", time.Since(start)))

	return Result{ID: aid, UploadPath: path, Artifact: artifact, Candle: candle}, nil
}

// ProcessFile copies the file at path into storage and aggregates it.
func (s *Service) ProcessFile(ctx context.Context, path string, timeframe int) (Result, error) {
	if timeframe < 1 {
		s.metrics.ObserveAggregation(market.KindInvalidWindowSize, 0)
		return Result{}, fmt.Errorf("%w: %d", market.ErrInvalidWindowSize, timeframe)
	}

	f, err := os.Open(path)
	if err != nil {
		s.metrics.ObserveAggregation(market.KindSourceUnreadable, 0)
		return Result{}, fmt.Errorf("%w: %w", market.ErrSourceUnreadable, err)
	}
	defer f.Close()

	return s.Process(ctx, filepath.Base(path), f, timeframe)
}

// Get returns a previously stored candle.
func (s *Service) Get(ctx context.Context, aid string) (market.AggregatedCandle, error) {
	return s.candles.Get(ctx, aid)
}

func (s *Service) aggregate(path string, timeframe int) (market.AggregatedCandle, error) {
	rs, err := market.Open(path)
	if err != nil {
		return market.AggregatedCandle{}, err
	}
	defer rs.Close()

	return market.Aggregate(rs, timeframe)
}

func uploadExt(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		return ext
	default:
		return ".csv"
	}
}

func resultLabel(err error) string {
	if kind := market.ErrorKind(err); kind != "" {
		return kind
	}
	return metrics.ResultError
}

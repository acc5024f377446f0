package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tfcandle/market"
)

type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, c market.AggregatedCandle) (string, error) {
	if err := checkID(c.ID); err != nil {
		return "", err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO candles
		(id, instrument, date, time, open, high, low, close, volume, window_rows)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Instrument, c.Date, c.Time,
		c.Open, c.High, c.Low, c.Close, c.Volume, c.Rows,
	)
	if err != nil {
		return "", err
	}
	return s.path + "#" + c.ID, nil
}

func (s *SQLiteStore) Get(ctx context.Context, aid string) (market.AggregatedCandle, error) {
	if err := checkID(aid); err != nil {
		return market.AggregatedCandle{}, err
	}

	var c market.AggregatedCandle
	err := s.db.QueryRowContext(ctx, `
		SELECT id, instrument, date, time, open, high, low, close, volume, window_rows
		FROM candles WHERE id = ?`, aid,
	).Scan(&c.ID, &c.Instrument, &c.Date, &c.Time,
		&c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.Rows)
	if errors.Is(err, sql.ErrNoRows) {
		return market.AggregatedCandle{}, fmt.Errorf("%w: %s", ErrNotFound, aid)
	}
	if err != nil {
		return market.AggregatedCandle{}, err
	}
	return c, nil
}

// List returns the most recently stored candles, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]market.AggregatedCandle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, instrument, date, time, open, high, low, close, volume, window_rows
		FROM candles ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.AggregatedCandle
	for rows.Next() {
		var c market.AggregatedCandle
		if err := rows.Scan(&c.ID, &c.Instrument, &c.Date, &c.Time,
			&c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.Rows); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

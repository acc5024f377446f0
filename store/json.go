package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rustyeddy/tfcandle/market"
)

// JSONStore writes each candle to <root>/<id>.json, next to the upload it
// was aggregated from.
type JSONStore struct {
	root string
}

func NewJSON(root string) (*JSONStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &JSONStore{root: root}, nil
}

func (s *JSONStore) path(aid string) string {
	return filepath.Join(s.root, aid+".json")
}

func (s *JSONStore) Save(ctx context.Context, c market.AggregatedCandle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkID(c.ID); err != nil {
		return "", err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal candle: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, ".candle-*.json")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	path := s.path(c.ID)
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}

func (s *JSONStore) Get(ctx context.Context, aid string) (market.AggregatedCandle, error) {
	if err := ctx.Err(); err != nil {
		return market.AggregatedCandle{}, err
	}
	if err := checkID(aid); err != nil {
		return market.AggregatedCandle{}, err
	}

	data, err := os.ReadFile(s.path(aid))
	if errors.Is(err, fs.ErrNotExist) {
		return market.AggregatedCandle{}, fmt.Errorf("%w: %s", ErrNotFound, aid)
	}
	if err != nil {
		return market.AggregatedCandle{}, err
	}

	var c market.AggregatedCandle
	if err := json.Unmarshal(data, &c); err != nil {
		return market.AggregatedCandle{}, fmt.Errorf("decode %s: %w", aid, err)
	}
	return c, nil
}

func (s *JSONStore) Close() error {
	return nil
}

package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rustyeddy/tfcandle/market"
)

var csvHeader = []string{"id", "instrument", "date", "time", "open", "high", "low", "close", "volume", "rows"}

// CSVStore appends candles to a single ledger file. A candle saved twice
// under one ID appears twice; Get returns the last occurrence.
type CSVStore struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *csv.Writer
}

func NewCSV(path string) (*CSVStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &CSVStore{path: path, f: f, w: w}, nil
}

func (s *CSVStore) Save(ctx context.Context, c market.AggregatedCandle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkID(c.ID); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.w.Write([]string{
		c.ID,
		c.Instrument,
		strconv.Itoa(c.Date),
		c.Time,
		f(c.Open),
		f(c.High),
		f(c.Low),
		f(c.Close),
		strconv.FormatInt(c.Volume, 10),
		strconv.Itoa(c.Rows),
	})
	if err != nil {
		return "", err
	}

	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return "", err
	}
	return s.path + "#" + c.ID, nil
}

func (s *CSVStore) Get(ctx context.Context, aid string) (market.AggregatedCandle, error) {
	if err := checkID(aid); err != nil {
		return market.AggregatedCandle{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rf, err := os.Open(s.path)
	if err != nil {
		return market.AggregatedCandle{}, err
	}
	defer rf.Close()

	r := csv.NewReader(rf)
	r.FieldsPerRecord = len(csvHeader)

	var (
		found market.AggregatedCandle
		ok    bool
	)
	for line := 0; ; line++ {
		if err := ctx.Err(); err != nil {
			return market.AggregatedCandle{}, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return market.AggregatedCandle{}, err
		}
		if line == 0 || rec[0] != aid {
			continue
		}
		found, err = parseLedgerRow(rec)
		if err != nil {
			return market.AggregatedCandle{}, fmt.Errorf("ledger line %d: %w", line+1, err)
		}
		ok = true
	}

	if !ok {
		return market.AggregatedCandle{}, fmt.Errorf("%w: %s", ErrNotFound, aid)
	}
	return found, nil
}

func parseLedgerRow(rec []string) (market.AggregatedCandle, error) {
	c := market.AggregatedCandle{ID: rec[0], Instrument: rec[1], Time: rec[3]}

	var err error
	if c.Date, err = strconv.Atoi(rec[2]); err != nil {
		return c, err
	}
	for i, dst := range []*float64{&c.Open, &c.High, &c.Low, &c.Close} {
		if *dst, err = strconv.ParseFloat(rec[4+i], 64); err != nil {
			return c, err
		}
	}
	if c.Volume, err = strconv.ParseInt(rec[8], 10, 64); err != nil {
		return c, err
	}
	if c.Rows, err = strconv.Atoi(rec[9]); err != nil {
		return c, err
	}
	return c, nil
}

func (s *CSVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// f formats with the fewest digits that parse back to the same float64.
func f(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

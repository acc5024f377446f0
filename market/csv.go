package market

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// CSVRowStream reads price rows from comma separated text with a header:
//
//	BANKNIFTY,DATE,TIME,OPEN,HIGH,LOW,CLOSE,VOLUME
//
// Columns may appear in any order and extra columns are ignored.
// Blank lines are skipped and do not consume a sequence index.
type CSVRowStream struct {
	c      io.Closer
	r      *csv.Reader
	schema schema
	seq    int
}

// OpenCSV opens the file at path and reads its header.
func OpenCSV(path string) (*CSVRowStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}

	s, err := newCSVRowStream(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// NewCSVRowStream reads rows from r. Closing the stream does not close r.
func NewCSVRowStream(r io.Reader) (*CSVRowStream, error) {
	return newCSVRowStream(r, nil)
}

func newCSVRowStream(r io.Reader, c io.Closer) (*CSVRowStream, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var header []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no header row", ErrSchemaMismatch)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
		}
		if !blank(rec) {
			header = rec
			break
		}
	}

	sc, err := resolveSchema(header)
	if err != nil {
		return nil, err
	}
	return &CSVRowStream{c: c, r: cr, schema: sc}, nil
}

func (s *CSVRowStream) Next() (PriceRow, bool, error) {
	for {
		rec, err := s.r.Read()
		if errors.Is(err, io.EOF) {
			return PriceRow{}, false, nil
		}
		if err != nil {
			return PriceRow{}, false, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
		}
		if blank(rec) {
			continue
		}

		seq := s.seq
		s.seq++
		row, err := s.schema.parse(seq, rec)
		if err != nil {
			return PriceRow{}, false, err
		}
		return row, true, nil
	}
}

func (s *CSVRowStream) Close() error {
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}

package market

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type column int

const (
	colInstrument column = iota
	colDate
	colTime
	colOpen
	colHigh
	colLow
	colClose
	colVolume
	numColumns
)

var columnNames = [numColumns]string{
	colInstrument: "BANKNIFTY",
	colDate:       "DATE",
	colTime:       "TIME",
	colOpen:       "OPEN",
	colHigh:       "HIGH",
	colLow:        "LOW",
	colClose:      "CLOSE",
	colVolume:     "VOLUME",
}

// The instrument column is named after the index in the exchange dumps.
var instrumentAliases = []string{"BANKNIFTY", "INSTRUMENT", "SYMBOL", "TICKER"}

var errNotFinite = errors.New("value is not finite")

// schema maps each required column to its position in a record.
type schema struct {
	idx   [numColumns]int
	names [numColumns]string
}

func resolveSchema(header []string) (schema, error) {
	var s schema
	for c := range s.idx {
		s.idx[c] = -1
	}

	for i, h := range header {
		name := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		c, ok := lookupColumn(name)
		if !ok {
			continue
		}
		if s.idx[c] >= 0 {
			return schema{}, fmt.Errorf("%w: duplicate %s column %q", ErrSchemaMismatch, columnNames[c], strings.TrimSpace(h))
		}
		s.idx[c] = i
		s.names[c] = name
	}

	var missing []string
	for c, i := range s.idx {
		if i < 0 {
			missing = append(missing, columnNames[c])
		}
	}
	if len(missing) > 0 {
		return schema{}, fmt.Errorf("%w: missing columns %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return s, nil
}

func lookupColumn(name string) (column, bool) {
	for _, a := range instrumentAliases {
		if name == a {
			return colInstrument, true
		}
	}
	for c := colDate; c < numColumns; c++ {
		if name == columnNames[c] {
			return c, true
		}
	}
	return 0, false
}

// parse converts one record eagerly. The first failing column wins.
func (s schema) parse(seq int, rec []string) (PriceRow, error) {
	row := PriceRow{Seq: seq}

	field := func(c column) (string, error) {
		i := s.idx[c]
		if i >= len(rec) {
			return "", &RowParseError{Row: seq, Column: s.names[c], Err: errors.New("missing field")}
		}
		return strings.TrimSpace(rec[i]), nil
	}

	var err error
	var v string
	if v, err = field(colInstrument); err != nil {
		return PriceRow{}, err
	}
	row.Instrument = v

	if v, err = field(colDate); err != nil {
		return PriceRow{}, err
	}
	date, err := strconv.ParseInt(v, 10, 0)
	if err != nil {
		return PriceRow{}, s.parseErr(seq, colDate, v, err)
	}
	row.Date = int(date)

	if v, err = field(colTime); err != nil {
		return PriceRow{}, err
	}
	row.Time = v

	prices := [...]struct {
		c   column
		dst *float64
	}{
		{colOpen, &row.Open},
		{colHigh, &row.High},
		{colLow, &row.Low},
		{colClose, &row.Close},
	}
	for _, p := range prices {
		if v, err = field(p.c); err != nil {
			return PriceRow{}, err
		}
		f, err := parsePrice(v)
		if err != nil {
			return PriceRow{}, s.parseErr(seq, p.c, v, err)
		}
		*p.dst = f
	}

	if v, err = field(colVolume); err != nil {
		return PriceRow{}, err
	}
	row.Volume, err = strconv.ParseInt(v, 10, 64)
	if err != nil {
		return PriceRow{}, s.parseErr(seq, colVolume, v, err)
	}

	return row, nil
}

func (s schema) parseErr(seq int, c column, raw string, err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		err = ne.Err
	}
	return &RowParseError{Row: seq, Column: s.names[c], Value: raw, Err: err}
}

func parsePrice(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

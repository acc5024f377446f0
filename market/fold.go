package market

import "fmt"

// Fold accumulates PriceRows into a single candle. Rows must be added in
// source order: open, date and time stick to the first row while close and
// volume follow the last. The zero value is ready to use.
type Fold struct {
	n int
	c AggregatedCandle
}

func (f *Fold) Add(r PriceRow) {
	if f.n == 0 {
		f.c = AggregatedCandle{
			Instrument: r.Instrument,
			Date:       r.Date,
			Time:       r.Time,
			Open:       r.Open,
			High:       r.High,
			Low:        r.Low,
		}
	} else {
		if r.High > f.c.High {
			f.c.High = r.High
		}
		if r.Low < f.c.Low {
			f.c.Low = r.Low
		}
	}
	f.c.Close = r.Close
	f.c.Volume = r.Volume
	f.n++
	f.c.Rows = f.n
}

// Len reports how many rows have been folded.
func (f *Fold) Len() int {
	return f.n
}

// Candle returns the accumulated candle, or ErrEmptyWindow if no rows were
// added. The ID is left for the caller to assign.
func (f *Fold) Candle() (AggregatedCandle, error) {
	if f.n == 0 {
		return AggregatedCandle{}, ErrEmptyWindow
	}
	return f.c, nil
}

// Aggregate folds at most windowSize rows from the front of rs into one
// candle. A source shorter than the window yields a candle over the rows it
// has. Rows past the window are never read. Any row error inside the window
// fails the whole aggregation.
func Aggregate(rs RowStream, windowSize int) (AggregatedCandle, error) {
	if windowSize < 1 {
		return AggregatedCandle{}, fmt.Errorf("%w: %d", ErrInvalidWindowSize, windowSize)
	}

	var f Fold
	for f.Len() < windowSize {
		row, ok, err := rs.Next()
		if err != nil {
			return AggregatedCandle{}, err
		}
		if !ok {
			break
		}
		f.Add(row)
	}
	return f.Candle()
}

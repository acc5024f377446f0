package market

// PriceRow is one observation read from a price series. Seq is the 0-based
// position of the row in its source and is assigned by the row stream.
type PriceRow struct {
	Seq        int
	Instrument string
	Date       int
	Time       string
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
}

// AggregatedCandle summarizes a leading window of PriceRows.
//
// Instrument, Date, Time and Open come from the first row of the window,
// Close and Volume from the last. Volume is taken verbatim rather than
// summed because the feed reports cumulative exchange volume.
// Rows is the number of rows actually folded, which is less than the
// requested window when the source ran out early.
type AggregatedCandle struct {
	ID         string  `json:"id"`
	Instrument string  `json:"instrument"`
	Date       int     `json:"date"`
	Time       string  `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	Volume     int64   `json:"volume"`
	Rows       int     `json:"rows"`
}

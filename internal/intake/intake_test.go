package intake

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tfcandle/internal/metrics"
	"github.com/rustyeddy/tfcandle/market"
	"github.com/rustyeddy/tfcandle/store"
)

const ticksCSV = `BANKNIFTY,DATE,TIME,OPEN,HIGH,LOW,CLOSE,VOLUME
BANKNIFTY,20230101,09:15:00,100,105,99,103,1000
BANKNIFTY,20230101,09:16:00,103,110,102,108,1500
BANKNIFTY,20230101,09:17:00,108,109,104,106,900
`

type fixture struct {
	root    string
	svc     *Service
	metrics *metrics.Metrics
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, candles store.CandleStore) *fixture {
	t.Helper()

	root := filepath.Join(t.TempDir(), "media")
	if candles == nil {
		js, err := store.NewJSON(root)
		require.NoError(t, err)
		candles = js
	}

	var logs bytes.Buffer
	m := metrics.New(prometheus.NewRegistry())
	svc := New(store.NewUploads(root), candles,
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithMetrics(m))
	return &fixture{root: root, svc: svc, metrics: m, logs: &logs}
}

func TestProcess(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, nil)

	res, err := fx.svc.Process(context.Background(), "upload.csv", strings.NewReader(ticksCSV), 3)
	require.NoError(t, err)

	assert.Equal(t, market.AggregatedCandle{
		ID: res.ID, Instrument: "BANKNIFTY", Date: 20230101, Time: "09:15:00",
		Open: 100, High: 110, Low: 99, Close: 106, Volume: 900, Rows: 3,
	}, res.Candle)
	assert.Equal(t, filepath.Join(fx.root, res.ID+".csv"), res.UploadPath)
	assert.Equal(t, filepath.Join(fx.root, res.ID+".json"), res.Artifact)

	raw, err := os.ReadFile(res.UploadPath)
	require.NoError(t, err)
	assert.Equal(t, ticksCSV, string(raw))

	stored, err := fx.svc.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Candle, stored)

	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.Aggregations.WithLabelValues(metrics.ResultOK)))
	assert.Equal(t, float64(len(ticksCSV)), testutil.ToFloat64(fx.metrics.UploadBytes))
	assert.Contains(t, fx.logs.String(), "candle stored")
}

func TestProcessIDIsNotWindowDerived(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, nil)

	a, err := fx.svc.Process(context.Background(), "a.csv", strings.NewReader(ticksCSV), 2)
	require.NoError(t, err)
	b, err := fx.svc.Process(context.Background(), "b.csv", strings.NewReader(ticksCSV), 2)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, "3", a.Candle.ID)
	a.Candle.ID, b.Candle.ID = "", ""
	assert.Equal(t, a.Candle, b.Candle)
}

func TestProcessPartialWindow(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, nil)

	res, err := fx.svc.Process(context.Background(), "upload.csv", strings.NewReader(ticksCSV), 100)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Candle.Rows)
	assert.Equal(t, 106.0, res.Candle.Close)
}

func TestProcessErrors(t *testing.T) {
	t.Parallel()

	header := "BANKNIFTY,DATE,TIME,OPEN,HIGH,LOW,CLOSE,VOLUME\n"
	tests := []struct {
		name      string
		body      string
		timeframe int
		wantErr   error
		kind      string
		saved     bool
	}{
		{"zero timeframe", ticksCSV, 0, market.ErrInvalidWindowSize, market.KindInvalidWindowSize, false},
		{"negative timeframe", ticksCSV, -4, market.ErrInvalidWindowSize, market.KindInvalidWindowSize, false},
		{"header only", header, 5, market.ErrEmptyWindow, market.KindEmptyWindow, true},
		{"missing column", "DATE,TIME\n1,2\n", 1, market.ErrSchemaMismatch, market.KindSchemaMismatch, true},
		{"empty upload", "", 1, market.ErrSchemaMismatch, market.KindSchemaMismatch, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fx := newFixture(t, nil)

			_, err := fx.svc.Process(context.Background(), "x.csv", strings.NewReader(tt.body), tt.timeframe)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.Aggregations.WithLabelValues(tt.kind)))

			entries, _ := os.ReadDir(fx.root)
			var jsonFiles, uploads int
			for _, e := range entries {
				switch filepath.Ext(e.Name()) {
				case ".json":
					jsonFiles++
				case ".csv":
					uploads++
				}
			}
			assert.Zero(t, jsonFiles, "no candle may be persisted on failure")
			assert.Equal(t, tt.saved, uploads == 1)
		})
	}
}

func TestProcessRowParseError(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, nil)

	body := strings.Replace(ticksCSV, "103,110,102", "103,ABC,102", 1)
	_, err := fx.svc.Process(context.Background(), "x.csv", strings.NewReader(body), 3)

	var perr *market.RowParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Row)
	assert.Equal(t, "HIGH", perr.Column)
	assert.Contains(t, fx.logs.String(), "kind=row_parse")
}

type failingStore struct{ store.CandleStore }

func (failingStore) Save(context.Context, market.AggregatedCandle) (string, error) {
	return "", errors.New("disk full")
}

func TestProcessStoreFailure(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, failingStore{})

	_, err := fx.svc.Process(context.Background(), "x.csv", strings.NewReader(ticksCSV), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.Aggregations.WithLabelValues(metrics.ResultStoreError)))
}

func TestProcessCanceledBeforeSave(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fx.svc.Process(ctx, "x.csv", strings.NewReader(ticksCSV), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessFile(t *testing.T) {
	t.Parallel()
	fx := newFixture(t, nil)

	src := filepath.Join(t.TempDir(), "banknifty.csv")
	require.NoError(t, os.WriteFile(src, []byte(ticksCSV), 0644))

	res, err := fx.svc.ProcessFile(context.Background(), src, 2)
	require.NoError(t, err)
	assert.Equal(t, 108.0, res.Candle.Close)
	assert.Equal(t, int64(1500), res.Candle.Volume)

	_, err = fx.svc.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "gone.csv"), 2)
	assert.ErrorIs(t, err, market.ErrSourceUnreadable)
}

func TestUploadExt(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"ticks.csv":  ".csv",
		"ticks.CSV":  ".csv",
		"ticks.txt":  ".csv",
		"ticks":      ".csv",
		"book.XLSX":  ".xlsx",
		"book.xlsm":  ".xlsm",
		"../evil.sh": ".csv",
	}
	for in, want := range tests {
		assert.Equal(t, want, uploadExt(in), in)
	}
}

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tfcandle/internal/metrics"
	"github.com/rustyeddy/tfcandle/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload endpoint over HTTP",
	Long: `Start an HTTP server that accepts multipart uploads on POST /api/candles
(fields csv_file and timeframe) and returns the aggregated candle.

Also serves GET /api/candles/{id}, /healthz and /metrics.

Example:
  tfcandle serve --addr :8080 --config tfcandle.yaml`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, metrics.New(prometheus.DefaultRegisterer))
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg.Server
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	srv := server.New(cfg, a.intake, server.WithLogger(a.log))
	return srv.ListenAndServe(ctx)
}

package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/metrics"
	"github.com/bgiacomelli/meli-compliance-monitoring/internal/simserver"
)

var (
	serveAddr         string
	serveMetricsAddr  string
	serveSeed         int64
	serveErrorRate    float64
	serveNotFoundRate float64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulated compliance upstream",
	Long: `Serve the deterministic alert simulator over HTTP, exposing the same
two endpoints as the real upstream:

  GET /compliance_alerts?status=&limit=&offset=
  GET /compliance_alerts/{id}

Fault injection flags make the server answer a fraction of requests
with 503 (or details with 404), for exercising client retry behavior.

Examples:
  # Deterministic server on :8080
  compliancectl serve --addr :8080 --seed 42

  # Flaky server: 20% of requests fail
  compliancectl serve --addr :8080 --error-rate 0.2`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "metrics listen address (empty disables)")
	serveCmd.Flags().Int64Var(&serveSeed, "seed", 42, "simulator seed")
	serveCmd.Flags().Float64Var(&serveErrorRate, "error-rate", 0, "probability of a 503 answer")
	serveCmd.Flags().Float64Var(&serveNotFoundRate, "not-found-rate", 0, "probability of a 404 detail answer")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveMetricsAddr == "" {
		serveMetricsAddr = cfg.MetricsAddr
	}

	sim := simserver.New(simserver.Options{
		Seed:         serveSeed,
		ErrorRate:    serveErrorRate,
		NotFoundRate: serveNotFoundRate,
	})

	srv := &http.Server{
		Addr:         serveAddr,
		Handler:      sim.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("simulated upstream listening on %s (seed=%d)", serveAddr, serveSeed)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("simulated upstream: %w", err)
		}
		return nil
	})

	var metricsSrv *metrics.Server
	if serveMetricsAddr != "" {
		metricsSrv = metrics.NewServer(serveMetricsAddr)
		g.Go(metricsSrv.Start)
	}

	g.Go(func() error {
		select {
		case <-sigCh:
			log.Printf("received interrupt, shutting down")
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if metricsSrv != nil {
			metricsSrv.Shutdown(shutdownCtx)
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

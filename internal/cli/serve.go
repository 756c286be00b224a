package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tariffwatch/internal/ratelimit"
	"github.com/ppiankov/tariffwatch/internal/server"
)

var (
	serveListen  string
	serveMetrics string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "gRPC listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveMetrics, "metrics-listen", "", "Prometheus /metrics listen address (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC review service",
	Long:  "Runs tariffwatch as a gRPC ReviewService. Classification requests are\nrate limited per caller; the policy file is hot-reloaded when it changes.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}
	if serveMetrics != "" {
		cfg.Server.MetricsListen = serveMetrics
	}

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	logger := rt.logger

	if counts, err := rt.tickets.Counts(); err == nil {
		rt.metrics.SetOpenReviews(counts.Open)
	} else {
		logger.Warn("could not seed open review gauge", "error", err)
	}

	srv := server.New(rt.svc, server.Config{
		PolicyPath: cfg.Policy,
		RateLimit:  cfg.RateLimit,
	}, server.Options{
		Logger:  logger,
		Metrics: rt.metrics,
		Tracker: ratelimit.NewTracker(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Policy != "" && cfg.Server.ReloadPolicy {
		reloader, err := server.NewReloader(srv, cfg.Policy, logger)
		if err != nil {
			logger.Warn("hot-reload disabled", "error", err)
		} else {
			go reloader.Run(ctx)
		}
	}

	var metricsSrv *http.Server
	if cfg.Server.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", rt.metrics.Handler())
		metricsSrv = &http.Server{
			Addr:              cfg.Server.MetricsListen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "addr", cfg.Server.MetricsListen, "error", err)
			}
		}()
	}

	lis, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Listen, err)
	}

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down review service...")
		if metricsSrv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsSrv.Shutdown(shutdownCtx)
		}
		srv.GracefulStop()
	}()

	logger.Info("review service listening",
		"addr", lis.Addr().String(),
		"metrics_addr", cfg.Server.MetricsListen,
		"storage", cfg.StorageBackend(),
		"audit_log", cfg.AuditLogPath())

	return srv.Serve(lis)
}

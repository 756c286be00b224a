package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ppiankov/tariffwatch/internal/alert"
	"github.com/ppiankov/tariffwatch/internal/audit"
	"github.com/ppiankov/tariffwatch/internal/classify"
	"github.com/ppiankov/tariffwatch/internal/client"
	"github.com/ppiankov/tariffwatch/internal/config"
	"github.com/ppiankov/tariffwatch/internal/kvstore"
	"github.com/ppiankov/tariffwatch/internal/logging"
	"github.com/ppiankov/tariffwatch/internal/metrics"
	"github.com/ppiankov/tariffwatch/internal/model"
	"github.com/ppiankov/tariffwatch/internal/policy"
	"github.com/ppiankov/tariffwatch/internal/ticket"
)

// backend is the workflow surface shared by the local service and the gRPC client.
type backend interface {
	Classify(ctx context.Context, p model.ProductSpecs) (model.ClassificationResult, error)
	ListReviews(ctx context.Context) ([]ticket.Summary, error)
	GetReview(ctx context.Context, id string) (ticket.Ticket, error)
	Decide(ctx context.Context, id string, d ticket.Decision) (ticket.Ticket, audit.Event, error)
	Report(ctx context.Context, id string) (ticket.Report, error)
	Summary(ctx context.Context) (ticket.Counts, error)
	VerifyAudit(ctx context.Context) (audit.VerifyResult, error)
}

// runtime is a fully wired local service and the resources it owns.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	alerts  *alert.Dispatcher
	svc     *classify.Service
	tickets *ticket.Store
	log     *audit.Log
}

// Close waits for pending notifications and releases storage.
func (r *runtime) Close() error {
	r.alerts.Wait()
	return errors.Join(r.tickets.Close(), r.log.Close())
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newRuntime builds the classification service from cfg.
func newRuntime(cfg *config.Config) (*runtime, error) {
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	pol, hash, err := policy.LoadConfigWithHash(cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	kv, err := kvstore.Open(cfg.StorageBackend(), cfg.StorageLocation())
	if err != nil {
		return nil, fmt.Errorf("failed to open ticket store: %w", err)
	}
	tickets := ticket.NewStore(kv)

	log, err := audit.Open(cfg.AuditLogPath())
	if err != nil {
		tickets.Close()
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	m := metrics.New()
	alerts := alert.NewDispatcher(cfg.Alerts, logger)
	svc := classify.New(tickets, log, pol, hash, classify.Options{
		Logger:  logger,
		Metrics: m,
		Alerts:  alerts,
	})

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		alerts:  alerts,
		svc:     svc,
		tickets: tickets,
		log:     log,
	}, nil
}

// openBackend returns a remote client when --server is set, otherwise a
// local service over the configured storage.
func openBackend() (backend, func() error, error) {
	if serverAddr != "" {
		var opts []client.Option
		if callerID != "" {
			opts = append(opts, client.WithCallerID(callerID))
		}
		c, err := client.New(serverAddr, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to %s: %w", serverAddr, err)
		}
		return c, c.Close, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	rt, err := newRuntime(cfg)
	if err != nil {
		return nil, nil, err
	}
	return rt.svc, rt.Close, nil
}

// exitCode maps workflow errors to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return 2
	case errors.Is(err, model.ErrNotFound):
		return 3
	case errors.Is(err, model.ErrConflict):
		return 4
	case errors.Is(err, errAuditBroken):
		return 5
	default:
		return 1
	}
}

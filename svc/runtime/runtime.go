package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/transitionkit/pkg/audit"
	"github.com/dmitrymomot/transitionkit/pkg/authz"
	"github.com/dmitrymomot/transitionkit/pkg/httpserver"
	"github.com/dmitrymomot/transitionkit/pkg/logger"
	"github.com/dmitrymomot/transitionkit/pkg/metrics"
	"github.com/dmitrymomot/transitionkit/pkg/notifications"
	"github.com/dmitrymomot/transitionkit/pkg/pg"
	"github.com/dmitrymomot/transitionkit/pkg/redis"
)

// Runtime owns the process-wide collaborators of the state machines:
// the Postgres pool that backs audit rows, the Redis client that stores and
// fans out notifications, the role policy and the metrics registry.
type Runtime struct {
	cfg Config
	log *slog.Logger

	pool      *pgxpool.Pool
	ownsPool  bool
	redis     goredis.UniversalClient
	ownsRedis bool

	registry   *prometheus.Registry
	observer   *metrics.TransitionObserver
	manager    *notifications.Manager
	dispatcher *notifications.Dispatcher
	policy     *authz.Policy
	filter     *audit.MetadataFilter
	deliverers []notifications.Deliverer
}

type Option func(*Runtime)

func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.log = l
		}
	}
}

// WithPool uses an existing pool instead of connecting. The caller keeps
// ownership; Close leaves it open.
func WithPool(pool *pgxpool.Pool) Option {
	return func(r *Runtime) { r.pool = pool }
}

// WithRedisClient uses an existing client instead of connecting. The caller
// keeps ownership.
func WithRedisClient(c goredis.UniversalClient) Option {
	return func(r *Runtime) { r.redis = c }
}

func WithRegistry(reg *prometheus.Registry) Option {
	return func(r *Runtime) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// WithDeliverers adds real-time channels next to Redis pub/sub.
func WithDeliverers(d ...notifications.Deliverer) Option {
	return func(r *Runtime) { r.deliverers = append(r.deliverers, d...) }
}

// New connects to Postgres and Redis, applies audit migrations when
// cfg.AutoMigrate is set and builds the notification pipeline.
func New(ctx context.Context, cfg Config, opts ...Option) (_ *Runtime, err error) {
	r := &Runtime{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = newLogger(cfg)
	}
	if r.registry == nil {
		r.registry = prometheus.NewRegistry()
	}

	defer func() {
		if err != nil {
			r.Close()
		}
	}()

	if r.pool == nil {
		if r.pool, err = pg.Connect(ctx, cfg.Postgres); err != nil {
			return nil, err
		}
		r.ownsPool = true
	}
	if cfg.AutoMigrate {
		if err = r.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	if r.redis == nil {
		if r.redis, err = redis.Connect(ctx, cfg.Redis); err != nil {
			return nil, err
		}
		r.ownsRedis = true
	}

	if r.observer, err = metrics.NewTransitionObserver(r.registry); err != nil {
		return nil, errors.Join(ErrMetrics, err)
	}

	if cfg.RolesFile != "" {
		if r.policy, err = authz.NewPolicy(ctx, authz.FileRoles(cfg.RolesFile)); err != nil {
			return nil, errors.Join(ErrLoadPolicy, err)
		}
	}

	if cfg.AuditFilterMetadata {
		r.filter = audit.NewMetadataFilter()
	}

	if err = r.buildNotifications(); err != nil {
		return nil, err
	}

	r.log.InfoContext(ctx, "runtime ready",
		logger.Component("runtime"),
		slog.Bool("roles_loaded", r.policy != nil),
		slog.Bool("webhook_enabled", cfg.WebhookURL != ""),
	)
	return r, nil
}

func (r *Runtime) buildNotifications() error {
	templates := notifications.Templates{}
	if r.cfg.TemplatesFile != "" {
		f, err := os.Open(r.cfg.TemplatesFile)
		if err != nil {
			return errors.Join(ErrLoadTemplates, err)
		}
		defer f.Close()
		if templates, err = notifications.LoadTemplates(f); err != nil {
			return errors.Join(ErrLoadTemplates, err)
		}
	}

	prefix := r.cfg.Redis.KeyPrefix
	if prefix == "" {
		prefix = "transitionkit"
	}
	storage := notifications.NewRedisStorage(r.redis,
		notifications.WithKeyPrefix(prefix+":notifications"),
		notifications.WithRetention(r.cfg.NotificationRetention),
	)

	deliverers := []notifications.Deliverer{notifications.NewRedisDeliverer(r.redis, prefix+":notifications:live")}
	if r.cfg.WebhookURL != "" {
		wh, err := notifications.NewWebhookDeliverer(r.cfg.WebhookURL,
			notifications.WithWebhookSecret(r.cfg.WebhookSecret),
			notifications.WithWebhookRetries(r.cfg.WebhookRetries, 0, 0),
			notifications.WithWebhookDeadline(r.cfg.WebhookDeadline),
		)
		if err != nil {
			return err
		}
		deliverers = append(deliverers, wh)
	}
	deliverers = append(deliverers, r.deliverers...)

	r.manager = notifications.NewManager(storage,
		notifications.NewMultiDeliverer(r.log, deliverers...),
		notifications.WithManagerLogger(r.log),
	)

	dopts := []notifications.DispatcherOption{
		notifications.WithTemplates(templates),
		notifications.WithDispatcherLogger(r.log),
	}
	if r.cfg.NotifySkipActor {
		dopts = append(dopts, notifications.WithSkipActor())
	}
	r.dispatcher = notifications.NewDispatcher(r.manager, dopts...)
	return nil
}

func newLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{logger.WithEnvironment(cfg.Environment, cfg.ServiceName)}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(cfg.LogLevel))
	}
	switch logger.Format(cfg.LogFormat) {
	case logger.FormatJSON, logger.FormatText:
		opts = append(opts, logger.WithFormat(logger.Format(cfg.LogFormat)))
	}
	return logger.New(opts...)
}

// Migrate applies pending audit migrations.
func (r *Runtime) Migrate(ctx context.Context) error {
	if r.pool == nil {
		return ErrNoPool
	}
	return pg.Migrate(ctx, r.pool, r.cfg.Postgres, audit.Migrations, audit.MigrationsDir, r.log)
}

// SchemaVersion reports the applied audit schema version.
func (r *Runtime) SchemaVersion(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, ErrNoPool
	}
	return pg.Version(ctx, r.pool, r.cfg.Postgres, audit.Migrations, r.log)
}

// Healthcheck pings every backing service.
func (r *Runtime) Healthcheck(ctx context.Context) error {
	var errs []error
	for name, probe := range r.probes() {
		if err := probe(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Runtime) probes() map[string]httpserver.Probe {
	return map[string]httpserver.Probe{
		"postgres": pg.Healthcheck(r.pool),
		"redis":    redis.Healthcheck(r.redis),
	}
}

// OpsHandler serves liveness, readiness and the runtime's metrics.
func (r *Runtime) OpsHandler() http.Handler {
	return httpserver.NewOpsRouter(httpserver.Ops{
		Gatherer: r.registry,
		Probes:   r.probes(),
		Logger:   r.log,
	})
}

// Close releases the connections New opened.
func (r *Runtime) Close() {
	if r.ownsRedis && r.redis != nil {
		if err := r.redis.Close(); err != nil {
			r.log.Warn("failed to close redis client", logger.Error(err))
		}
	}
	if r.ownsPool && r.pool != nil {
		r.pool.Close()
	}
}

func (r *Runtime) Config() Config                        { return r.cfg }
func (r *Runtime) Logger() *slog.Logger                  { return r.log }
func (r *Runtime) Pool() *pgxpool.Pool                   { return r.pool }
func (r *Runtime) Registry() *prometheus.Registry        { return r.registry }
func (r *Runtime) Notifications() *notifications.Manager { return r.manager }
func (r *Runtime) Dispatcher() *notifications.Dispatcher { return r.dispatcher }
func (r *Runtime) Observer() *metrics.TransitionObserver { return r.observer }

// Policy returns the role policy loaded from RolesFile, or nil.
func (r *Runtime) Policy() *authz.Policy { return r.policy }

// AuditLog reads recorded transitions.
func (r *Runtime) AuditLog() *audit.Store { return audit.NewStore(r.pool) }

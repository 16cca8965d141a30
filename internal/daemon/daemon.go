package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wildtrail/wildtrail/internal/api"
	"github.com/wildtrail/wildtrail/internal/app/inbox"
	"github.com/wildtrail/wildtrail/internal/app/progression"
	"github.com/wildtrail/wildtrail/internal/health"
	"github.com/wildtrail/wildtrail/internal/infra/catalog"
	"github.com/wildtrail/wildtrail/internal/infra/redisstore"
	"github.com/wildtrail/wildtrail/internal/infra/sqlite"
	"github.com/wildtrail/wildtrail/internal/platform/logger"
)

// Daemon is the core wildtrail runtime. It wires together all services.
type Daemon struct {
	Config   Config
	Log      *logger.Logger
	DB       *sqlite.DB
	Store    progression.Store
	Catalog  *catalog.Catalog
	Sessions *Sessions
	Inbox    *inbox.Service
	Health   *health.Checker
	Server   *api.Server

	redis  *redisstore.Store
	cancel context.CancelFunc
}

// New loads the configuration and creates a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, log)
}

// NewWithConfig creates a Daemon with the given configuration. The SQLite
// database always backs the inbox and activity journal; snapshots go to the
// configured store driver.
func NewWithConfig(cfg Config, log *logger.Logger) (*Daemon, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	cat, err := catalog.LoadFile(cfg.Catalog.Overlay)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(wildtrailHome())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &Daemon{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Catalog: cat,
	}

	var storePing func(context.Context) error
	switch cfg.Store.Driver {
	case DriverSQLite:
		d.Store = db
		storePing = func(context.Context) error { return db.Ping() }
	case DriverRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rs, err := redisstore.New(ctx, redisstore.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
			Prefix:   cfg.Store.RedisPrefix,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		d.redis = rs
		d.Store = rs
		storePing = rs.Ping
	case DriverMemory:
		d.Store = progression.NewMemoryStore()
	}

	// Notification inbox
	d.Inbox = inbox.New(db, cfg.Notifications,
		inbox.WithLocation(loc),
		inbox.WithLogger(log.With("component", "inbox")),
	)

	// Per-user engine sessions
	d.Sessions = NewSessions(d.Store, log.With("component", "sessions"),
		progression.WithLocation(loc),
		progression.WithCatalog(cat),
		progression.WithLogger(log.With("component", "progression")),
		progression.WithAdaptiveDifficulty(cfg.Engine.AdaptiveDifficulty),
		progression.WithStrictInvariants(cfg.Engine.StrictInvariants),
		progression.WithMaxEvaluationPasses(cfg.Engine.MaxEvaluationPasses),
	)
	d.Sessions.SetInbox(d.Inbox)
	d.Sessions.SetJournal(db)

	// Health checker
	d.Health = health.NewChecker(storePing, wildtrailHome(), log.With("component", "health"))
	d.Health.SetInterval(cfg.HealthEvery())

	// HTTP API
	d.Server = api.NewServer(d.Sessions, cat)
	d.Server.SetInbox(d.Inbox)
	d.Server.SetHealth(d.Health)
	d.Server.SetLogger(log.With("component", "api"))
	d.Server.SetCORSOrigins(cfg.API.CORSOrigins)
	if cfg.Telemetry.Prometheus {
		d.Server.EnableMetrics()
	}

	return d, nil
}

// Serve starts the HTTP server, the expiry sweeper and the health checker,
// and blocks until ctx is done or a signal arrives.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.Health.Run(gctx)
	})
	g.Go(func() error {
		return d.Sessions.RunSweeper(gctx, d.Config.SweepEvery())
	})
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	d.Log.Info("wildtrail serving",
		"addr", "http://"+addr,
		"store", d.Config.Store.Driver,
		"metrics", d.Config.Telemetry.Prometheus,
	)

	err := g.Wait()
	d.Log.Info("wildtrail stopped")
	return err
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	d.Log.Sync()
}

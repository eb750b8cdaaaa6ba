package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/utafrali/productconsole/internal/api"
	"github.com/utafrali/productconsole/internal/config"
	"github.com/utafrali/productconsole/internal/session"
	"github.com/utafrali/productconsole/internal/store"
	"github.com/utafrali/productconsole/pkg/database"
	"github.com/utafrali/productconsole/pkg/health"
	"github.com/utafrali/productconsole/pkg/httpclient"
	"github.com/utafrali/productconsole/pkg/tracing"
)

// Health check names.
const (
	CheckAPI     = "products-api"
	CheckSession = "session"
	CheckBreaker = "circuit-breaker"
)

// App wires together all dependencies of the console.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	sessions       session.Store
	client         *api.Client
	store          *store.Store
	health         *health.Registry
	breaker        *httpclient.CircuitBreakerClient
	redis          *goredis.Client
	tracerShutdown tracing.Shutdown
}

// NewApp builds the session store, the products client and the state store.
// nav may be nil when no interactive user is present.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, nav api.Navigator) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(initCtx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
	}

	if err := a.initSessions(initCtx); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	// Retrying transport, optionally behind a circuit breaker.
	var doer httpclient.Doer = httpclient.New(cfg.HTTPClient())
	if cfg.BreakerEnabled {
		a.breaker = httpclient.NewCircuitBreakerClient(doer, cfg.CircuitBreaker(), logger)
		doer = a.breaker
	}

	opts := []api.Option{api.WithLogger(logger), api.WithTimeout(cfg.APITimeout)}
	if nav != nil {
		opts = append(opts, api.WithNavigator(nav))
	}
	a.client, err = api.NewClient(cfg.APIURL, doer, a.sessions, opts...)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, fmt.Errorf("create api client: %w", err)
	}

	a.store = store.New(a.client, logger)
	a.health = a.newHealth()

	logger.Debug("console initialized",
		slog.String("api_url", cfg.APIURL),
		slog.String("session_backend", cfg.SessionBackend),
		slog.Bool("circuit_breaker", cfg.BreakerEnabled),
	)
	return a, nil
}

func (a *App) initSessions(ctx context.Context) error {
	switch a.cfg.SessionBackend {
	case config.SessionMemory:
		a.sessions = session.NewMemory("")
	case config.SessionRedis:
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:        a.cfg.RedisAddr,
			Password:    a.cfg.RedisPassword,
			DB:          a.cfg.RedisDB,
			DialTimeout: 3 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("connect session redis: %w", err)
		}
		a.redis = client
		a.sessions = session.NewRedis(client, a.cfg.RedisNamespace, a.cfg.SessionTTL)
	default:
		f, err := session.NewFile(a.cfg.SessionFile)
		if err != nil {
			return fmt.Errorf("open session file: %w", err)
		}
		a.sessions = f
	}
	return nil
}

func (a *App) newHealth() *health.Registry {
	reg := health.NewRegistry()

	reg.RegisterCritical(CheckAPI, func(ctx context.Context) error {
		u, err := url.Parse(a.cfg.APIURL)
		if err != nil {
			return fmt.Errorf("parse API URL: %w", err)
		}
		host := u.Host
		if u.Port() == "" {
			port := "80"
			if u.Scheme == "https" {
				port = "443"
			}
			host = net.JoinHostPort(u.Hostname(), port)
		}
		d := net.Dialer{Timeout: 2 * time.Second}
		conn, err := d.DialContext(ctx, "tcp", host)
		if err != nil {
			return fmt.Errorf("products API unreachable: %w", err)
		}
		_ = conn.Close()
		return nil
	})

	reg.RegisterCritical(CheckSession, func(ctx context.Context) error {
		if r, ok := a.sessions.(*session.Redis); ok {
			return r.Ping(ctx)
		}
		_, err := a.sessions.Get(ctx)
		return err
	})

	if a.breaker != nil {
		reg.RegisterNonCritical(CheckBreaker, func(context.Context) error {
			if state := a.breaker.State(); state.String() != "closed" {
				return fmt.Errorf("circuit breaker is %s", state)
			}
			return nil
		})
	}
	return reg
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Sessions returns the credential store.
func (a *App) Sessions() session.Store { return a.sessions }

// Client returns the products API client.
func (a *App) Client() *api.Client { return a.client }

// Store returns the product state store.
func (a *App) Store() *store.Store { return a.store }

// Health returns the registry run by the doctor command.
func (a *App) Health() *health.Registry { return a.health }

// Close releases the session backend, then flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.tracerShutdown != nil {
		tracerCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

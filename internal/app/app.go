package app

import (
	"context"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/circleup/ideas-engine/internal/config"
	"github.com/circleup/ideas-engine/internal/server"
	"github.com/circleup/ideas-engine/pkg/deck"
	"github.com/circleup/ideas-engine/pkg/scoring"
	"github.com/circleup/ideas-engine/pkg/store"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// App holds all application dependencies and manages the application
// lifecycle.
type App struct {
	cfg           *config.Config
	httpServer    *server.HTTPServer
	metricsServer *server.MetricsServer
	redisClient   *redis.Client
	embedded      *miniredis.Miniredis
}

// New creates and initializes a new application instance. Components are
// initialized in dependency order: storage, engine tuning, the deck
// manager, then the servers.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	if err := app.initStorage(ctx); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	engineCfg, err := scoring.LoadConfig(cfg.EngineConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load engine config from %s: %w", cfg.EngineConfigPath, err)
	}
	logrus.Infof("loaded engine tuning from %s", cfg.EngineConfigPath)

	st := store.New(app.redisClient)
	manager := deck.NewManager(st, engineCfg)

	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, manager, st.Ping)
	if err := app.httpServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup http server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	logrus.Info("application initialized successfully")
	return app, nil
}

// initStorage connects the redis client. With EMBEDDED_STORE set, an
// in-process store is started instead, for local development and the
// on-device build where no external redis exists.
func (a *App) initStorage(ctx context.Context) error {
	addr := a.cfg.RedisAddr()
	password := a.cfg.RedisPassword
	db := a.cfg.RedisDB

	if a.cfg.EmbeddedStore {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("failed to start embedded store: %w", err)
		}
		a.embedded = mr
		addr, password, db = mr.Addr(), "", 0
		logrus.Infof("using embedded store at %s", addr)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(a.cfg.RedisRetryDelayMs) * time.Millisecond
	retries := backoff.WithMaxRetries(b, uint64(a.cfg.RedisMaxRetries))

	err := backoff.Retry(
		func() error {
			if _, err := client.Ping(ctx).Result(); err != nil {
				logrus.Warnf("redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		retries,
	)
	if err != nil {
		return err
	}

	a.redisClient = client
	logrus.Info("redis client initialized")
	return nil
}

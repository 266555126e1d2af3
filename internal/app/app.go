package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/assistant-store/internal/data/db"
	"github.com/yungbote/assistant-store/internal/http"
	"github.com/yungbote/assistant-store/internal/observability"
	"github.com/yungbote/assistant-store/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *db.DatabaseService
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, cfg.OTel)
	metrics := observability.Init(log, cfg.Metrics)

	dbs, err := db.NewDatabaseService(log, db.Config{URL: cfg.DatabaseURL, Echo: cfg.DBEcho})
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := dbs.AutoMigrateAll(); err != nil {
			_ = dbs.Close()
			log.Sync()
			return nil, fmt.Errorf("database automigrate: %w", err)
		}
	}
	theDB := dbs.DB()

	reposet := wireRepos(theDB, log)
	clientset := wireClients(log, cfg)
	serviceset := wireServices(theDB, log, reposet, clientset)

	sqlDB, err := theDB.DB()
	if err != nil {
		log.Warn("sql handle unavailable; healthcheck will skip the database ping", "error", err)
		sqlDB = nil
	}
	handlerset := wireHandlers(log, sqlDB, serviceset)
	server := wireServer(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		DB:           dbs,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background collectors. It is a no-op when metrics are disabled.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.RegisterDBPool(a.Log, a.DB.DB())
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.RedisAddr)
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Server.Addr())
	return a.Server.Run()
}

// Shutdown drains HTTP, then releases the cache, database and tracer in that order.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var firstErr error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	a.Close()
	if a.otelShutdown != nil {
		flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(flushCtx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && a.Log != nil {
			a.Log.Warn("database close failed", "error", err)
		}
		a.DB = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

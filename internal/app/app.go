package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/prompt-battle/internal/data/db"
	httpserver "github.com/yungbote/prompt-battle/internal/http"
	"github.com/yungbote/prompt-battle/internal/observability"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/realtime"
)

const sessionSweepInterval = time.Minute

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	SSEHub   *realtime.SSEHub

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// OpenDB connects and migrates the configured store. Used by both serve and
// migrate.
func OpenDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	theDB, err := db.Open(log, db.Options{
		Driver:      cfg.DBDriver,
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSN,
	})
	if err != nil {
		return nil, fmt.Errorf("init %s: %w", cfg.DBDriver, err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		return nil, fmt.Errorf("%s automigrate: %w", cfg.DBDriver, err)
	}
	return theDB, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	theDB, err := OpenDB(log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}

	ssehub := realtime.NewSSEHub(log)

	reposet := wireRepos(theDB, log)

	clientset, err := wireClients(log, cfg)
	if err != nil {
		closeDB(theDB)
		_ = otelShutdown(ctx)
		return nil, err
	}

	serviceset, err := wireServices(log, cfg, reposet, ssehub, clientset)
	if err != nil {
		clientset.Close()
		closeDB(theDB)
		_ = otelShutdown(ctx)
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, serviceset)
	middleware := wireMiddleware(log, cfg)
	router := wireRouter(log, cfg, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		SSEHub:       ssehub,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background loops: the job worker pool, the session
// janitor, the optional retention sweeper and the redis forwarder.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			cancel()
			a.cancel = nil
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
	}

	if a.Services.JobWorker != nil {
		a.Services.JobWorker.Start(ctx)
	}

	a.goLoop(func() { a.Services.Sessions.Run(ctx, sessionSweepInterval) })
	if a.Services.Retention != nil {
		a.goLoop(func() { a.Services.Retention.Run(ctx) })
	}
	return nil
}

func (a *App) goLoop(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := &httpserver.Server{Engine: a.Router}
	addr := ":" + a.Cfg.Port
	a.Log.Info("HTTP server listening", "addr", addr)
	return srv.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.JobWorker != nil {
		a.Services.JobWorker.Wait()
	}
	a.wg.Wait()
	a.Clients.Close()
	if a.otelShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(shutdownCtx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	closeDB(a.DB)
	if a.Log != nil {
		a.Log.Sync()
	}
}

func closeDB(gdb *gorm.DB) {
	if gdb == nil {
		return
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Package server initializes and runs the media gateway: it opens the
// database, applies migrations, wires the services and serves the HTTP
// API until an OS signal asks it to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/9r89uf8/mediagate/internal/logging"
	"github.com/9r89uf8/mediagate/internal/server/config"
	"github.com/9r89uf8/mediagate/internal/server/httpapi"
	"github.com/9r89uf8/mediagate/internal/server/repositories/repomanager"
	"github.com/9r89uf8/mediagate/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	verifier := services.NewHTTPVerifier(cfg.VerifyEndpoint, cfg.VerifySecret)
	permitService := services.NewPermitService(db, rm, verifier, cfg, logger)
	storageService := services.NewStorageService(cfg, logger)
	mediaService := services.NewMediaService(db, rm, logger)

	handlers := httpapi.NewHandlers(permitService, storageService, mediaService, logger)
	srv := httpapi.NewServer(cfg, logger, handlers)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err)
	}
}

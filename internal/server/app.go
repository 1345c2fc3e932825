// Package server initializes and runs the transfer server: it wires the
// configuration, database, blob backend, repositories and HTTP transport,
// and handles graceful shutdown.
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

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/gursmeep404/sharden/internal/logging"
	"github.com/gursmeep404/sharden/internal/server/blob"
	"github.com/gursmeep404/sharden/internal/server/config"
	"github.com/gursmeep404/sharden/internal/server/httpapi"
	"github.com/gursmeep404/sharden/internal/server/repositories/repomanager"
	"github.com/gursmeep404/sharden/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.HTTPServer
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	var db *sql.DB
	var repos repomanager.RepositoryManager

	if c.BlobBackend == config.BlobBackendMemory {
		// fully in-process mode for local development
		repos = repomanager.NewInMemoryRepositoryManager()
	} else {
		var err error
		db, err = sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		repos = repomanager.NewPostgresRepositoryManager()
		if err := repos.RunMigrations(context.Background(), db); err != nil {
			return nil, fmt.Errorf("migration error: %w", err)
		}
	}

	blobs, err := newBlobStore(c)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	svc := services.NewTransferService(db, repos, blobs, c, logger)
	srv := httpapi.NewHTTPServer(c, logger, svc)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func newBlobStore(c *config.Config) (blob.Store, error) {
	switch c.BlobBackend {
	case config.BlobBackendS3:
		return blob.NewS3Store(context.Background(), c)
	case config.BlobBackendFile:
		return blob.NewFileStore(c.UploadDir)
	case config.BlobBackendMemory:
		return blob.NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend: %s", c.BlobBackend)
	}
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

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err.Error())
		}
	}
}

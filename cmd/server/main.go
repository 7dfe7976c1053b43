package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/soaringjerry/Intake/internal/api"
	"github.com/soaringjerry/Intake/internal/config"
	dbstore "github.com/soaringjerry/Intake/internal/db"
	"github.com/soaringjerry/Intake/internal/forms"
	"github.com/soaringjerry/Intake/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	sqlDB, err := sql.Open("sqlite3", cfg.DatabaseURL)
	if err != nil {
		logg.Fatalw("open database", "url", cfg.DatabaseURL, "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			logg.Warnw("close database", "err", cerr)
		}
	}()
	if err := sqlDB.Ping(); err != nil {
		logg.Fatalw("ping database", "err", err)
	}
	if err := dbstore.RunMigrations(sqlDB); err != nil {
		logg.Fatalw("apply schema", "err", err)
	}

	store, err := dbstore.NewSQLiteStore(sqlDB)
	if err != nil {
		logg.Fatalw("init store", "err", err)
	}
	service := forms.NewFormService(store)
	router := api.NewRouter(service, logg, api.Options{
		StaticDir: cfg.StaticDir,
		Ping:      sqlDB.PingContext,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()
	logg.Infow("intake server listening", "addr", cfg.Addr)

	waitForShutdown(srv, errChan, logg)
}

// waitForShutdown blocks until the server stops on its own or the process
// receives SIGINT/SIGTERM, then drains in-flight requests.
func waitForShutdown(srv *http.Server, errChan <-chan error, logg *zap.SugaredLogger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatalw("server stopped", "err", err)
		}
	case sig := <-sigChan:
		logg.Infow("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logg.Warnw("shutdown", "err", err)
		}
	}
}

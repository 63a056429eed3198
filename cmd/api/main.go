package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/hci-itam/internal/config"
	"github.com/crucial707/hci-itam/internal/db"
)

func newLogger(format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg.LogFormat))
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	version, err := db.Run(cfg.DatabaseURL())
	if err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}
	slog.Info("database schema ready", "version", version)

	database, err := db.Connect(
		cfg.DatabaseURL(),
		db.Pool{MaxOpenConns: cfg.DBMaxOpenConns, MaxIdleConns: cfg.DBMaxIdleConns},
	)
	if err != nil {
		slog.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		tls := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
		slog.Info("starting server", "addr", srv.Addr, "tls", tls, "env", cfg.Env)
		var err error
		if tls {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown server", "error", err)
	}
}

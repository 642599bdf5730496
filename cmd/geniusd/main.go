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

	"github.com/Tangorin-AP/genius-next-sub000/internal/config"
	"github.com/Tangorin-AP/genius-next-sub000/internal/storage"
	"github.com/Tangorin-AP/genius-next-sub000/internal/sync"
	"github.com/Tangorin-AP/genius-next-sub000/internal/web"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		slog.Error("failed to parse flags", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load(flags)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncFn := func(ctx context.Context) error {
		return sync.Run(ctx, db, cfg.ReposDir)
	}
	if cfg.SyncOnStart {
		if err := syncFn(ctx); err != nil {
			slog.Error("startup sync failed", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: web.NewServer(db, cfg.Session, syncFn),
	}

	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

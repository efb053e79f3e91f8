package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"go.uber.org/zap"

	"github.com/vi13x/sats-wallet/internal/app"
	"github.com/vi13x/sats-wallet/internal/backend"
	"github.com/vi13x/sats-wallet/internal/config"
	"github.com/vi13x/sats-wallet/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func start() error {
	cfg := config.Load(nil)
	log, err := logger.New("walletd", cfg.LogLevel, cfg.LogOutput)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	node, db, err := app.OpenNode(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	srv := &http.Server{
		Addr:              cfg.DaemonAddr,
		Handler:           backend.NewHandler(node, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var g run.Group
	g.Add(func() error {
		log.Info("starting server", zap.String("address", srv.Addr), zap.String("node_id", node.NodeID()))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	})
	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var sig run.SignalError
	if errors.As(err, &sig) {
		log.Info("shutting down", zap.String("signal", sig.Signal.String()))
		return nil
	}
	return err
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vi13x/sats-wallet/internal/app"
	"github.com/vi13x/sats-wallet/internal/cli"
	"github.com/vi13x/sats-wallet/internal/clipboard"
	"github.com/vi13x/sats-wallet/internal/config"
	"github.com/vi13x/sats-wallet/internal/logger"
	"github.com/vi13x/sats-wallet/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Println("Bye!")
}

func run() error {
	cfg := config.Load(nil)
	// keep the screens clean unless the log goes to a file
	if cfg.LogOutput == "stderr" || cfg.LogOutput == "stdout" {
		cfg.LogLevel = "error"
	}
	log, err := logger.New("wallet", cfg.LogLevel, cfg.LogOutput)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := app.Open(cfg, clipboard.System{}, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui := cli.NewUI(service.NewWallet(a.Deps), a.Deps.Clipboard, cfg.ReportsDir(), bufio.NewReader(os.Stdin), os.Stdout)
	return ui.Run(ctx)
}

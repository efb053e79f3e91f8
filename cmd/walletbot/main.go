package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/run"
	"go.uber.org/zap"

	"github.com/vi13x/sats-wallet/internal/app"
	"github.com/vi13x/sats-wallet/internal/bot"
	"github.com/vi13x/sats-wallet/internal/clipboard"
	"github.com/vi13x/sats-wallet/internal/config"
	"github.com/vi13x/sats-wallet/internal/logger"
)

var errNoToken = errors.New("TELEGRAM_BOT_TOKEN is not set")

func main() {
	if err := start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func start() error {
	cfg := config.Load(nil)
	log, err := logger.New("walletbot", cfg.LogLevel, cfg.LogOutput)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.TelegramToken == "" {
		return errNoToken
	}

	// bot sessions bring their own clipboards
	a, err := app.Open(cfg, &clipboard.Memory{}, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	log.Info("authorized", zap.String("account", api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	b := bot.New(api, a.Deps, log)
	b.AllowChats(cfg.TelegramChatIDs...)

	var g run.Group
	{
		ctx, cancel := context.WithCancel(context.Background())
		g.Add(func() error {
			return b.Run(ctx, updates)
		}, func(error) {
			api.StopReceivingUpdates()
			cancel()
		})
	}
	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var sig run.SignalError
	if errors.As(err, &sig) {
		log.Info("shutting down", zap.String("signal", sig.Signal.String()))
		return nil
	}
	return err
}

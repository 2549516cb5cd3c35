package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"zametkabot/config"
	"zametkabot/internal/bot"
	"zametkabot/internal/dates"
	"zametkabot/internal/scheduler"
	"zametkabot/internal/service"
	"zametkabot/internal/storage"
)

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalw("failed to load config", "err", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatalw("failed to init storage", "err", err)
	}
	defer store.Close()

	parser := dates.NewParser()

	noteSvc := service.NewNoteService(store)
	mediaSvc := service.NewMediaService(store)
	reminderSvc := service.NewReminderService(store, parser, cfg.Timezone)
	backupSvc := service.NewBackupService(store, cfg.Timezone)

	tgBot, err := bot.New(cfg, store, noteSvc, mediaSvc, reminderSvc, backupSvc, logger)
	if err != nil {
		logger.Fatalw("failed to init bot", "err", err)
	}

	sched := scheduler.New(cfg, store, logger)
	sched.SetSender(tgBot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			logger.Errorw("scheduler error", "err", err)
		}
	}()

	go func() {
		if err := tgBot.Start(ctx); err != nil {
			logger.Errorw("bot error", "err", err)
		}
	}()

	logger.Info("zametkabot started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")

	cancel()
	sched.Stop()

	logger.Info("zametkabot stopped")
}

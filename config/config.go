package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	DatabasePath  string
	Timezone      *time.Location
	PollInterval  time.Duration
	PageSize      int
}

func Load() (*Config, error) {
	// .env опционален, переменные окружения имеют приоритет
	_ = godotenv.Load()

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/zametkabot.db"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "Europe/Moscow"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	pollInterval := time.Minute
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		pollInterval, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
		}
	}

	pageSize := 5
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		pageSize, err = strconv.Atoi(v)
		if err != nil || pageSize < 1 {
			return nil, fmt.Errorf("invalid PAGE_SIZE: %s", v)
		}
	}

	return &Config{
		TelegramToken: token,
		DatabasePath:  dbPath,
		Timezone:      tz,
		PollInterval:  pollInterval,
		PageSize:      pageSize,
	}, nil
}

// Package scheduler периодически доставляет назревшие напоминания.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jmhodges/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"zametkabot/config"
	"zametkabot/internal/domain"
)

// Store — срез хранилища, нужный планировщику.
type Store interface {
	DueReminders(now time.Time) ([]*domain.DueReminder, error)
	AdvanceOrRemoveReminder(id int64, repeat domain.Recurrence, current time.Time) error
}

type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

type Scheduler struct {
	cron   *cron.Cron
	cfg    *config.Config
	store  Store
	sender MessageSender
	clk    clock.Clock
	log    *zap.SugaredLogger
}

func New(cfg *config.Config, store Store, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLocation(cfg.Timezone)),
		cfg:   cfg,
		store: store,
		clk:   clock.New(),
		log:   log,
	}
}

func (s *Scheduler) SetSender(sender MessageSender) {
	s.sender = sender
}

// SetClock replaces the wall clock. Tests use clock.NewFake().
func (s *Scheduler) SetClock(clk clock.Clock) {
	s.clk = clk
}

// Start registers the periodic check and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.cfg.PollInterval)
	if _, err := s.cron.AddFunc(spec, s.Tick); err != nil {
		return fmt.Errorf("add reminder check: %w", err)
	}

	s.cron.Start()
	s.log.Infof("scheduler started (tz: %s, interval: %s)", s.cfg.Timezone, s.cfg.PollInterval)

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// Tick — один проход: выбрать назревшие, доставить, применить периодичность.
// Ошибка доставки одного напоминания не прерывает проход: напоминание
// остаётся назревшим и будет повторено на следующем тике.
func (s *Scheduler) Tick() {
	if s.sender == nil {
		return
	}

	now := s.clk.Now().In(s.cfg.Timezone)

	due, err := s.store.DueReminders(now)
	if err != nil {
		s.log.Errorw("failed to fetch due reminders", "err", err)
		return
	}

	for _, r := range due {
		text := fmt.Sprintf("🔔 <b>Напоминание!</b>\n\n%s", r.NoteText)
		if err := s.sender.SendMessage(r.UserID, text); err != nil {
			s.log.Errorw("failed to deliver reminder", "reminder_id", r.ID, "user_id", r.UserID, "err", err)
			continue
		}

		if err := s.store.AdvanceOrRemoveReminder(r.ID, r.Repeat, r.RemindAt); err != nil {
			s.log.Errorw("failed to advance reminder", "reminder_id", r.ID, "err", err)
		}
	}
}

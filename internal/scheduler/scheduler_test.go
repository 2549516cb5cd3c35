package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"zametkabot/config"
	"zametkabot/internal/domain"
)

type advanceCall struct {
	id      int64
	repeat  domain.Recurrence
	current time.Time
}

type fakeStore struct {
	due      []*domain.DueReminder
	fetchErr error
	advanced []advanceCall
}

func (f *fakeStore) DueReminders(now time.Time) ([]*domain.DueReminder, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var due []*domain.DueReminder
	for _, r := range f.due {
		if !r.RemindAt.After(now) {
			due = append(due, r)
		}
	}
	return due, nil
}

func (f *fakeStore) AdvanceOrRemoveReminder(id int64, repeat domain.Recurrence, current time.Time) error {
	f.advanced = append(f.advanced, advanceCall{id: id, repeat: repeat, current: current})
	return nil
}

type fakeSender struct {
	sent    map[int64][]string
	failFor map[int64]error
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[int64][]string), failFor: make(map[int64]error)}
}

func (f *fakeSender) SendMessage(chatID int64, text string) error {
	if err := f.failFor[chatID]; err != nil {
		return err
	}
	f.sent[chatID] = append(f.sent[chatID], text)
	return nil
}

func newTestScheduler(t *testing.T, store Store) (*Scheduler, *fakeSender, clock.FakeClock) {
	t.Helper()
	cfg := &config.Config{Timezone: time.UTC, PollInterval: time.Minute}
	s := New(cfg, store, zap.NewNop().Sugar())

	sender := newFakeSender()
	s.SetSender(sender)

	clk := clock.NewFake()
	clk.Set(time.Date(2024, 1, 2, 18, 1, 0, 0, time.UTC))
	s.SetClock(clk)

	return s, sender, clk
}

func TestTickDeliversDueOnly(t *testing.T) {
	store := &fakeStore{due: []*domain.DueReminder{
		{ID: 1, UserID: 100, NoteText: "Купить молоко", RemindAt: time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC), Repeat: domain.RepeatNone},
		{ID: 2, UserID: 200, NoteText: "Позвонить маме", RemindAt: time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC), Repeat: domain.RepeatNone},
	}}

	s, sender, _ := newTestScheduler(t, store)
	s.Tick()

	require.Len(t, sender.sent[100], 1, "due reminder delivered exactly once")
	assert.Contains(t, sender.sent[100][0], "Купить молоко")
	assert.Empty(t, sender.sent[200], "future reminder must not fire")

	require.Len(t, store.advanced, 1)
	assert.Equal(t, int64(1), store.advanced[0].id)
}

func TestTickAppliesRecurrenceAfterDelivery(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{due: []*domain.DueReminder{
		{ID: 5, UserID: 100, NoteText: "Полить цветы", RemindAt: at, Repeat: domain.RepeatWeekly},
	}}

	s, sender, clk := newTestScheduler(t, store)
	clk.Set(time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC))
	s.Tick()

	require.Len(t, sender.sent[100], 1)
	require.Len(t, store.advanced, 1)
	assert.Equal(t, domain.RepeatWeekly, store.advanced[0].repeat)
	assert.Equal(t, at, store.advanced[0].current, "advance is computed from remind_at, not from now")
}

func TestTickDeliveryFailureKeepsReminderDue(t *testing.T) {
	store := &fakeStore{due: []*domain.DueReminder{
		{ID: 1, UserID: 100, NoteText: "первое", RemindAt: time.Date(2024, 1, 2, 17, 0, 0, 0, time.UTC)},
		{ID: 2, UserID: 200, NoteText: "второе", RemindAt: time.Date(2024, 1, 2, 17, 30, 0, 0, time.UTC)},
	}}

	s, sender, _ := newTestScheduler(t, store)
	sender.failFor[100] = fmt.Errorf("chat unreachable")

	s.Tick()

	// сбой одного получателя не мешает остальным
	require.Len(t, sender.sent[200], 1)
	require.Len(t, store.advanced, 1, "failed delivery must not be advanced")
	assert.Equal(t, int64(2), store.advanced[0].id)

	// на следующем тике доставка повторяется
	delete(sender.failFor, 100)
	s.Tick()
	require.Len(t, sender.sent[100], 1)
}

func TestTickSurvivesFetchError(t *testing.T) {
	store := &fakeStore{fetchErr: fmt.Errorf("database is locked")}
	s, sender, _ := newTestScheduler(t, store)

	assert.NotPanics(t, func() { s.Tick() })
	assert.Empty(t, sender.sent)
	assert.Empty(t, store.advanced)
}

func TestTickEmptyDueSetIsNoop(t *testing.T) {
	store := &fakeStore{}
	s, sender, _ := newTestScheduler(t, store)

	s.Tick()

	assert.Empty(t, sender.sent)
	assert.Empty(t, store.advanced)
}

func TestTickWithoutSenderIsNoop(t *testing.T) {
	store := &fakeStore{due: []*domain.DueReminder{
		{ID: 1, UserID: 100, NoteText: "x", RemindAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	cfg := &config.Config{Timezone: time.UTC, PollInterval: time.Minute}
	s := New(cfg, store, zap.NewNop().Sugar())

	assert.NotPanics(t, func() { s.Tick() })
	assert.Empty(t, store.advanced)
}

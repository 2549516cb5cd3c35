package service

import (
	"time"

	"github.com/jmhodges/clock"
	"github.com/pkg/errors"

	"zametkabot/internal/dates"
	"zametkabot/internal/domain"
	"zametkabot/internal/storage"
)

type ReminderService struct {
	storage  *storage.Storage
	parser   *dates.Parser
	timezone *time.Location
	clk      clock.Clock
}

func NewReminderService(s *storage.Storage, parser *dates.Parser, tz *time.Location) *ReminderService {
	return &ReminderService{
		storage:  s,
		parser:   parser,
		timezone: tz,
		clk:      clock.New(),
	}
}

// SetClock replaces the wall clock for tests.
func (s *ReminderService) SetClock(clk clock.Clock) {
	s.clk = clk
}

// Now — текущее время в зоне бота. Одна и та же зона используется и при
// разборе даты, и при сравнении remind_at в планировщике.
func (s *ReminderService) Now() time.Time {
	return s.clk.Now().In(s.timezone)
}

func (s *ReminderService) Create(userID, noteID int64, at time.Time, repeat domain.Recurrence) (*domain.Reminder, error) {
	if !repeat.Valid() {
		return nil, errors.Errorf("unknown recurrence: %s", repeat)
	}
	if !at.After(s.Now()) {
		return nil, errors.New("remind_at must be in the future")
	}

	note, err := s.storage.GetNote(noteID)
	if err != nil {
		return nil, errors.Wrap(err, "get note")
	}
	if note == nil {
		return nil, errors.New("note not found")
	}
	if note.UserID != userID {
		return nil, errors.New("access denied")
	}

	reminder := &domain.Reminder{
		UserID:   userID,
		NoteID:   noteID,
		RemindAt: at,
		Repeat:   repeat,
	}

	if err := s.storage.CreateReminder(reminder); err != nil {
		return nil, errors.Wrap(err, "create reminder")
	}

	return reminder, nil
}

// CreateFromText пытается извлечь будущую дату из текста заметки и, если
// нашла, ставит одноразовое напоминание. Отсутствие даты — не ошибка.
func (s *ReminderService) CreateFromText(userID, noteID int64, text string) (time.Time, bool, error) {
	at, ok := s.parser.ParseFuture(text, s.Now())
	if !ok {
		return time.Time{}, false, nil
	}

	if _, err := s.Create(userID, noteID, at, domain.RepeatNone); err != nil {
		return time.Time{}, false, errors.Wrap(err, "auto reminder")
	}

	return at, true, nil
}

// ParseFuture exposes date parsing for the dialog flow, using the same
// clock and zone as reminder creation.
func (s *ReminderService) ParseFuture(text string) (time.Time, bool) {
	return s.parser.ParseFuture(text, s.Now())
}

func (s *ReminderService) List(userID int64) ([]*domain.Reminder, error) {
	return s.storage.ListRemindersByUser(userID)
}

// FormatAt renders a timestamp the way it is shown to users.
func (s *ReminderService) FormatAt(t time.Time) string {
	return t.In(s.timezone).Format("02.01.2006 15:04")
}

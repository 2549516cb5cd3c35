package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zametkabot/internal/domain"
)

func TestIdleTextSavesNote(t *testing.T) {
	next, action := Next(Session{}, Event{Kind: EventText, Text: "купить молоко"})
	assert.Equal(t, ActionSaveNote, action)
	assert.Equal(t, Session{}, next)
}

func TestSearchDialog(t *testing.T) {
	next, action := Next(Session{}, Event{Kind: EventStartSearch})
	require.Equal(t, ActionPromptQuery, action)
	require.Equal(t, StateSearching, next.State)

	next, action = Next(next, Event{Kind: EventText, Text: "молоко"})
	assert.Equal(t, ActionRunSearch, action)
	assert.Equal(t, Session{}, next, "scratchpad cleared after search")
}

func TestEditDialog(t *testing.T) {
	next, action := Next(Session{}, Event{Kind: EventStartEdit, NoteID: 7})
	require.Equal(t, ActionPromptText, action)
	require.Equal(t, StateEditing, next.State)
	require.Equal(t, int64(7), next.NoteID)

	next, action = Next(next, Event{Kind: EventText, Text: "новый текст"})
	assert.Equal(t, ActionUpdateNote, action)
	assert.Equal(t, Session{}, next)
}

func TestReminderDialog(t *testing.T) {
	next, action := Next(Session{}, Event{Kind: EventStartSetTime, NoteID: 3})
	require.Equal(t, ActionPromptTime, action)
	require.Equal(t, StateSettingReminderTime, next.State)
	require.Equal(t, int64(3), next.NoteID)

	at := time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC)
	next, action = Next(next, Event{Kind: EventText, Text: "завтра в 18:00", When: &at})
	require.Equal(t, ActionAskRepeat, action)
	require.Equal(t, StateChoosingRepeat, next.State)
	require.Equal(t, int64(3), next.NoteID)
	require.Equal(t, at, next.RemindAt)

	next, action = Next(next, Event{Kind: EventChooseRepeat, Repeat: domain.RepeatWeekly})
	assert.Equal(t, ActionSaveReminder, action)
	assert.Equal(t, Session{}, next)
}

func TestSettingTimeReprompt(t *testing.T) {
	s := Session{State: StateSettingReminderTime, NoteID: 3}

	// дата не распознана или в прошлом — When == nil
	next, action := Next(s, Event{Kind: EventText, Text: "вчера"})
	assert.Equal(t, ActionReprompt, action)
	assert.Equal(t, s, next, "state and note id must survive a reprompt")

	next, action = Next(next, Event{Kind: EventText, Text: "ерунда"})
	assert.Equal(t, ActionReprompt, action)
	assert.Equal(t, s, next)
}

func TestChoosingRepeatIgnoresInvalidChoice(t *testing.T) {
	s := Session{State: StateChoosingRepeat, NoteID: 3, RemindAt: time.Now()}
	next, action := Next(s, Event{Kind: EventChooseRepeat, Repeat: domain.Recurrence("hourly")})
	assert.Equal(t, ActionNone, action)
	assert.Equal(t, s, next)
}

func TestCancelFromAnyState(t *testing.T) {
	at := time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC)
	states := []Session{
		{State: StateSearching},
		{State: StateEditing, NoteID: 5},
		{State: StateSettingReminderTime, NoteID: 5},
		{State: StateChoosingRepeat, NoteID: 5, RemindAt: at},
	}

	for _, s := range states {
		next, action := Next(s, Event{Kind: EventCancel})
		assert.Equal(t, ActionCancelled, action, "state %s", s.State)
		assert.Equal(t, Session{}, next, "scratchpad must be empty after cancel from %s", s.State)
	}

	// в Idle отменять нечего
	next, action := Next(Session{}, Event{Kind: EventCancel})
	assert.Equal(t, ActionNone, action)
	assert.Equal(t, Session{}, next)
}

func TestNewDialogOverwritesPrevious(t *testing.T) {
	s := Session{State: StateEditing, NoteID: 5}
	next, action := Next(s, Event{Kind: EventStartSetTime, NoteID: 9})
	assert.Equal(t, ActionPromptTime, action)
	assert.Equal(t, Session{State: StateSettingReminderTime, NoteID: 9}, next)
}

func TestManager(t *testing.T) {
	m := NewManager()

	assert.Equal(t, Session{}, m.Get(1), "unknown user starts idle")

	m.Set(1, Session{State: StateSearching})
	assert.Equal(t, StateSearching, m.Get(1).State)
	assert.Equal(t, Session{}, m.Get(2), "sessions are per user")

	m.Clear(1)
	assert.Equal(t, Session{}, m.Get(1))

	// запись Idle эквивалентна очистке
	m.Set(2, Session{State: StateEditing, NoteID: 4})
	m.Set(2, Session{})
	assert.Equal(t, Session{}, m.Get(2))
}

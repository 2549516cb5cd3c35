package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zametkabot/internal/domain"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.CreateUser(&domain.User{TelegramID: 1, Username: "tester"}))
	return s
}

func addNote(t *testing.T, s *Storage, userID int64, content string) *domain.Note {
	t.Helper()
	n := &domain.Note{UserID: userID, Content: content}
	require.NoError(t, s.CreateNote(n))
	return n
}

func TestNoteCRUD(t *testing.T) {
	s := newTestStorage(t)

	n := addNote(t, s, 1, "купить молоко")
	require.NotZero(t, n.ID)

	got, err := s.GetNote(n.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "купить молоко", got.Content)
	assert.False(t, got.IsPinned)

	require.NoError(t, s.UpdateNoteText(n.ID, "купить хлеб"))
	got, err = s.GetNote(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "купить хлеб", got.Content)

	require.NoError(t, s.DeleteNote(n.ID))
	got, err = s.GetNote(n.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTogglePin(t *testing.T) {
	s := newTestStorage(t)
	n := addNote(t, s, 1, "важное")

	pinned, err := s.ToggleNotePin(n.ID)
	require.NoError(t, err)
	assert.True(t, pinned)

	pinned, err = s.ToggleNotePin(n.ID)
	require.NoError(t, err)
	assert.False(t, pinned)
}

func TestListNotesPagePinnedFirst(t *testing.T) {
	s := newTestStorage(t)

	first := addNote(t, s, 1, "первая")
	addNote(t, s, 1, "вторая")
	third := addNote(t, s, 1, "третья")

	_, err := s.ToggleNotePin(first.ID)
	require.NoError(t, err)

	notes, count, err := s.ListNotesPage(1, 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, notes, 2)
	assert.Equal(t, first.ID, notes[0].ID, "pinned note comes first")
	assert.Equal(t, third.ID, notes[1].ID, "then the newest")
}

func TestListNotesPageSearch(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.CreateUser(&domain.User{TelegramID: 2}))
	addNote(t, s, 1, "купить молоко завтра")
	addNote(t, s, 1, "позвонить маме")
	addNote(t, s, 2, "молоко чужого пользователя")

	notes, count, err := s.ListNotesPage(1, 1, 5, "молоко")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, notes, 1)
	assert.Equal(t, "купить молоко завтра", notes[0].Content)
}

func TestDueRemindersBoundary(t *testing.T) {
	s := newTestStorage(t)
	n := addNote(t, s, 1, "Купить молоко завтра в 18:00")

	at := time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC)
	r := &domain.Reminder{UserID: 1, NoteID: n.ID, RemindAt: at, Repeat: domain.RepeatNone}
	require.NoError(t, s.CreateReminder(r))

	// до срока — пусто
	due, err := s.DueReminders(at.Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, due)

	// remind_at <= now включительно
	due, err = s.DueReminders(at)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, r.ID, due[0].ID)
	assert.Equal(t, int64(1), due[0].UserID)
	assert.Equal(t, "Купить молоко завтра в 18:00", due[0].NoteText)

	due, err = s.DueReminders(at.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
}

func TestAdvanceOrRemoveOneOff(t *testing.T) {
	s := newTestStorage(t)
	n := addNote(t, s, 1, "одноразовое")

	at := time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC)
	r := &domain.Reminder{UserID: 1, NoteID: n.ID, RemindAt: at, Repeat: domain.RepeatNone}
	require.NoError(t, s.CreateReminder(r))

	require.NoError(t, s.AdvanceOrRemoveReminder(r.ID, r.Repeat, at))

	// после доставки одноразовое исчезает навсегда
	due, err := s.DueReminders(at.Add(24 * time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestAdvanceOrRemoveRepeating(t *testing.T) {
	s := newTestStorage(t)
	n := addNote(t, s, 1, "еженедельное")

	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	r := &domain.Reminder{UserID: 1, NoteID: n.ID, RemindAt: at, Repeat: domain.RepeatWeekly}
	require.NoError(t, s.CreateReminder(r))

	require.NoError(t, s.AdvanceOrRemoveReminder(r.ID, r.Repeat, at))

	// до следующего срока не назревает
	due, err := s.DueReminders(at.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)

	// а в новый срок — снова в выборке
	next := at.Add(7 * 24 * time.Hour)
	due, err = s.DueReminders(next)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, r.ID, due[0].ID)

	reminders, err := s.ListRemindersByUser(1)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, next, reminders[0].RemindAt.UTC())
	assert.False(t, reminders[0].IsSent)
}

func TestDeleteNoteCascadesReminders(t *testing.T) {
	s := newTestStorage(t)
	n := addNote(t, s, 1, "с напоминанием")

	at := time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateReminder(&domain.Reminder{UserID: 1, NoteID: n.ID, RemindAt: at}))

	require.NoError(t, s.DeleteNote(n.ID))

	due, err := s.DueReminders(at.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due, "reminder of a deleted note must never fire")

	reminders, err := s.ListRemindersByUser(1)
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestMediaCRUDAndCounts(t *testing.T) {
	s := newTestStorage(t)

	m := &domain.Media{UserID: 1, FileID: "abc", FileType: domain.MediaPhoto, Caption: "котик"}
	require.NoError(t, s.CreateMedia(m))
	addNote(t, s, 1, "заметка")

	got, err := s.GetMedia(m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.MediaPhoto, got.FileType)

	medias, count, err := s.ListMediaPage(1, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, medias, 1)

	notes, err := s.CountNotes(1)
	require.NoError(t, err)
	media, err := s.CountMedia(1)
	require.NoError(t, err)
	assert.Equal(t, 1, notes)
	assert.Equal(t, 1, media)

	require.NoError(t, s.DeleteMedia(m.ID))
	got, err = s.GetMedia(m.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

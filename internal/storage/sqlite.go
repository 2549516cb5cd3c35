package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"zametkabot/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			telegram_id INTEGER UNIQUE NOT NULL,
			username TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			is_pinned INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(telegram_id)
		)`,
		`CREATE TABLE IF NOT EXISTS media (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			file_id TEXT NOT NULL,
			file_type TEXT NOT NULL,
			caption TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(telegram_id)
		)`,
		`CREATE TABLE IF NOT EXISTS reminders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			note_id INTEGER NOT NULL,
			remind_at DATETIME NOT NULL,
			repeat TEXT NOT NULL DEFAULT 'none',
			is_sent INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_media_user_id ON media(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_note_id ON reminders(note_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_remind_at ON reminders(remind_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// === Users ===

func (s *Storage) CreateUser(u *domain.User) error {
	res, err := s.db.Exec(
		`INSERT INTO users (telegram_id, username) VALUES (?, ?)`,
		u.TelegramID, u.Username,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	u.ID = id
	u.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetUserByTelegramID(telegramID int64) (*domain.User, error) {
	u := &domain.User{}
	err := s.db.QueryRow(
		`SELECT id, telegram_id, username, created_at FROM users WHERE telegram_id = ?`,
		telegramID,
	).Scan(&u.ID, &u.TelegramID, &u.Username, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// === Notes ===

func (s *Storage) CreateNote(n *domain.Note) error {
	res, err := s.db.Exec(
		`INSERT INTO notes (user_id, content) VALUES (?, ?)`,
		n.UserID, n.Content,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	n.ID = id
	n.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetNote(id int64) (*domain.Note, error) {
	n := &domain.Note{}
	err := s.db.QueryRow(
		`SELECT id, user_id, content, is_pinned, created_at FROM notes WHERE id = ?`,
		id,
	).Scan(&n.ID, &n.UserID, &n.Content, &n.IsPinned, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

func (s *Storage) UpdateNoteText(id int64, content string) error {
	_, err := s.db.Exec(`UPDATE notes SET content = ? WHERE id = ?`, content, id)
	return err
}

// ToggleNotePin flips the pin flag and returns the new state.
func (s *Storage) ToggleNotePin(id int64) (bool, error) {
	if _, err := s.db.Exec(`UPDATE notes SET is_pinned = NOT is_pinned WHERE id = ?`, id); err != nil {
		return false, err
	}
	var pinned bool
	err := s.db.QueryRow(`SELECT is_pinned FROM notes WHERE id = ?`, id).Scan(&pinned)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return pinned, err
}

func (s *Storage) DeleteNote(id int64) error {
	_, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	return err
}

// ListNotesPage returns one page of notes (pinned first, then newest) and
// the total count for pagination. Query is an optional substring filter.
func (s *Storage) ListNotesPage(userID int64, page, limit int, query string) ([]*domain.Note, int, error) {
	offset := (page - 1) * limit

	where := `user_id = ?`
	args := []any{userID}
	if query != "" {
		where += ` AND content LIKE ?`
		args = append(args, "%"+query+"%")
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM notes WHERE `+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(
		`SELECT id, user_id, content, is_pinned, created_at FROM notes
		 WHERE `+where+`
		 ORDER BY is_pinned DESC, created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		n := &domain.Note{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.IsPinned, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}

// ListAllNotes returns every note of a user, oldest first. Used by the
// backup export.
func (s *Storage) ListAllNotes(userID int64) ([]*domain.Note, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, content, is_pinned, created_at FROM notes
		 WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		n := &domain.Note{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.IsPinned, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// CountNotes and CountMedia feed the profile stats.
func (s *Storage) CountNotes(userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

// === Media ===

func (s *Storage) CreateMedia(m *domain.Media) error {
	res, err := s.db.Exec(
		`INSERT INTO media (user_id, file_id, file_type, caption) VALUES (?, ?, ?, ?)`,
		m.UserID, m.FileID, m.FileType, m.Caption,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	m.ID = id
	m.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetMedia(id int64) (*domain.Media, error) {
	m := &domain.Media{}
	err := s.db.QueryRow(
		`SELECT id, user_id, file_id, file_type, caption, created_at FROM media WHERE id = ?`,
		id,
	).Scan(&m.ID, &m.UserID, &m.FileID, &m.FileType, &m.Caption, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (s *Storage) DeleteMedia(id int64) error {
	_, err := s.db.Exec(`DELETE FROM media WHERE id = ?`, id)
	return err
}

func (s *Storage) ListMediaPage(userID int64, page, limit int) ([]*domain.Media, int, error) {
	offset := (page - 1) * limit

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM media WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(
		`SELECT id, user_id, file_id, file_type, caption, created_at FROM media
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var medias []*domain.Media
	for rows.Next() {
		m := &domain.Media{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.FileID, &m.FileType, &m.Caption, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		medias = append(medias, m)
	}
	return medias, count, rows.Err()
}

func (s *Storage) ListAllMedia(userID int64) ([]*domain.Media, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, file_id, file_type, caption, created_at FROM media
		 WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var medias []*domain.Media
	for rows.Next() {
		m := &domain.Media{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.FileID, &m.FileType, &m.Caption, &m.CreatedAt); err != nil {
			return nil, err
		}
		medias = append(medias, m)
	}
	return medias, rows.Err()
}

func (s *Storage) CountMedia(userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM media WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

// === Reminders ===

func (s *Storage) CreateReminder(r *domain.Reminder) error {
	if r.Repeat == "" {
		r.Repeat = domain.RepeatNone
	}
	res, err := s.db.Exec(
		`INSERT INTO reminders (user_id, note_id, remind_at, repeat) VALUES (?, ?, ?, ?)`,
		r.UserID, r.NoteID, r.RemindAt, r.Repeat,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	r.ID = id
	r.CreatedAt = time.Now()
	return nil
}

// DueReminders returns pending reminders with remind_at <= now, joined with
// the note text. The join drops reminders whose note is already gone.
func (s *Storage) DueReminders(now time.Time) ([]*domain.DueReminder, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.user_id, n.content, r.remind_at, r.repeat
		 FROM reminders r JOIN notes n ON n.id = r.note_id
		 WHERE r.is_sent = 0 AND r.remind_at <= ?
		 ORDER BY r.remind_at`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []*domain.DueReminder
	for rows.Next() {
		d := &domain.DueReminder{}
		if err := rows.Scan(&d.ID, &d.UserID, &d.NoteText, &d.RemindAt, &d.Repeat); err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// AdvanceOrRemoveReminder applies the recurrence policy after a successful
// delivery: one-off reminders are removed, repeating ones move forward and
// stay pending for the next occurrence.
func (s *Storage) AdvanceOrRemoveReminder(id int64, repeat domain.Recurrence, current time.Time) error {
	next, ok := repeat.Next(current)
	if !ok {
		_, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
		return err
	}
	_, err := s.db.Exec(`UPDATE reminders SET remind_at = ?, is_sent = 0 WHERE id = ?`, next, id)
	return err
}

func (s *Storage) ListRemindersByUser(userID int64) ([]*domain.Reminder, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, note_id, remind_at, repeat, is_sent, created_at
		 FROM reminders WHERE user_id = ? ORDER BY remind_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*domain.Reminder
	for rows.Next() {
		r := &domain.Reminder{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.NoteID, &r.RemindAt, &r.Repeat, &r.IsSent, &r.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

package service

import (
	"fmt"
	"strings"

	"zametkabot/internal/domain"
	"zametkabot/internal/storage"
)

type NoteService struct {
	storage *storage.Storage
}

func NewNoteService(s *storage.Storage) *NoteService {
	return &NoteService{storage: s}
}

func (s *NoteService) Create(userID int64, content string) (*domain.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("note content cannot be empty")
	}

	note := &domain.Note{
		UserID:  userID,
		Content: content,
	}

	if err := s.storage.CreateNote(note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	return note, nil
}

func (s *NoteService) Get(noteID int64) (*domain.Note, error) {
	return s.storage.GetNote(noteID)
}

func (s *NoteService) UpdateText(noteID, userID int64, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("note content cannot be empty")
	}

	note, err := s.storage.GetNote(noteID)
	if err != nil {
		return fmt.Errorf("get note: %w", err)
	}
	if note == nil {
		return fmt.Errorf("note not found")
	}
	if note.UserID != userID {
		return fmt.Errorf("access denied")
	}

	return s.storage.UpdateNoteText(noteID, content)
}

func (s *NoteService) TogglePin(noteID, userID int64) (bool, error) {
	note, err := s.storage.GetNote(noteID)
	if err != nil {
		return false, fmt.Errorf("get note: %w", err)
	}
	if note == nil {
		return false, fmt.Errorf("note not found")
	}
	if note.UserID != userID {
		return false, fmt.Errorf("access denied")
	}

	return s.storage.ToggleNotePin(noteID)
}

// Delete removes the note; its reminders go with it (FK cascade).
func (s *NoteService) Delete(noteID, userID int64) error {
	note, err := s.storage.GetNote(noteID)
	if err != nil {
		return fmt.Errorf("get note: %w", err)
	}
	if note == nil {
		return fmt.Errorf("note not found")
	}
	if note.UserID != userID {
		return fmt.Errorf("access denied")
	}

	return s.storage.DeleteNote(noteID)
}

func (s *NoteService) Page(userID int64, page, limit int, query string) ([]*domain.Note, int, error) {
	if page < 1 {
		page = 1
	}
	return s.storage.ListNotesPage(userID, page, limit, query)
}

type Stats struct {
	Notes int
	Media int
}

func (s *NoteService) Stats(userID int64) (*Stats, error) {
	notes, err := s.storage.CountNotes(userID)
	if err != nil {
		return nil, fmt.Errorf("count notes: %w", err)
	}
	media, err := s.storage.CountMedia(userID)
	if err != nil {
		return nil, fmt.Errorf("count media: %w", err)
	}
	return &Stats{Notes: notes, Media: media}, nil
}

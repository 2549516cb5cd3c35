package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"zametkabot/internal/domain"
	"zametkabot/internal/storage"
)

// BackupService собирает экспорт данных пользователя: заметки и медиа в
// JSON, напоминания — отдельным календарём в формате iCalendar.
type BackupService struct {
	storage  *storage.Storage
	timezone *time.Location
}

func NewBackupService(s *storage.Storage, tz *time.Location) *BackupService {
	return &BackupService{storage: s, timezone: tz}
}

type Backup struct {
	ID       string
	Archive  []byte // JSON с заметками и медиа
	Calendar []byte // .ics с напоминаниями, nil если напоминаний нет
}

type backupNote struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	IsPinned  bool      `json:"is_pinned"`
	CreatedAt time.Time `json:"created_at"`
}

type backupMedia struct {
	ID        int64     `json:"id"`
	FileID    string    `json:"file_id"`
	FileType  string    `json:"file_type"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type backupArchive struct {
	ID         string        `json:"id"`
	TelegramID int64         `json:"telegram_id"`
	ExportedAt time.Time     `json:"exported_at"`
	Notes      []backupNote  `json:"notes"`
	Media      []backupMedia `json:"media"`
}

func (s *BackupService) Export(userID int64) (*Backup, error) {
	notes, err := s.storage.ListAllNotes(userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	medias, err := s.storage.ListAllMedia(userID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	archive := backupArchive{
		ID:         uuid.NewString(),
		TelegramID: userID,
		ExportedAt: time.Now().In(s.timezone),
		Notes:      make([]backupNote, 0, len(notes)),
		Media:      make([]backupMedia, 0, len(medias)),
	}
	for _, n := range notes {
		archive.Notes = append(archive.Notes, backupNote{
			ID:        n.ID,
			Content:   n.Content,
			IsPinned:  n.IsPinned,
			CreatedAt: n.CreatedAt,
		})
	}
	for _, m := range medias {
		archive.Media = append(archive.Media, backupMedia{
			ID:        m.ID,
			FileID:    m.FileID,
			FileType:  string(m.FileType),
			Caption:   m.Caption,
			CreatedAt: m.CreatedAt,
		})
	}

	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal archive: %w", err)
	}

	calendar, err := s.exportCalendar(userID)
	if err != nil {
		return nil, fmt.Errorf("export calendar: %w", err)
	}

	return &Backup{ID: archive.ID, Archive: data, Calendar: calendar}, nil
}

// exportCalendar renders the user's reminders as VEVENTs. Repeating
// reminders carry an RRULE so calendar apps keep the recurrence.
func (s *BackupService) exportCalendar(userID int64) ([]byte, error) {
	reminders, err := s.storage.ListRemindersByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	if len(reminders) == 0 {
		return nil, nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//zametkabot//RU")

	now := time.Now().UTC()
	for _, r := range reminders {
		note, err := s.storage.GetNote(r.NoteID)
		if err != nil {
			return nil, fmt.Errorf("get note %d: %w", r.NoteID, err)
		}
		if note == nil {
			continue
		}

		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, uuid.NewString()+"@zametkabot")
		vevent.Props.SetText(ical.PropSummary, note.Content)
		vevent.Props.SetDateTime(ical.PropDateTimeStart, r.RemindAt.UTC())
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, now)

		switch r.Repeat {
		case domain.RepeatDaily:
			vevent.Props.SetText(ical.PropRecurrenceRule, "FREQ=DAILY")
		case domain.RepeatWeekly:
			vevent.Props.SetText(ical.PropRecurrenceRule, "FREQ=WEEKLY")
		}

		cal.Children = append(cal.Children, vevent.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

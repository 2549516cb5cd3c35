package domain

import "time"

type Recurrence string

const (
	RepeatNone   Recurrence = "none"
	RepeatDaily  Recurrence = "daily"
	RepeatWeekly Recurrence = "weekly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly:
		return true
	}
	return false
}

// Next returns the following occurrence after t. For RepeatNone the second
// value is false: the reminder is finished and must be removed.
func (r Recurrence) Next(t time.Time) (time.Time, bool) {
	switch r {
	case RepeatDaily:
		return t.Add(24 * time.Hour), true
	case RepeatWeekly:
		return t.Add(7 * 24 * time.Hour), true
	default:
		return time.Time{}, false
	}
}

func (r Recurrence) Label() string {
	switch r {
	case RepeatDaily:
		return "каждый день"
	case RepeatWeekly:
		return "каждую неделю"
	default:
		return "один раз"
	}
}

type Reminder struct {
	ID        int64
	UserID    int64
	NoteID    int64
	RemindAt  time.Time
	Repeat    Recurrence
	IsSent    bool
	CreatedAt time.Time
}

// DueReminder is the delivery view of a reminder: the join of a pending
// reminder with the text of its note.
type DueReminder struct {
	ID       int64
	UserID   int64
	NoteText string
	RemindAt time.Time
	Repeat   Recurrence
}

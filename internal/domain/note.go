package domain

import "time"

type Note struct {
	ID        int64
	UserID    int64 // telegram id владельца
	Content   string
	IsPinned  bool
	CreatedAt time.Time
}

// Preview returns a shortened version of the note content for keyboards.
func (n *Note) Preview(max int) string {
	runes := []rune(n.Content)
	if len(runes) <= max {
		return n.Content
	}
	return string(runes[:max]) + "..."
}

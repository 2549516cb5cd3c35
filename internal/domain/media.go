package domain

import "time"

type MediaType string

const (
	MediaPhoto    MediaType = "photo"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
)

type Media struct {
	ID        int64
	UserID    int64
	FileID    string // telegram file_id
	FileType  MediaType
	Caption   string
	CreatedAt time.Time
}

func (m *Media) Icon() string {
	switch m.FileType {
	case MediaPhoto:
		return "🖼"
	case MediaVideo:
		return "🎥"
	case MediaDocument:
		return "📁"
	default:
		return "❓"
	}
}

package service

import (
	"fmt"

	"zametkabot/internal/domain"
	"zametkabot/internal/storage"
)

type MediaService struct {
	storage *storage.Storage
}

func NewMediaService(s *storage.Storage) *MediaService {
	return &MediaService{storage: s}
}

func (s *MediaService) Add(userID int64, fileID string, fileType domain.MediaType, caption string) (*domain.Media, error) {
	if fileID == "" {
		return nil, fmt.Errorf("file_id cannot be empty")
	}

	media := &domain.Media{
		UserID:   userID,
		FileID:   fileID,
		FileType: fileType,
		Caption:  caption,
	}

	if err := s.storage.CreateMedia(media); err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}

	return media, nil
}

func (s *MediaService) Get(mediaID int64) (*domain.Media, error) {
	return s.storage.GetMedia(mediaID)
}

func (s *MediaService) Delete(mediaID, userID int64) error {
	media, err := s.storage.GetMedia(mediaID)
	if err != nil {
		return fmt.Errorf("get media: %w", err)
	}
	if media == nil {
		return fmt.Errorf("media not found")
	}
	if media.UserID != userID {
		return fmt.Errorf("access denied")
	}

	return s.storage.DeleteMedia(mediaID)
}

func (s *MediaService) Page(userID int64, page, limit int) ([]*domain.Media, int, error) {
	if page < 1 {
		page = 1
	}
	return s.storage.ListMediaPage(userID, page, limit)
}

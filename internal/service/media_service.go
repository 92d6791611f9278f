package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/medjourney/simulados-backend/internal/storage"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed image MIME types.
var allowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MediaService handles question image uploads.
type MediaService struct {
	store    storage.ObjectStorage
	maxBytes int64
}

// NewMediaService creates a new MediaService.
func NewMediaService(store storage.ObjectStorage, maxBytes int64) *MediaService {
	return &MediaService{store: store, maxBytes: maxBytes}
}

// SaveUpload stores an uploaded image under a UUID name and returns its URL.
func (s *MediaService) SaveUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(), ", "))
	}

	if header.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.maxBytes)
	}

	key := uuid.New().String() + ext
	if err := s.store.Put(ctx, key, file, header.Size, contentType); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return s.store.URL(key), nil
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

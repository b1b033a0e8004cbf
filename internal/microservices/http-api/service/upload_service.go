package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"playlog/internal/metrics"
	"playlog/internal/storage"
)

type UploadService interface {
	Upload(ctx context.Context, userID, filename string, r io.Reader, contentType string) (string, error)
}

type uploadService struct {
	store  storage.Uploader
	logger *slog.Logger
}

func NewUploadService(store storage.Uploader, logger *slog.Logger) UploadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &uploadService{store: store, logger: logger}
}

// Upload stores the file and returns its public URL.
func (s *uploadService) Upload(ctx context.Context, userID, filename string, r io.Reader, contentType string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", invalid("no file provided")
	}

	url, err := s.store.Save(ctx, filename, r, contentType)
	metrics.RecordUpload(s.store.Backend(), err)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return "", ErrUploadNotConfigured
		}
		return "", err
	}

	s.logger.Info("file uploaded", "user_id", userID, "backend", s.store.Backend(), "url", url)
	return url, nil
}

package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"chatlab/internal/storage"
	chatlab_errors "chatlab/pkg/errors"
)

const maxUploadBytes = 10 << 20 // matches the HTTP body limit of 10mb

// UploadService stores message attachments in object storage and hands back
// the fileUrl/fileName pair that send-message payloads reference.
type UploadService struct {
	store *storage.Client
}

func NewUploadService(store *storage.Client) *UploadService {
	return &UploadService{store: store}
}

func (s *UploadService) UploadFile(ctx context.Context, fileName, contentType string, size int64, body io.Reader) (string, string, error) {
	if s.store == nil {
		return "", "", chatlab_errors.ErrServiceUnavailable
	}
	if fileName == "" {
		return "", "", fmt.Errorf("%w: file name is required", chatlab_errors.ErrInvalidInput)
	}
	if size > maxUploadBytes {
		return "", "", chatlab_errors.ErrTooLarge
	}

	key := fmt.Sprintf("files/%d-%s", time.Now().UnixMilli(), sanitizeFileName(fileName))
	if err := s.store.Put(ctx, key, contentType, body); err != nil {
		return "", "", err
	}

	url := s.store.FileURL(key)
	if url == "" {
		presigned, err := s.store.PresignGet(ctx, key)
		if err != nil {
			return "", "", err
		}
		url = presigned
	}
	return url, fileName, nil
}

func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	return name
}

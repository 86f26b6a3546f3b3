package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/logger"
)

// LocalPhotoStore keeps photos on the local filesystem and hands out links
// served by this process's upload and download routes.
type LocalPhotoStore struct {
	baseURL string
	dir     string
	secret  []byte
}

var _ PhotoStore = (*LocalPhotoStore)(nil)

// NewLocalPhotoStore stores files under dir. Upload links carry a token
// signed with secret; an empty secret gets a random one, so links do not
// survive a restart.
func NewLocalPhotoStore(baseURL, dir, secret string) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	if secret == "" {
		logger.Warn("No photo signing secret configured, using a random one")
		secret = uuid.NewString()
	}
	return &LocalPhotoStore{baseURL: strings.TrimRight(baseURL, "/"), dir: dir, secret: []byte(secret)}, nil
}

func (s *LocalPhotoStore) UploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	if err := ValidateContentType(contentType); err != nil {
		return "", err
	}
	token, err := s.signUpload(key, contentType, expiresIn)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/photos/upload/%s?key=%s", s.baseURL, token, url.QueryEscape(key)), nil
}

func (s *LocalPhotoStore) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return fmt.Sprintf("%s/api/v1/photos/download?key=%s", s.baseURL, url.QueryEscape(key)), nil
}

func (s *LocalPhotoStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	full, err := s.path(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, os.ErrNotExist) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalPhotoStore) Delete(ctx context.Context, key string) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

func (s *LocalPhotoStore) Save(key string, r io.Reader) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Debug("Stored inspection photo", "key", key, "bytes", n)
	return nil
}

func (s *LocalPhotoStore) Open(key string) (io.ReadCloser, error) {
	full, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// path resolves key below the storage root, refusing keys that escape it.
func (s *LocalPhotoStore) path(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || filepath.IsAbs(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(key)), nil
}

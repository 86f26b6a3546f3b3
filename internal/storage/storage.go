package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds photo storage configuration.
type Config struct {
	Type      string        // only "local" is implemented
	Dir       string        // root directory for local storage
	BaseURL   string        // server base URL used to build upload/download links
	URLExpiry time.Duration // lifetime of generated links
	Secret    string        // HMAC key for upload tokens
}

// PhotoStore keeps inspection photos. Keys are opaque paths such as
// "inspections/<return id>/<uuid>_front.jpg".
type PhotoStore interface {
	// UploadURL returns a link the client PUTs the file to.
	UploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error)
	// DownloadURL returns a link to fetch a stored photo.
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, int64, error)
	Delete(ctx context.Context, key string) error
	// VerifyUpload checks the token embedded in an upload link.
	VerifyUpload(token, key, contentType string) error
	Save(key string, r io.Reader) error
	Open(key string) (io.ReadCloser, error)
}

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// ValidateContentType accepts the image formats inspectors' devices produce.
func ValidateContentType(contentType string) error {
	if _, ok := allowedContentTypes[strings.ToLower(contentType)]; !ok {
		return fmt.Errorf("unsupported content type %q", contentType)
	}
	return nil
}

// InspectionPhotoKey builds a unique key for a photo of returnID.
func InspectionPhotoKey(returnID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == "/" {
		name = "photo"
	}
	return fmt.Sprintf("inspections/%s/%s_%s", returnID, uuid.New(), name)
}

// IsInspectionPhotoKey reports whether key was issued for returnID.
func IsInspectionPhotoKey(returnID uuid.UUID, key string) bool {
	prefix := fmt.Sprintf("inspections/%s/", returnID)
	return strings.HasPrefix(key, prefix) && !strings.Contains(key, "..")
}

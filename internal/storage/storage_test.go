package storage

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectionPhotoKey(t *testing.T) {
	returnID := uuid.New()
	key := InspectionPhotoKey(returnID, `C:\phone\front left.JPG`)
	assert.True(t, strings.HasPrefix(key, "inspections/"+returnID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, "_front_left.JPG"))
	assert.True(t, IsInspectionPhotoKey(returnID, key))
	assert.False(t, IsInspectionPhotoKey(uuid.New(), key))
	assert.False(t, IsInspectionPhotoKey(returnID, "inspections/"+returnID.String()+"/../x"))
}

func TestValidateContentType(t *testing.T) {
	assert.NoError(t, ValidateContentType("image/JPEG"))
	assert.Error(t, ValidateContentType("application/pdf"))
}

func TestLocalPhotoStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalPhotoStore("http://localhost:8080/", t.TempDir(), "test-secret")
	require.NoError(t, err)
	key := InspectionPhotoKey(uuid.New(), "dent.png")

	t.Run("UploadURL", func(t *testing.T) {
		u, err := s.UploadURL(ctx, key, "image/png", 15*time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u, "http://localhost:8080/api/v1/photos/upload/"))

		_, err = s.UploadURL(ctx, key, "text/plain", time.Minute)
		assert.Error(t, err)
	})

	t.Run("VerifyUpload", func(t *testing.T) {
		u, err := s.UploadURL(ctx, key, "image/png", 15*time.Minute)
		require.NoError(t, err)
		parsed, err := url.Parse(u)
		require.NoError(t, err)
		token := path.Base(parsed.Path)
		assert.Equal(t, key, parsed.Query().Get("key"))

		assert.NoError(t, s.VerifyUpload(token, key, "image/PNG"))
		assert.ErrorIs(t, s.VerifyUpload(token, key, "image/jpeg"), ErrInvalidUploadToken)
		assert.ErrorIs(t, s.VerifyUpload(token, "inspections/other.png", "image/png"), ErrInvalidUploadToken)
		assert.ErrorIs(t, s.VerifyUpload("garbage", key, "image/png"), ErrInvalidUploadToken)

		other, err := NewLocalPhotoStore("http://localhost:8080", t.TempDir(), "another-secret")
		require.NoError(t, err)
		assert.ErrorIs(t, other.VerifyUpload(token, key, "image/png"), ErrInvalidUploadToken)
	})

	t.Run("ExpiredUpload", func(t *testing.T) {
		u, err := s.UploadURL(ctx, key, "image/png", -time.Minute)
		require.NoError(t, err)
		parsed, err := url.Parse(u)
		require.NoError(t, err)
		assert.ErrorIs(t, s.VerifyUpload(path.Base(parsed.Path), key, "image/png"), ErrExpiredUploadToken)
	})

	t.Run("SaveOpenDelete", func(t *testing.T) {
		exists, _, err := s.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, s.Save(key, strings.NewReader("png-bytes")))
		exists, size, err := s.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, int64(9), size)

		rc, err := s.Open(key)
		require.NoError(t, err)
		body, _ := io.ReadAll(rc)
		rc.Close()
		assert.Equal(t, "png-bytes", string(body))

		require.NoError(t, s.Delete(ctx, key))
		require.NoError(t, s.Delete(ctx, key))
	})

	t.Run("RejectsEscapingKeys", func(t *testing.T) {
		assert.Error(t, s.Save("../outside", strings.NewReader("x")))
		_, err := s.Open("/etc/passwd")
		assert.Error(t, err)
	})
}

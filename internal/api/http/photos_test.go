package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalreturn-backend/internal/storage"
)

func TestPhotoHandler(t *testing.T) {
	t.Run("UploadThenDownload", func(t *testing.T) {
		s := newTestServer(t)
		key := storage.InspectionPhotoKey(uuid.New(), "scratch.png")
		link, err := s.photos.UploadURL(context.Background(), key, "image/png", time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, strings.TrimPrefix(link, "http://localhost:8080"), strings.NewReader("png-bytes"))
		req.Header.Set("Content-Type", "image/png")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = s.do(http.MethodGet, "/api/v1/photos/download?key="+url.QueryEscape(key), "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "png-bytes", rec.Body.String())
	})

	t.Run("UploadRejectsContentType", func(t *testing.T) {
		s := newTestServer(t)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/photos/upload/tok?key=inspections/a/b.txt", strings.NewReader("x"))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UploadRejectsForgedToken", func(t *testing.T) {
		s := newTestServer(t)
		key := storage.InspectionPhotoKey(uuid.New(), "scratch.png")
		req := httptest.NewRequest(http.MethodPut, "/api/v1/photos/upload/forged?key="+url.QueryEscape(key), strings.NewReader("x"))
		req.Header.Set("Content-Type", "image/png")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		exists, _, err := s.photos.Exists(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("UploadMissingKey", func(t *testing.T) {
		s := newTestServer(t)
		req := httptest.NewRequest(http.MethodPut, "/api/v1/photos/upload/tok", strings.NewReader("x"))
		req.Header.Set("Content-Type", "image/png")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("DownloadMissing", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(http.MethodGet, "/api/v1/photos/download?key=inspections/none.jpg", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("DownloadRejectsTraversal", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(http.MethodGet, "/api/v1/photos/download?key=../../etc/passwd", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

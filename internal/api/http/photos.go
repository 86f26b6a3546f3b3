package http

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"rentalreturn-backend/internal/logger"
	"rentalreturn-backend/internal/storage"
)

// PhotoHandler serves the upload and download links handed out by the
// local photo store.
type PhotoHandler struct {
	photos storage.PhotoStore
}

func NewPhotoHandler(photos storage.PhotoStore) *PhotoHandler {
	return &PhotoHandler{photos: photos}
}

// Upload handles PUT to an upload link.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}
	contentType := r.Header.Get("Content-Type")
	if err := storage.ValidateContentType(contentType); err != nil {
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}
	if err := h.photos.VerifyUpload(mux.Vars(r)["token"], key, contentType); err != nil {
		logger.Warn("Rejected photo upload", "key", key, "error", err)
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	if err := h.photos.Save(key, r.Body); err != nil {
		logger.Warn("Failed to save photo", "key", key, "error", err)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}
	w.Header().Set("ETag", `"stored"`)
	w.WriteHeader(http.StatusOK)
}

// Download streams a stored photo.
func (h *PhotoHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}
	file, err := h.photos.Open(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	case ".heic":
		contentType = "image/heic"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Failed to stream photo", "key", key, "error", err)
	}
}

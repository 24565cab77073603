package http

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"nfccard-backend/internal/logger"
	"nfccard-backend/internal/storage"
)

var uploadContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// UploadHandler serves stored application attachments.
type UploadHandler struct {
	files storage.Storage
}

func NewUploadHandler(files storage.Storage) *UploadHandler {
	return &UploadHandler{files: files}
}

// Download handles GET /uploads/{key}
func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" || strings.ContainsAny(key, `/\`) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	file, err := h.files.Open(r.Context(), key)
	if err != nil {
		logger.DebugContext(r.Context(), "Upload not served", "key", key, "error", err)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType, ok := uploadContentTypes[strings.ToLower(filepath.Ext(key))]
	if !ok {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if _, err := io.Copy(w, file); err != nil {
		logger.WarnContext(r.Context(), "Failed to stream upload", "key", key, "error", err)
	}
}

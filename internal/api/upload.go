package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/starford/previewdeck/internal/models"
	"github.com/starford/previewdeck/internal/timestamp"
)

const maxUploadBytes = 50 << 20 // 50 MB

var allowedAudioExt = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

var unsafeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Upload handles POST /api/upload (multipart/form-data, fields "project" and
// "file"). It stores the audio object, writes its metadata sidecar, records
// the upload, and notifies connected clients.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("storage backend not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	project := strings.TrimSpace(r.FormValue("project"))
	if project == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("project is required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := allowedAudioExt[ext]
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("unsupported audio format: %s", ext)))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	ts := time.Now().UTC().Format(timestamp.Layout)
	audioName := fmt.Sprintf("%s_%s%s", slugify(project), ts, ext)

	meta := models.PreviewMetadata{
		Project:   project,
		Timestamp: ts,
		Filename:  audioName,
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	bucket := h.catalog.Bucket()
	ctx := r.Context()
	if err := bucket.Upload(ctx, audioName, data, contentType); err != nil {
		slog.Error("audio upload failed", slog.String("object", audioName), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to store audio"))
		return
	}
	// Sidecar goes second so the catalog never references a missing audio object.
	if err := bucket.Upload(ctx, audioName+".json", metaJSON, "application/json"); err != nil {
		slog.Error("metadata upload failed", slog.String("object", audioName+".json"), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to store metadata"))
		return
	}

	if _, err := h.store.CreateUpload(ctx, models.Upload{
		ProjectName: project,
		Filename:    audioName,
		Timestamp:   ts,
		URL:         bucket.PublicURL(audioName),
		Metadata:    string(metaJSON),
	}); err != nil {
		slog.Error("upload record failed", slog.String("project", project), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to record upload"))
		return
	}

	if h.broker != nil {
		h.broker.PublishUploadCompleted(project, audioName)
		h.broker.PublishCatalogChanged()
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Message:  "upload complete",
		Filename: audioName,
	})
}

// slugify reduces a project name to a safe object-name stem.
func slugify(name string) string {
	s := unsafeNameRe.ReplaceAllString(name, "_")
	s = strings.Trim(s, "_.")
	if s == "" {
		s = "project"
	}
	return s
}

package api

import "github.com/starford/previewdeck/internal/models"

// SaveNoteRequest is the request body for saving a project note.
type SaveNoteRequest struct {
	ProjectName string `json:"projectName"`
	Content     string `json:"content"`
}

// UploadResponse is returned after a successful preview upload.
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// ProjectList is the catalog response payload, ordered most recent first.
type ProjectList = []models.Project

// UploadListResponse wraps the upload history.
type UploadListResponse struct {
	Uploads []models.Upload `json:"uploads"`
}

// Package models defines the domain types for previewdeck.
package models

import "time"

// PreviewMetadata is the sidecar JSON document stored next to each audio
// object in the bucket. Timestamp uses the fixed format YYYYMMDD_HHMMSS.
type PreviewMetadata struct {
	Project   string `json:"project"`
	Timestamp string `json:"timestamp"`
	Filename  string `json:"filename"`
}

// Preview is a PreviewMetadata enriched at fetch time with the public audio
// URL and the parsed timestamp. Never mutated after construction.
type Preview struct {
	PreviewMetadata
	URL        string    `json:"url"`
	ParsedDate time.Time `json:"parsedDate"`
}

// Project groups every preview sharing a project name. Rebuilt on each
// catalog read, never persisted.
type Project struct {
	Name          string    `json:"name"`
	LatestPreview Preview   `json:"latestPreview"`
	Versions      []Preview `json:"versions"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// UserNote is a per-project free-text note. At most one live note exists per
// project name; saving overwrites in place.
type UserNote struct {
	ID          int64     `json:"id"`
	ProjectName string    `json:"projectName"`
	Content     string    `json:"content"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Upload is an append-only record of a completed upload.
type Upload struct {
	ID          int64     `json:"id"`
	ProjectName string    `json:"projectName"`
	Filename    string    `json:"filename"`
	Timestamp   string    `json:"timestamp"`
	URL         string    `json:"url"`
	Metadata    string    `json:"metadata"`
	CreatedAt   time.Time `json:"createdAt"`
}

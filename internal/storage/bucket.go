// Package storage defines the object-store bucket abstraction and its
// filesystem and Supabase implementations.
package storage

import (
	"context"
	"time"
)

// ObjectInfo is a lightweight descriptor returned by list operations.
type ObjectInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bucket is the interface for preview object operations.
type Bucket interface {
	// List returns descriptors for every object whose name starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Download returns the raw bytes of the named object.
	Download(ctx context.Context, name string) ([]byte, error)
	// PublicURL returns a publicly addressable URL for the named object.
	PublicURL(name string) string
	// Upload writes an object, replacing any existing one with the same name.
	Upload(ctx context.Context, name string, data []byte, contentType string) error
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// listPageSize is the page size requested from the Supabase list endpoint.
// Paging policy is owned by the backend; we take what one page gives us.
const listPageSize = 100

// Supabase implements Bucket against the Supabase Storage REST API.
type Supabase struct {
	projectURL string // e.g. https://xyz.supabase.co
	key        string
	bucket     string
	client     *http.Client
}

// NewSupabase creates a Supabase bucket client. A per-request timeout is
// applied so a single stuck download counts as one failed object, never a
// stalled catalog.
func NewSupabase(projectURL, key, bucket string, timeout time.Duration) *Supabase {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Supabase{
		projectURL: strings.TrimRight(projectURL, "/"),
		key:        key,
		bucket:     bucket,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Supabase) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
}

// listEntry is the wire shape of one object in a list response.
type listEntry struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Metadata  struct {
		Size int64 `json:"size"`
	} `json:"metadata"`
}

// List fetches object descriptors via POST /storage/v1/object/list/{bucket}.
func (s *Supabase) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	body, err := json.Marshal(map[string]any{
		"prefix": prefix,
		"limit":  listPageSize,
		"offset": 0,
		"sortBy": map[string]string{"column": "name", "order": "desc"},
	})
	if err != nil {
		return nil, fmt.Errorf("storage: encode list request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/storage/v1/object/list/%s", s.projectURL, s.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("storage: build list request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storage: list: unexpected status %d", resp.StatusCode)
	}

	var entries []listEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("storage: decode list response: %w", err)
	}

	out := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, ObjectInfo{
			Name:      e.Name,
			Size:      e.Metadata.Size,
			UpdatedAt: e.UpdatedAt,
		})
	}
	return out, nil
}

// Download fetches object bytes via GET /storage/v1/object/{bucket}/{name}.
func (s *Supabase) Download(ctx context.Context, name string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.projectURL, s.bucket, escapeName(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build download request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: download %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storage: download %s: unexpected status %d", name, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// PublicURL returns the unauthenticated public object URL.
func (s *Supabase) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.projectURL, s.bucket, escapeName(name))
}

// Upload writes an object via POST /storage/v1/object/{bucket}/{name} with
// upsert semantics.
func (s *Supabase) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.projectURL, s.bucket, escapeName(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("storage: build upload request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage: upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("storage: upload %s: unexpected status %d", name, resp.StatusCode)
	}
	return nil
}

// escapeName escapes each path segment while keeping separators intact.
func escapeName(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

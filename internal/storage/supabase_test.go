package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSupabaseList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/storage/v1/object/list/previews" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["prefix"] != "" {
			t.Errorf("prefix = %v", body["prefix"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name":"a.json","updated_at":"2024-01-05T09:00:00Z","metadata":{"size":42}},
			{"name":"a.mp3","updated_at":"2024-01-05T09:00:00Z","metadata":{"size":1024}}
		]`))
	}))
	defer srv.Close()

	b := NewSupabase(srv.URL, "secret", "previews", 5*time.Second)
	objs, err := b.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("len = %d, want 2", len(objs))
	}
	if objs[0].Name != "a.json" || objs[0].Size != 42 {
		t.Errorf("first object = %+v", objs[0])
	}
}

func TestSupabaseDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/object/previews/a.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"project":"Song A"}`))
	}))
	defer srv.Close()

	b := NewSupabase(srv.URL, "secret", "previews", 5*time.Second)
	data, err := b.Download(context.Background(), "a.json")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(data) != `{"project":"Song A"}` {
		t.Errorf("data = %q", data)
	}
}

func TestSupabaseDownloadErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	b := NewSupabase(srv.URL, "secret", "previews", 5*time.Second)
	if _, err := b.Download(context.Background(), "gone.json"); err == nil {
		t.Error("expected error on 404")
	}
}

func TestSupabasePublicURL(t *testing.T) {
	b := NewSupabase("https://xyz.supabase.co/", "secret", "previews", 0)
	want := "https://xyz.supabase.co/storage/v1/object/public/previews/song%20a.mp3"
	if got := b.PublicURL("song a.mp3"); got != want {
		t.Errorf("PublicURL = %q, want %q", got, want)
	}
}

func TestSupabaseUpload(t *testing.T) {
	var gotUpsert, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/storage/v1/object/previews/new.mp3" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotUpsert = r.Header.Get("x-upsert")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := NewSupabase(srv.URL, "secret", "previews", 5*time.Second)
	if err := b.Upload(context.Background(), "new.mp3", []byte("audio"), "audio/mpeg"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gotUpsert != "true" {
		t.Errorf("x-upsert = %q", gotUpsert)
	}
	if gotContentType != "audio/mpeg" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
}

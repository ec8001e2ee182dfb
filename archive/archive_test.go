package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ytdigest/models"
)

// objectStore is a minimal S3-compatible object server: path-style PUT and
// GET over an in-memory map.
type objectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *objectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.objects[r.URL.Path] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := s.objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *objectStore) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok
}

func newTestClient(t *testing.T) (*Client, *objectStore) {
	t.Helper()

	store := &objectStore{objects: make(map[string][]byte)}
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		AccessKey: "test-access",
		SecretKey: "test-secret",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		Bucket:    "transcript-archive",
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client, store
}

func TestStoreAndFetch(t *testing.T) {
	client, store := newTestClient(t)
	ctx := context.Background()

	original := &models.Transcript{
		VideoID:         "vid-1",
		Content:         "hello and welcome to the show",
		Enhanced:        "# Timestamps and Text\n\n[00:00] hello",
		Summary:         "a concise summary",
		Language:        "en",
		IsAutoGenerated: true,
		WordCount:       6,
	}

	if err := client.Store(ctx, "dQw4w9WgXcQ", original); err != nil {
		t.Fatalf("failed to store transcript: %v", err)
	}
	if !store.has("/transcript-archive/transcripts/dQw4w9WgXcQ.json") {
		t.Fatal("expected object under transcripts/{youtubeID}.json in the bucket")
	}

	got, err := client.Fetch(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("failed to fetch transcript: %v", err)
	}
	if got.Content != original.Content {
		t.Errorf("expected content %q, got %q", original.Content, got.Content)
	}
	if got.Summary != original.Summary || got.Enhanced != original.Enhanced {
		t.Errorf("unexpected payload: %+v", got)
	}
	if got.Language != "en" || !got.IsAutoGenerated || got.WordCount != 6 {
		t.Errorf("unexpected metadata: %+v", got)
	}
}

func TestStoreOverwrites(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	if err := client.Store(ctx, "dQw4w9WgXcQ", &models.Transcript{Content: "first"}); err != nil {
		t.Fatalf("failed to store transcript: %v", err)
	}
	if err := client.Store(ctx, "dQw4w9WgXcQ", &models.Transcript{Content: "second"}); err != nil {
		t.Fatalf("failed to overwrite transcript: %v", err)
	}

	got, err := client.Fetch(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("failed to fetch transcript: %v", err)
	}
	if got.Content != "second" {
		t.Errorf("expected overwritten content, got %q", got.Content)
	}
}

func TestFetchMissing(t *testing.T) {
	client, _ := newTestClient(t)

	if _, err := client.Fetch(context.Background(), "missing-id-00"); err == nil {
		t.Error("expected error for a missing archive object")
	}
}

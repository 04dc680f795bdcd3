package maganghub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c := New(context.Background(), nil)
	c.APIURL = url
	c.Backoff = time.Millisecond
	return c
}

func TestFetchPageRetriesOnServerError(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if got := r.URL.Query().Get("order_by"); got != "jumlah_kuota" {
			t.Errorf("unexpected order_by: %q", got)
		}
		if got := r.URL.Query().Get("kode_provinsi"); got != "34" {
			t.Errorf("unexpected kode_provinsi: %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"posisi": "Marketing"}},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	page, err := client.FetchPage(1, 100, 34, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(page.Records()) != 1 {
		t.Fatalf("expected 1 record, got %d", len(page.Records()))
	}
}

func TestFetchPageDoesNotRetryClientError(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	if _, err := client.FetchPage(1, 100, 0, nil); err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestSavePageAddsScrapedAt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payload := Page{"data": []any{map[string]any{"posisi": "Marketing"}}}

	path, err := SavePage(payload, dir, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "2.json" {
		t.Fatalf("unexpected filename: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved page: %v", err)
	}

	var saved map[string]any
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("saved page is not valid json: %v", err)
	}

	ts, ok := saved["_scraped_at"].(string)
	if !ok || ts == "" {
		t.Fatalf("expected _scraped_at timestamp, got %v", saved["_scraped_at"])
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Fatalf("_scraped_at is not RFC3339: %v", err)
	}

	// The original payload must stay untouched.
	if _, ok := payload["_scraped_at"]; ok {
		t.Fatal("SavePage mutated its input")
	}
}

func TestScrapeAllStopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	pages := map[string][]any{
		"1": {map[string]any{"posisi": "A"}},
		"2": {map[string]any{"posisi": "B"}},
		"3": {},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": pages[r.URL.Query().Get("page")]})
	}))
	defer srv.Close()

	dir := t.TempDir()
	client := newTestClient(t, srv.URL)

	saved, err := client.ScrapeAll(ScrapeOptions{Dir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The empty stopping page is saved too.
	if saved != 3 {
		t.Fatalf("expected 3 saved pages, got %d", saved)
	}

	for _, name := range []string{"1.json", "2.json", "3.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestScrapeAllHonorsMaxPages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{map[string]any{"posisi": "A"}}})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	saved, err := client.ScrapeAll(ScrapeOptions{Dir: t.TempDir(), MaxPages: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != 2 {
		t.Fatalf("expected 2 saved pages, got %d", saved)
	}
}

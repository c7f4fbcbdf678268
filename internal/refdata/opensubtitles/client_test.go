package opensubtitles

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearchEpisode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subtitles" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Api-Key") != "key" {
			t.Error("missing api key header")
		}
		query := r.URL.Query()
		if query.Get("parent_tmdb_id") != "42" || query.Get("season_number") != "1" || query.Get("episode_number") != "3" {
			t.Errorf("query = %v", query)
		}
		fmt.Fprint(w, `{"data":[
			{"id":"b","attributes":{"language":"en","download_count":10,"ai_translated":true,"files":[{"file_id":2}]}},
			{"id":"a","attributes":{"language":"en","download_count":5,"files":[{"file_id":1}]}},
			{"id":"c","attributes":{"language":"","files":[{"file_id":3}]}}
		],"meta":{"total_count":3}}`)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	subtitles, err := client.SearchEpisode(context.Background(), 42, 1, 3, []string{"en"})
	if err != nil {
		t.Fatalf("SearchEpisode: %v", err)
	}
	if len(subtitles) != 2 {
		t.Fatalf("len = %d, want 2 (missing language dropped)", len(subtitles))
	}
	// Human subtitles rank ahead of machine translations despite downloads.
	if subtitles[0].ID != "a" || subtitles[1].ID != "b" {
		t.Errorf("order = %s, %s", subtitles[0].ID, subtitles[1].ID)
	}
}

func TestDownloadFollowsLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		fmt.Fprint(w, `{"link":"/payload/file.srt","file_name":"file.srt","language":"en"}`)
	})
	mux.HandleFunc("/payload/file.srt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "1\n00:00:01,000 --> 00:00:02,000\nhi\n")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := New(Config{APIKey: "key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data, err := client.Download(context.Background(), 7)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty payload")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing api key")
	}
}

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("opensubtitles: search failed (429 Too Many Requests): slow down"), true},
		{errors.New("opensubtitles: search failed (503 Service Unavailable)"), true},
		{errors.New("connection reset by peer"), true},
		{context.DeadlineExceeded, true},
		{errors.New("opensubtitles: search failed (401 Unauthorized)"), false},
	}
	for _, tt := range tests {
		if got := IsRetriable(tt.err); got != tt.want {
			t.Errorf("IsRetriable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestSleepWithContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepWithContext(ctx, time.Minute); err == nil {
		t.Error("expected context error")
	}
	if err := SleepWithContext(context.Background(), 0); err != nil {
		t.Errorf("zero sleep: %v", err)
	}
}

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"musicstats/internal/config"
	"musicstats/internal/logger"
	"musicstats/internal/report"
	"musicstats/internal/stats"
)

const libraryXML = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>Tracks</key>
	<dict>
		<dict>
			<key>Track ID</key><integer>1</integer>
			<key>Name</key><string>Bohemian Rhapsody</string>
			<key>Artist</key><string>Queen</string>
			<key>Genre</key><string>Rock</string>
			<key>Play Count</key><integer>5</integer>
			<key>Date Added</key><date>2021-03-01T10:00:00Z</date>
		</dict>
		<dict>
			<key>Track ID</key><integer>2</integer>
			<key>Artist</key><string>Queen</string>
			<key>Genre</key><string>Rock</string>
			<key>Play Count</key><integer>3</integer>
			<key>Date Added</key><date>2021-04-01T10:00:00Z</date>
		</dict>
		<dict>
			<key>Track ID</key><integer>3</integer>
			<key>Artist</key><string>Miles Davis</string>
			<key>Genre</key><string>Jazz</string>
			<key>Play Count</key><integer>10</integer>
			<key>Date Added</key><date>2020-05-01T10:00:00Z</date>
		</dict>
	</dict>
</dict>
</plist>
`

func quietLogger() *logger.Logger {
	l := logger.New(false)
	var sink bytes.Buffer
	l.SetOutput(&sink, &sink)
	return l
}

func writeLibrary(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "Library.xml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestServer(t *testing.T) (*Server, *Store) {
	t.Helper()
	path := writeLibrary(t, t.TempDir(), libraryXML)
	store := NewStore(path)
	if _, err := store.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.LibraryPath = path
	return NewServer(store, cfg, quietLogger()), store
}

func TestHandleSummary(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/summary?since=2021-01-01&until=2021-12-31", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var summary report.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if summary.Tracks != 2 || summary.TotalTracks != 3 {
		t.Errorf("tracks = %d of %d, want 2 of 3", summary.Tracks, summary.TotalTracks)
	}
	if len(summary.Genres) != 1 || summary.Genres[0] != (stats.Entry{Name: "Rock", Plays: 8}) {
		t.Errorf("Genres = %v, want [{Rock 8}]", summary.Genres)
	}
}

func TestHandleGenresAndArtists(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	tests := []struct {
		path string
		want []stats.Entry
	}{
		{"/api/genres", []stats.Entry{{Name: "Jazz", Plays: 10}, {Name: "Rock", Plays: 8}}},
		{"/api/genres?top=1", []stats.Entry{{Name: "Jazz", Plays: 10}}},
		{"/api/artists", []stats.Entry{{Name: "Miles Davis", Plays: 10}, {Name: "Queen", Plays: 8}}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}

			var got []stats.Entry
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHandleSummaryBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"bad since", http.MethodGet, "/api/summary?since=yesterday", http.StatusBadRequest},
		{"bad top", http.MethodGet, "/api/summary?top=-2", http.StatusBadRequest},
		{"until alone", http.MethodGet, "/api/summary?until=2021-01-01", http.StatusBadRequest},
		{"wrong method", http.MethodPost, "/api/summary", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleTrack(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tracks/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID         int64          `json:"id"`
		Properties map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.ID != 1 || resp.Properties["Name"] != "Bohemian Rhapsody" {
		t.Errorf("response = %+v", resp)
	}

	for path, want := range map[string]int{
		"/api/tracks/99":  http.StatusNotFound,
		"/api/tracks/abc": http.StatusBadRequest,
		"/api/tracks/":    http.StatusBadRequest,
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, want)
		}
	}
}

func TestNotLoaded(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.xml"))
	srv := NewServer(store, config.DefaultConfig(), quietLogger())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/genres", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"musicstats_http_requests_total", "musicstats_library_loads_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	var out bytes.Buffer
	l := logger.New(true)
	l.SetOutput(&out, &out)
	srv := NewServer(NewStore("unused.xml"), config.DefaultConfig(), l)

	rec := httptest.NewRecorder()
	srv.writeJSON(rec, map[string]any{"bad": func() {}})

	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if !strings.Contains(out.String(), "Failed to write JSON response") {
		t.Errorf("log output = %q, want encode failure", out.String())
	}
}

func TestNormalizePath(t *testing.T) {
	if got := normalizePath("/api/tracks/123"); got != "/api/tracks/{id}" {
		t.Errorf("normalizePath() = %q", got)
	}
	if got := normalizePath("/api/genres"); got != "/api/genres" {
		t.Errorf("normalizePath() = %q", got)
	}
}

func TestWebSocketPushesOnReload(t *testing.T) {
	srv, store := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?top=1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()

	read := func() report.Summary {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error: %v", err)
		}
		var s report.Summary
		if err := json.Unmarshal(data, &s); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		return s
	}

	first := read()
	if len(first.Genres) != 1 || first.Genres[0].Name != "Jazz" {
		t.Errorf("initial Genres = %v, want [Jazz]", first.Genres)
	}

	writeLibrary(t, filepath.Dir(store.Path()), strings.Replace(libraryXML, "<integer>10</integer>", "<integer>1</integer>", 1))
	if _, err := store.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	second := read()
	if len(second.Genres) != 1 || second.Genres[0].Name != "Rock" {
		t.Errorf("Genres after reload = %v, want [Rock]", second.Genres)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeLibrary(t, dir, libraryXML)
	store := NewStore(path)
	if _, err := store.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	updates := store.Subscribe()
	defer store.Unsubscribe(updates)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, store, quietLogger()) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeLibrary(t, dir, strings.Replace(libraryXML, "Miles Davis", "John Coltrane", 1))

	select {
	case snap := <-updates:
		if snap.Version != 2 {
			t.Errorf("Version = %d, want 2", snap.Version)
		}
		track, _ := snap.Library.Get(3)
		if a, _ := track.String("Artist"); a != "John Coltrane" {
			t.Errorf("Artist = %q, want John Coltrane", a)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

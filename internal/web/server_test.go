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

	"dumplingtale/internal/game"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	return &Server{Host: newTestHost(t), AssetsDir: t.TempDir()}
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, testServer(t), "/healthz")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "ok" {
		t.Errorf("GET /healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestHandleIndex(t *testing.T) {
	rec := get(t, testServer(t), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var info indexInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Title != "Test Tale" || len(info.Chapters) != 1 || info.Chapters[0].Name != "Home" {
		t.Errorf("info = %+v", info)
	}
	if info.HasSave {
		t.Error("fresh server should have no save")
	}
}

func TestHandleIndex_UnknownPath(t *testing.T) {
	if rec := get(t, testServer(t), "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestHandleAchievements(t *testing.T) {
	srv := testServer(t)
	srv.Host.View(func(g *game.Game) { g.Flags.Set("arrivedHome", true) })

	rec := get(t, srv, "/api/achievements")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp achievementsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Achievements) != 10 || resp.Unlocked != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	for _, a := range resp.Achievements {
		if a.ID == 8 && !a.Unlocked {
			t.Error("Homecoming should be unlocked")
		}
	}
}

func TestHandleHistoryAndStatus(t *testing.T) {
	srv := testServer(t)
	if err := srv.Host.Handle(context.Background(), msg(t, "new_game", nil)); err != nil {
		t.Fatalf("new_game: %v", err)
	}
	_ = srv.Host.Handle(context.Background(), msg(t, "skip", nil))

	rec := get(t, srv, "/api/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("history: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"Hi."`) {
		t.Errorf("history body = %s", rec.Body.String())
	}

	rec = get(t, srv, "/api/status")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"mode":"dialogue"`) {
		t.Errorf("status = %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandleMap(t *testing.T) {
	srv := testServer(t)
	_ = srv.Host.Handle(context.Background(), msg(t, "new_game", nil))
	_ = srv.Host.Handle(context.Background(), msg(t, "skip", nil))

	rec := get(t, srv, "/api/map.pdf")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}

func writeAsset(t *testing.T, dir, kind, name string, data []byte) {
	t.Helper()
	d := filepath.Join(dir, kind)
	if err := os.MkdirAll(d, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(d, name), data, 0o600); err != nil { //nolint:gosec // test fixture
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestHandleAsset(t *testing.T) {
	srv := testServer(t)
	writeAsset(t, srv.AssetsDir, "audio", "itemPlace.ogg", []byte("OggS fake"))
	writeAsset(t, srv.AssetsDir, "images", "hands_normal.png", []byte("\x89PNG fake"))

	tests := []struct {
		path  string
		code  int
		ctype string
	}{
		{"/assets/audio/itemPlace", http.StatusOK, "audio/ogg"},
		{"/assets/images/hands_normal", http.StatusOK, "image/png"},
		{"/assets/images/hands_normal.png", http.StatusOK, "image/png"},
		{"/assets/audio/missing", http.StatusNotFound, ""},
		{"/assets/video/itemPlace", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rec := get(t, srv, tt.path)
		if rec.Code != tt.code {
			t.Errorf("GET %s: expected %d, got %d", tt.path, tt.code, rec.Code)
			continue
		}
		if tt.ctype != "" && rec.Header().Get("Content-Type") != tt.ctype {
			t.Errorf("GET %s: Content-Type = %q", tt.path, rec.Header().Get("Content-Type"))
		}
	}
}

func TestAssetCandidates_RejectsUnsafeKeys(t *testing.T) {
	srv := &Server{AssetsDir: t.TempDir()}
	for _, key := range []string{"", ".", "..", "../secret", "a/b", "/etc/passwd"} {
		if _, ok := srv.assetCandidates("images", key); ok {
			t.Errorf("key %q should be rejected", key)
		}
	}
	got, ok := srv.assetCandidates("audio", "coin_click")
	if !ok || len(got) != len(assetKinds["audio"]) {
		t.Errorf("candidates = %v, %v", got, ok)
	}
}

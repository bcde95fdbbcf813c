package web

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads frames until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if env.Type == typ {
			return env
		}
	}
}

func TestWebSocket_NewGame(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	conn := dial(t, ts)
	hello := readUntil(t, conn, "hello")
	if p, ok := hello.Payload.(map[string]any); !ok || p["id"] == "" {
		t.Errorf("hello payload = %v", hello.Payload)
	}

	if err := conn.WriteJSON(map[string]any{"type": "new_game"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	sp := readUntil(t, conn, "speaker")
	if p, ok := sp.Payload.(map[string]any); !ok || p["name"] != "Mom" {
		t.Errorf("speaker payload = %v", sp.Payload)
	}
}

func TestWebSocket_UnknownMessageReportsError(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	conn := dial(t, ts)
	readUntil(t, conn, "status")
	if err := conn.WriteJSON(map[string]any{"type": "dance"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	env := readUntil(t, conn, "error")
	p, ok := env.Payload.(map[string]any)
	if !ok || p["type"] != "dance" {
		t.Errorf("error payload = %v", env.Payload)
	}
}

func TestWebSocket_InvalidJSON(t *testing.T) {
	srv := testServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	conn := dial(t, ts)
	readUntil(t, conn, "status")
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, "error")
}

package web

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"dumplingtale/internal/game"
	"dumplingtale/internal/save"
	"dumplingtale/internal/story"
)

const testYAML = `
title: Test Tale
chapters:
  - name: Home
    description: Coming home.
    start: 1
    end: 9
    nodes:
      - id: 1
        speaker: Mom
        text: Hi.
        hands: hands_normal
        next: 2
      - id: 2
        speaker: Mom
        text: Fold one.
        next: 3
        minigame:
          target: 1
      - id: 3
        text: Done.
`

func newTestHost(t *testing.T) *Host {
	t.Helper()
	c, err := story.ParseContent([]byte(testYAML))
	if err != nil {
		t.Fatalf("ParseContent: %v", err)
	}
	h, err := NewHost(game.Options{
		Content:   c,
		Slot:      save.NewFileSlot(filepath.Join(t.TempDir(), "slot.json")),
		CharDelay: time.Millisecond,
	}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}
	return h
}

func msg(t *testing.T, typ string, payload any) inboundMessage {
	t.Helper()
	m := inboundMessage{Type: typ}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		m.Payload = b
	}
	return m
}

// drain collects every frame currently buffered for c.
func drain(c *client) []Envelope {
	var out []Envelope
	for {
		select {
		case env := <-c.send:
			out = append(out, env)
		default:
			return out
		}
	}
}

func types(envs []Envelope) map[string]int {
	m := map[string]int{}
	for _, e := range envs {
		m[e.Type]++
	}
	return m
}

func TestHost_AttachPrimesClient(t *testing.T) {
	h := newTestHost(t)
	c := h.Attach(context.Background())
	got := drain(c)
	if len(got) != 3 || got[0].Type != "hello" || got[1].Type != "screen" || got[2].Type != "status" {
		t.Fatalf("attach frames = %+v", got)
	}
	if h.Clients() != 1 {
		t.Errorf("Clients() = %d", h.Clients())
	}
	h.Detach(context.Background(), c.id)
	if h.Clients() != 0 {
		t.Errorf("Clients() after detach = %d", h.Clients())
	}
}

func TestHost_NewGameBroadcasts(t *testing.T) {
	ctx := context.Background()
	h := newTestHost(t)
	a := h.Attach(ctx)
	b := h.Attach(ctx)
	drain(a)
	drain(b)

	if err := h.Handle(ctx, msg(t, "new_game", nil)); err != nil {
		t.Fatalf("new_game: %v", err)
	}
	for _, c := range []*client{a, b} {
		seen := types(drain(c))
		if seen["speaker"] == 0 || seen["text"] == 0 || seen["status"] == 0 {
			t.Errorf("client %s saw %v", c.id, seen)
		}
	}
	if h.screen.Speaker != "Mom" || h.screen.Images["hands"] != "hands_normal" {
		t.Errorf("screen = %+v", h.screen)
	}
}

func TestHost_PlayThroughMinigame(t *testing.T) {
	ctx := context.Background()
	h := newTestHost(t)
	c := h.Attach(ctx)

	send := func(typ string, payload any) {
		t.Helper()
		if err := h.Handle(ctx, msg(t, typ, payload)); err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
	}
	send("new_game", nil)
	send("advance", nil)
	send("advance", nil)
	send("advance", nil)
	if h.game.Mode() != game.ModeMinigame {
		t.Fatalf("mode = %s, want minigame", h.game.Mode())
	}

	send("pointer_down", targetPayload{Target: "base_stack"})
	send("pointer_up", nil)
	send("pointer_down", targetPayload{Target: "water_bowl"})
	send("pointer_up", nil)
	send("pointer_down", targetPayload{Target: "item"})
	for range 30 {
		h.Step(100 * time.Millisecond)
	}
	send("pointer_up", nil)
	for _, target := range []string{"spoon", "filling_bowl", "item", "item"} {
		send("pointer_down", targetPayload{Target: target})
		send("pointer_up", nil)
	}

	seen := types(drain(c))
	for _, want := range []string{"minigame:start", "minigame:item", "minigame:end", "achievement", "flag"} {
		if seen[want] == 0 {
			t.Errorf("no %s frame, saw %v", want, seen)
		}
	}
	if id := h.game.Dialogue.CurrentNodeID(); id != 3 {
		t.Errorf("node after minigame = %d, want 3", id)
	}
}

func TestHost_ContinueWithoutSave(t *testing.T) {
	ctx := context.Background()
	h := newTestHost(t)
	c := h.Attach(ctx)
	drain(c)
	if err := h.Handle(ctx, msg(t, "continue", nil)); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if types(drain(c))["no_save"] != 1 {
		t.Error("expected a no_save frame")
	}
}

func TestHost_BadMessages(t *testing.T) {
	ctx := context.Background()
	h := newTestHost(t)

	err := h.Handle(ctx, msg(t, "fly", nil))
	if !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("unknown type: err = %v", err)
	}
	if err := h.Handle(ctx, inboundMessage{Type: "choose", Payload: json.RawMessage(`"x"`)}); err == nil {
		t.Error("expected error for malformed choose payload")
	}
	if err := h.Handle(ctx, msg(t, "start_chapter", chapterPayload{Name: "Hmoe"})); err == nil {
		t.Error("expected error for unknown chapter")
	}
}

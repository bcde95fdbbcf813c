package story

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
title: Test Tale
chapters:
  - name: Arrival
    start: 1
    end: 99
    nodes:
      - id: 1
        speaker: Mom
        text: Welcome home.
        next: 2
      - id: 2
        text: The kitchen smells of dough.
        choices:
          - text: Help out
            target: 3
          - text: Use the secret fold
            target: 4
            requires: learnedRecipe
      - id: 3
        text: Let's make dumplings.
        autosave: true
        minigame:
          target: 5
          difficulty: hard
          special:
            type: coin
            appear_on: 3
          hooks:
            - trigger: item_completed
              at_count: 2
              speaker: Grandma
              text: Nice and tidy.
              play_once: true
              no_pause: true
          outcomes:
            excellent: 100
          next: 101
      - id: 4
        text: Grandma nods.
  - name: Dinner
    start: 100
    end: 199
    nodes:
      - id: 100
        text: A perfect batch.
      - id: 101
        text: A decent batch.
`

func TestParseContent(t *testing.T) {
	c, err := ParseContent([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("ParseContent: %v", err)
	}
	if c.Title != "Test Tale" || len(c.Chapters) != 2 {
		t.Fatalf("Unexpected content: %+v", c)
	}

	n, ch, err := c.Node(3)
	if err != nil {
		t.Fatalf("Node(3): %v", err)
	}
	if ch.Name != "Arrival" || !n.Autosave || n.Minigame == nil {
		t.Fatalf("Unexpected node 3: %+v in %q", n, ch.Name)
	}
	m := n.Minigame
	if m.Difficulty != Hard || m.Special.AppearOn != 3 || len(m.Hooks) != 1 {
		t.Errorf("Unexpected minigame: %+v", m)
	}
	if m.Hooks[0].Trigger != OnItemCompleted || !m.Hooks[0].NoPause {
		t.Errorf("Unexpected hook: %+v", m.Hooks[0])
	}
	if id, ok := m.ReturnNode(Excellent); !ok || id != 100 {
		t.Errorf("Expected excellent -> 100, got %d %v", id, ok)
	}
	if id, ok := m.ReturnNode(Poor); !ok || id != 101 {
		t.Errorf("Expected poor -> 101 fallback, got %d %v", id, ok)
	}

	if _, _, err := c.Node(150); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound for 150, got %v", err)
	}
	if _, _, err := c.Node(500); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound for 500, got %v", err)
	}
}

func TestLoadContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil { //nolint:gosec // test fixture
		t.Fatal(err)
	}
	c, err := LoadContent(path)
	if err != nil {
		t.Fatalf("LoadContent: %v", err)
	}
	if first, ok := c.First(); !ok || first.Name != "Arrival" {
		t.Errorf("Expected first chapter Arrival, got %+v", first)
	}

	if _, err := LoadContent(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestChapterByName(t *testing.T) {
	c, err := ParseContent([]byte(sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	ch, err := c.ChapterByName("Dinner")
	if err != nil || ch.Start != 100 {
		t.Fatalf("Expected Dinner chapter, got %+v %v", ch, err)
	}

	_, err = c.ChapterByName("Diner")
	if !errors.Is(err, ErrChapterNotFound) {
		t.Fatalf("Expected ErrChapterNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), `did you mean "Dinner"`) {
		t.Errorf("Expected suggestion in %q", err.Error())
	}

	_, err = c.ChapterByName("Completely different")
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("Expected plain not-found error, got %v", err)
	}
}

func TestChapterEntry(t *testing.T) {
	ch := Chapter{Name: "x", Start: 10, End: 20}
	if ch.EntryID() != 10 {
		t.Errorf("Expected entry to default to start, got %d", ch.EntryID())
	}
	ch.Entry = 12
	if ch.EntryID() != 12 {
		t.Errorf("Expected explicit entry 12, got %d", ch.EntryID())
	}
}

func TestMinigameMode(t *testing.T) {
	timed := MinigameSpec{}
	if !timed.IsTimed() || timed.Limit() != DefaultTimeLimit {
		t.Errorf("Expected timed with default limit, got %v %v", timed.IsTimed(), timed.Limit())
	}
	counted := MinigameSpec{Target: 4, TimeLimit: 30}
	if counted.IsTimed() || counted.Limit() != 30 {
		t.Errorf("Expected counted with limit 30, got %v %v", counted.IsTimed(), counted.Limit())
	}
	if _, ok := counted.ReturnNode(Good); ok {
		t.Error("Expected no return node without outcomes or next")
	}
}

func TestLoadContent_ShippedStory(t *testing.T) {
	c, err := LoadContent("../../content/story.yaml")
	if err != nil {
		t.Fatalf("LoadContent: %v", err)
	}
	if len(c.Chapters) != 3 {
		t.Fatalf("Expected 3 chapters, got %d", len(c.Chapters))
	}
	n, _, err := c.Node(6)
	if err != nil {
		t.Fatalf("Node(6): %v", err)
	}
	if len(n.Sets) != 1 || n.Sets[0] != "arrivedHome" {
		t.Errorf("Expected node 6 to set arrivedHome, got %v", n.Sets)
	}
	timed, _, err := c.Node(122)
	if err != nil {
		t.Fatalf("Node(122): %v", err)
	}
	if timed.Minigame == nil || !timed.Minigame.IsTimed() {
		t.Errorf("Expected node 122 to be a timed minigame: %+v", timed.Minigame)
	}
}

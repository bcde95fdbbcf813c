// Package sqlite keeps the save slot in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"dumplingtale/internal/dialogue"
	"dumplingtale/internal/save"
	"dumplingtale/internal/save/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Slot is a single-row save table.
type Slot struct {
	db *sql.DB
}

var _ save.Slot = (*Slot)(nil)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path and applies the embedded migrations.
func Open(ctx context.Context, path string) (*Slot, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Slot{db: db}, nil
}

func (s *Slot) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Slot) Read(ctx context.Context) (save.Record, bool, error) {
	var (
		rec                          save.Record
		flagsJSON, histJSON, achJSON string
		savedAt                      int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT
		current_node_id, pre_minigame_node_id, perfect_item_counter,
		story_flags_json, history_json, achievements_json, saved_at
		FROM save_slot WHERE id = 1`).Scan(
		&rec.CurrentNodeID, &rec.PreMinigameNodeID, &rec.PerfectItemCounter,
		&flagsJSON, &histJSON, &achJSON, &savedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return save.Record{}, false, nil
	}
	if err != nil {
		return save.Record{}, false, fmt.Errorf("read save slot: %w", err)
	}
	if err := json.Unmarshal([]byte(flagsJSON), &rec.StoryFlags); err != nil {
		return save.Record{}, false, fmt.Errorf("decode story flags: %w", err)
	}
	var hist []dialogue.Entry
	if err := json.Unmarshal([]byte(histJSON), &hist); err != nil {
		return save.Record{}, false, fmt.Errorf("decode history: %w", err)
	}
	rec.DialogueHistory = hist
	if err := json.Unmarshal([]byte(achJSON), &rec.UnlockedAchievementIDs); err != nil {
		return save.Record{}, false, fmt.Errorf("decode achievements: %w", err)
	}
	rec.SavedAt = fromMillis(savedAt)
	return rec, true, nil
}

func (s *Slot) Write(ctx context.Context, rec save.Record) error {
	flagsJSON, err := json.Marshal(nonNilFlags(rec.StoryFlags))
	if err != nil {
		return fmt.Errorf("encode story flags: %w", err)
	}
	histJSON, err := json.Marshal(nonNilHistory(rec.DialogueHistory))
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	ids := rec.UnlockedAchievementIDs
	if ids == nil {
		ids = []int{}
	}
	achJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode achievements: %w", err)
	}
	savedAt := rec.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO save_slot (
		   id, current_node_id, pre_minigame_node_id, perfect_item_counter,
		   story_flags_json, history_json, achievements_json, saved_at
		 ) VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   current_node_id = excluded.current_node_id,
		   pre_minigame_node_id = excluded.pre_minigame_node_id,
		   perfect_item_counter = excluded.perfect_item_counter,
		   story_flags_json = excluded.story_flags_json,
		   history_json = excluded.history_json,
		   achievements_json = excluded.achievements_json,
		   saved_at = excluded.saved_at`,
		rec.CurrentNodeID, rec.PreMinigameNodeID, rec.PerfectItemCounter,
		string(flagsJSON), string(histJSON), string(achJSON), toMillis(savedAt),
	)
	if err != nil {
		return fmt.Errorf("write save slot: %w", err)
	}
	return nil
}

func (s *Slot) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM save_slot WHERE id = 1`); err != nil {
		return fmt.Errorf("delete save slot: %w", err)
	}
	return nil
}

func nonNilFlags(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}

func nonNilHistory(h []dialogue.Entry) []dialogue.Entry {
	if h == nil {
		return []dialogue.Entry{}
	}
	return h
}

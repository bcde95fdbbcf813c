// Package save snapshots the story flags, achievements, dialogue position and
// history into one record kept in a single overwritten slot.
package save

import (
	"context"
	"time"

	"dumplingtale/internal/dialogue"
)

// Record is the persisted game. A missing record means no save exists.
type Record struct {
	CurrentNodeID          int              `json:"currentNodeId"`
	StoryFlags             map[string]bool  `json:"storyFlags"`
	DialogueHistory        []dialogue.Entry `json:"dialogueHistory"`
	PreMinigameNodeID      int              `json:"preMinigameNodeId"`
	UnlockedAchievementIDs []int            `json:"unlockedAchievementIds"`
	PerfectItemCounter     int              `json:"perfectItemCounter"`
	SavedAt                time.Time        `json:"savedAt"`
}

// Slot stores at most one record. Read reports ok=false when nothing is
// stored.
type Slot interface {
	Read(ctx context.Context) (rec Record, ok bool, err error)
	Write(ctx context.Context, rec Record) error
	Delete(ctx context.Context) error
}

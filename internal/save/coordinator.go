package save

import (
	"context"
	"io"
	"log"
	"time"

	"dumplingtale/internal/dialogue"
)

type FlagState interface {
	GetAll() map[string]bool
	RestoreAll(m map[string]bool)
}

type AchievementState interface {
	UnlockedIDs() []int
	PerfectCount() int
	Restore(ids []int, perfect int)
}

type DialogueState interface {
	CurrentNodeID() int
	History() *dialogue.History
}

type Options struct {
	Logger  *log.Logger
	Now     func() time.Time
	Timeout time.Duration
}

// Coordinator builds records from the live services and applies them back.
type Coordinator struct {
	slot     Slot
	flags    FlagState
	ach      AchievementState
	dlg      DialogueState
	log      *log.Logger
	now      func() time.Time
	timeout  time.Duration
	preNode  int
	disabled bool
}

func NewCoordinator(slot Slot, flags FlagState, ach AchievementState, dlg DialogueState, opts Options) *Coordinator {
	c := &Coordinator{
		slot:    slot,
		flags:   flags,
		ach:     ach,
		dlg:     dlg,
		log:     opts.Logger,
		now:     opts.Now,
		timeout: opts.Timeout,
	}
	if c.log == nil {
		c.log = log.New(io.Discard, "", 0)
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.timeout <= 0 {
		c.timeout = 5 * time.Second
	}
	return c
}

// SetPreMinigameNode records the node that was current when a minigame began.
func (c *Coordinator) SetPreMinigameNode(id int) { c.preNode = id }

func (c *Coordinator) PreMinigameNode() int { return c.preNode }

// Snapshot captures the current state.
func (c *Coordinator) Snapshot() Record {
	return Record{
		CurrentNodeID:          c.dlg.CurrentNodeID(),
		StoryFlags:             c.flags.GetAll(),
		DialogueHistory:        c.dlg.History().Entries(),
		PreMinigameNodeID:      c.preNode,
		UnlockedAchievementIDs: c.ach.UnlockedIDs(),
		PerfectItemCounter:     c.ach.PerfectCount(),
		SavedAt:                c.now().UTC(),
	}
}

func (c *Coordinator) Save(ctx context.Context) error {
	return c.write(ctx, c.Snapshot())
}

// SaveAtNode saves the current state with id as the current node.
func (c *Coordinator) SaveAtNode(ctx context.Context, id int) error {
	rec := c.Snapshot()
	rec.CurrentNodeID = id
	return c.write(ctx, rec)
}

func (c *Coordinator) write(ctx context.Context, rec Record) error {
	if c.disabled {
		return nil
	}
	if err := c.slot.Write(ctx, rec); err != nil {
		return err
	}
	c.log.Printf("save: wrote node %d (%d flags, %d achievements)",
		rec.CurrentNodeID, len(rec.StoryFlags), len(rec.UnlockedAchievementIDs))
	return nil
}

// RequestSave saves and logs any failure. Callers never see the error.
// While no node is on screen only the achievement fields of the saved
// record are updated, so the menu never replaces a game with an empty one.
func (c *Coordinator) RequestSave(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	var err error
	if c.dlg.CurrentNodeID() == 0 {
		err = c.mergeAchievements(ctx)
	} else {
		err = c.Save(ctx)
	}
	if err != nil {
		c.log.Printf("save: %s: %v", reason, err)
	}
}

// mergeAchievements rewrites the saved record with the live achievement
// state. Without a saved record nothing is written.
func (c *Coordinator) mergeAchievements(ctx context.Context) error {
	if c.disabled {
		return nil
	}
	rec, ok, err := c.slot.Read(ctx)
	if err != nil || !ok {
		return err
	}
	rec.UnlockedAchievementIDs = c.ach.UnlockedIDs()
	rec.PerfectItemCounter = c.ach.PerfectCount()
	rec.SavedAt = c.now().UTC()
	return c.write(ctx, rec)
}

// Load reads the slot. Any failure is logged and reported as no save.
func (c *Coordinator) Load(ctx context.Context) (Record, bool) {
	rec, ok, err := c.slot.Read(ctx)
	if err != nil {
		c.log.Printf("save: load failed: %v", err)
		return Record{}, false
	}
	return rec, ok
}

func (c *Coordinator) HasSave(ctx context.Context) bool {
	_, ok := c.Load(ctx)
	return ok
}

func (c *Coordinator) Delete(ctx context.Context) error {
	return c.slot.Delete(ctx)
}

// Restore applies rec to the live services. The caller resumes the
// dialogue at rec.CurrentNodeID. Saves requested while restoring are
// dropped.
func (c *Coordinator) Restore(rec Record) {
	c.disabled = true
	defer func() { c.disabled = false }()

	c.flags.RestoreAll(rec.StoryFlags)
	c.ach.Restore(rec.UnlockedAchievementIDs, rec.PerfectItemCounter)
	c.dlg.History().Restore(rec.DialogueHistory)
	c.preNode = rec.PreMinigameNodeID
}

// Package game wires the flag store, achievements, dialogue, minigame
// sessions and saving into one playable game driven by Tick.
package game

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"dumplingtale/internal/achievement"
	"dumplingtale/internal/craft"
	"dumplingtale/internal/dialogue"
	"dumplingtale/internal/flags"
	"dumplingtale/internal/run"
	"dumplingtale/internal/save"
	"dumplingtale/internal/story"
)

// Audio plays cues by logical name.
type Audio interface {
	Play(cue string)
}

type Options struct {
	Content         *story.Content
	Catalog         *achievement.Catalog
	Slot            save.Slot
	Presenter       dialogue.Presenter
	Audio           Audio
	Logger          *log.Logger
	CharDelay       time.Duration
	HistoryLimit    int
	MasterThreshold int
	Now             func() time.Time
}

type Mode string

const (
	ModeMenu     Mode = "menu"
	ModeDialogue Mode = "dialogue"
	ModeMinigame Mode = "minigame"
)

// Game is one player's game. It is not safe for concurrent use; the host
// owns it from a single goroutine.
type Game struct {
	Content      *story.Content
	Flags        *flags.Store
	Achievements *achievement.Engine
	Dialogue     *dialogue.Engine
	Saves        *save.Coordinator

	log     *log.Logger
	audio   Audio
	session *run.Session
	request dialogue.MinigameRequest
	mode    Mode
	last    *run.Summary
	ev      events
}

func New(opts Options) (*Game, error) {
	if opts.Content == nil {
		return nil, fmt.Errorf("game: content is required")
	}
	if opts.Slot == nil {
		return nil, fmt.Errorf("game: save slot is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	catalog := achievement.DefaultCatalog()
	if opts.Catalog != nil {
		catalog = *opts.Catalog
	}

	g := &Game{Content: opts.Content, log: logger, audio: opts.Audio, mode: ModeMenu}
	g.Achievements = achievement.NewEngine(catalog, achievement.Options{
		Threshold: opts.MasterThreshold,
		Logger:    logger,
	})
	g.Flags = flags.NewStore(g.Achievements)
	var dlgAudio dialogue.Audio
	if opts.Audio != nil {
		dlgAudio = opts.Audio
	}
	g.Dialogue = dialogue.NewEngine(opts.Content, g.Flags, dialogue.Options{
		Presenter:    opts.Presenter,
		Audio:        dlgAudio,
		Logger:       logger,
		CharDelay:    opts.CharDelay,
		HistoryLimit: opts.HistoryLimit,
		Now:          opts.Now,
	})
	g.Saves = save.NewCoordinator(opts.Slot, g.Flags, g.Achievements, g.Dialogue, save.Options{
		Logger: logger,
		Now:    opts.Now,
	})
	g.Achievements.SetSaver(g.Saves)
	g.Dialogue.SetSaver(g.Saves)

	g.Flags.OnChange(func(name string, value bool) {
		for _, fn := range g.ev.flagChanged {
			fn(name, value)
		}
	})
	g.Achievements.OnUnlocked(func(a achievement.Achievement) {
		for _, fn := range g.ev.achievementUnlocked {
			fn(a)
		}
	})
	g.Dialogue.OnMinigameRequested(g.startSession)
	return g, nil
}

func (g *Game) Mode() Mode { return g.mode }

// Session returns the running minigame session, if any.
func (g *Game) Session() (*run.Session, bool) {
	return g.session, g.session != nil
}

// LastSummary is the result of the most recent finished session.
func (g *Game) LastSummary() (run.Summary, bool) {
	if g.last == nil {
		return run.Summary{}, false
	}
	return *g.last, true
}

// NewGame clears story flags, history and the save slot, then starts the
// first chapter. Achievements carry over.
func (g *Game) NewGame(ctx context.Context) error {
	first, ok := g.Content.First()
	if !ok {
		return fmt.Errorf("game: no chapters")
	}
	g.dropSession()
	if err := g.Saves.Delete(ctx); err != nil {
		g.log.Printf("game: delete save: %v", err)
	}
	g.Flags.Clear()
	g.Dialogue.Reset()
	g.Saves.SetPreMinigameNode(0)
	g.last = nil
	g.mode = ModeDialogue
	return g.Dialogue.Start(first.Name)
}

// StartChapter jumps to a chapter by name without touching saved state.
func (g *Game) StartChapter(name string) error {
	g.dropSession()
	g.mode = ModeDialogue
	return g.Dialogue.Start(name)
}

// HasSave reports whether a readable save exists.
func (g *Game) HasSave(ctx context.Context) bool {
	return g.Saves.HasSave(ctx)
}

// ContinueGame restores the saved game. It reports false when there is no
// usable save, leaving the game at the menu. A save whose node no longer
// resolves is deleted.
func (g *Game) ContinueGame(ctx context.Context) bool {
	rec, ok := g.Saves.Load(ctx)
	if !ok {
		return false
	}
	g.dropSession()
	g.Dialogue.Reset()
	g.Saves.Restore(rec)
	if err := g.Dialogue.Resume(rec.CurrentNodeID); err != nil {
		g.log.Printf("game: saved node %d no longer resolves: %v", rec.CurrentNodeID, err)
		if err := g.Saves.Delete(ctx); err != nil {
			g.log.Printf("game: delete unusable save: %v", err)
		}
		g.Flags.Clear()
		g.Dialogue.Reset()
		g.mode = ModeMenu
		return false
	}
	if g.session == nil {
		g.mode = ModeDialogue
	}
	return true
}

// Tick advances the dialogue reveal and the running session by dt.
func (g *Game) Tick(dt time.Duration) {
	g.Dialogue.Tick(dt)
	if g.session != nil {
		g.session.Tick(dt)
	}
}

// Advance is the generic "next" input: it completes a line being revealed,
// otherwise continues past it.
func (g *Game) Advance() bool {
	if g.Dialogue.Revealing() {
		g.Dialogue.Skip()
		return true
	}
	return g.Dialogue.Continue()
}

func (g *Game) SkipText() { g.Dialogue.Skip() }

func (g *Game) Choose(index int) bool { return g.Dialogue.SelectChoice(index) }

func (g *Game) PointerDown(t craft.Target) {
	if g.session != nil {
		g.session.PointerDown(t)
	}
}

func (g *Game) PointerHeld(t craft.Target, dt time.Duration) {
	if g.session != nil {
		g.session.PointerHeld(t, dt)
	}
}

func (g *Game) PointerUp() {
	if g.session != nil {
		g.session.PointerUp()
	}
}

// ForceItem grades the item in progress. Debug and skip paths only.
func (g *Game) ForceItem() {
	if g.session != nil {
		g.session.ForceItem()
	}
}

// ExitMinigame abandons the running session and saves at the node that
// started it. The item in progress is discarded. It reports whether a
// session was running.
func (g *Game) ExitMinigame(ctx context.Context) bool {
	s := g.session
	if s == nil {
		return false
	}
	s.Abort()
	pre := g.Saves.PreMinigameNode()
	if err := g.Saves.SaveAtNode(ctx, pre); err != nil {
		g.log.Printf("game: save before leaving minigame: %v", err)
	}
	g.Dialogue.Stop()
	g.mode = ModeMenu
	return true
}

func (g *Game) startSession(req dialogue.MinigameRequest) {
	for _, fn := range g.ev.minigameRequested {
		fn(req)
	}
	g.dropSession()
	g.request = req
	g.Saves.SetPreMinigameNode(req.NodeID)

	var audio craft.Audio
	if g.audio != nil {
		audio = g.audio
	}
	s := run.NewSession(req.Spec, run.Options{
		Flags:        g.Flags,
		Achievements: g.Achievements,
		Hooks:        g.Dialogue,
		Audio:        audio,
		Logger:       g.log,
	})
	s.OnGraded(func(r craft.Result, st run.Stats) {
		for _, fn := range g.ev.itemGraded {
			fn(r, st)
		}
	})
	s.OnEnded(func(sum run.Summary) { g.finishSession(s, sum) })
	s.OnAborted(func(st run.Stats) {
		if g.session == s {
			g.session = nil
		}
		for _, fn := range g.ev.sessionAborted {
			fn(st)
		}
	})
	g.session = s
	g.mode = ModeMinigame
	g.log.Printf("game: minigame at node %d in %q", req.NodeID, req.Chapter)
	for _, fn := range g.ev.sessionStarted {
		fn(s)
	}
	s.Begin()
}

// finishSession runs after the end flags are written. It hands control back
// to the dialogue at the node the outcome routes to.
func (g *Game) finishSession(s *run.Session, sum run.Summary) {
	if g.session != s {
		return
	}
	g.session = nil
	g.last = &sum
	g.mode = ModeDialogue
	for _, fn := range g.ev.sessionEnded {
		fn(sum)
	}

	next, ok := g.returnNode(sum.Outcome)
	if !ok {
		g.log.Printf("game: minigame at node %d has no return node", g.request.NodeID)
		g.Dialogue.Stop()
		return
	}
	if err := g.Dialogue.Show(next); err != nil {
		g.Dialogue.Stop()
		return
	}
	g.Saves.RequestSave("minigame finished")
}

func (g *Game) returnNode(o story.Outcome) (int, bool) {
	if id, ok := g.request.Spec.ReturnNode(o); ok {
		return id, true
	}
	n, _, err := g.Content.Node(g.request.NodeID)
	if err != nil || n.Next == nil {
		return 0, false
	}
	return *n.Next, true
}

func (g *Game) dropSession() {
	if g.session != nil {
		s := g.session
		g.session = nil
		s.Abort()
	}
}

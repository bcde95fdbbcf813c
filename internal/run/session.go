package run

import (
	"fmt"
	"io"
	"log"
	"time"

	"dumplingtale/internal/craft"
	"dumplingtale/internal/story"
)

type Flags interface {
	Set(name string, value bool)
}

type Achievements interface {
	IncrementPerfectCounter()
}

// HookPlayer shows an in-session line and calls done once it closes.
type HookPlayer interface {
	PlayHook(h story.Hook, done func())
}

type Options struct {
	Flags        Flags
	Achievements Achievements
	Hooks        HookPlayer
	Audio        craft.Audio
	Logger       *log.Logger
}

type State int

const (
	Ready State = iota
	Running
	Ending
	Ended
	Aborted
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Ending:
		return "ending"
	case Ended:
		return "ended"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Summary is delivered once a session ends normally.
type Summary struct {
	Outcome story.Outcome `json:"outcome"`
	Stats   Stats         `json:"stats"`
	Flags   []string      `json:"flags"`
}

// Session owns the stats and the craft machine for one minigame. It is
// driven by Tick and the pointer methods from a single goroutine.
type Session struct {
	spec    story.MinigameSpec
	opts    Options
	log     *log.Logger
	machine *craft.Machine

	state   State
	stats   Stats
	special int

	hookOpen bool
	frozen   bool
	played   map[string]bool

	graded  []func(craft.Result, Stats)
	ended   []func(Summary)
	aborted []func(Stats)
}

func NewSession(spec story.MinigameSpec, opts Options) *Session {
	s := &Session{
		spec:   spec,
		opts:   opts,
		log:    opts.Logger,
		played: map[string]bool{},
	}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}
	s.machine = craft.NewMachine(craft.Preset(spec.Difficulty), craft.Options{Audio: opts.Audio, Logger: s.log})
	s.machine.OnCompleted(s.onItem)

	if spec.IsTimed() {
		s.stats.Mode = Timed
		s.stats.Remaining = time.Duration(spec.Limit() * float64(time.Second))
	} else {
		s.stats.Mode = TargetCount
		s.stats.Target = spec.Target
	}
	s.special = s.resolveSpecial()
	return s
}

func (s *Session) resolveSpecial() int {
	sp := s.spec.Special
	if sp == nil {
		return 0
	}
	switch {
	case sp.AppearOn == story.LastItem && s.stats.Mode == TargetCount:
		return s.spec.Target
	case sp.AppearOn == story.LastItem:
		s.log.Printf("run: special item %q set to last item in a timed session, ignored", sp.Type)
		return 0
	case sp.AppearOn < 1 || (s.stats.Mode == TargetCount && sp.AppearOn > s.spec.Target):
		s.log.Printf("run: special item %q index %d out of range, ignored", sp.Type, sp.AppearOn)
		return 0
	default:
		return sp.AppearOn
	}
}

func (s *Session) OnGraded(fn func(craft.Result, Stats)) {
	if fn != nil {
		s.graded = append(s.graded, fn)
	}
}

func (s *Session) OnEnded(fn func(Summary)) {
	if fn != nil {
		s.ended = append(s.ended, fn)
	}
}

func (s *Session) OnAborted(fn func(Stats)) {
	if fn != nil {
		s.aborted = append(s.aborted, fn)
	}
}

func (s *Session) Spec() story.MinigameSpec { return s.spec }

func (s *Session) State() State { return s.state }

func (s *Session) Stats() Stats { return s.stats }

func (s *Session) Machine() *craft.Machine { return s.machine }

// SpecialIndex is the item number that takes the token path, or 0.
func (s *Session) SpecialIndex() int { return s.special }

// Paused reports whether a hook line holds the session.
func (s *Session) Paused() bool { return s.hookOpen }

// Begin plays the game_start hook, then arms the first item.
func (s *Session) Begin() {
	if s.state != Ready {
		return
	}
	s.state = Running
	s.log.Printf("run: session started (%s, target=%d, limit=%s)", s.stats.Mode, s.stats.Target, s.stats.Remaining)
	s.withHook(story.OnGameStart, 0, s.nextItem)
}

// Tick advances the clock. The clock stops while a pausing hook is open
// and once the session is no longer running.
func (s *Session) Tick(dt time.Duration) {
	if s.state != Running || s.frozen || dt <= 0 {
		return
	}
	s.stats.Elapsed += dt
	if s.stats.Mode != Timed {
		return
	}
	s.stats.Remaining -= dt
	if s.stats.Remaining <= 0 {
		s.stats.Remaining = 0
		s.machine.Halt()
		s.end()
	}
}

func (s *Session) accepting() bool {
	return s.state == Running && !s.hookOpen
}

func (s *Session) PointerDown(t craft.Target) {
	if s.accepting() {
		s.machine.PointerDown(t)
	}
}

func (s *Session) PointerHeld(t craft.Target, dt time.Duration) {
	if s.accepting() {
		s.machine.PointerHeld(t, dt)
	}
}

func (s *Session) PointerUp() {
	if s.accepting() {
		s.machine.PointerUp()
	}
}

// Update feeds one polled input frame to the machine.
func (s *Session) Update(dt time.Duration, in craft.Input, hit craft.HitTester) {
	if s.accepting() {
		s.machine.Update(dt, in, hit)
	}
}

// ForceItem grades the item in progress from its partial state.
func (s *Session) ForceItem() {
	if s.accepting() {
		s.machine.ForceComplete()
	}
}

// Abort leaves the session without grading; the item in progress is lost.
func (s *Session) Abort() {
	if s.state == Ended || s.state == Aborted {
		return
	}
	s.machine.Halt()
	s.state = Aborted
	s.hookOpen, s.frozen = false, false
	s.log.Printf("run: session aborted after %d items", s.stats.Total())
	for _, fn := range s.aborted {
		fn(s.stats)
	}
}

func (s *Session) nextItem() {
	if s.state != Running {
		return
	}
	n := s.stats.Total() + 1
	s.machine.StartItem(n, n == s.special)
}

func (s *Session) onItem(r craft.Result) {
	s.stats.record(r.Grade)
	if r.Grade == craft.Perfect && s.opts.Achievements != nil {
		s.opts.Achievements.IncrementPerfectCounter()
	}
	if r.Special {
		s.setFlag(FlagSpecialItem)
	}
	for _, fn := range s.graded {
		fn(r, s.stats)
	}
	if s.state != Running {
		return
	}

	after := s.nextItem
	if s.stats.Mode == TargetCount && s.stats.Total() >= s.stats.Target {
		after = s.end
	}
	count := s.stats.Total()
	if r.Grade.Failed() && s.withHook(story.OnItemFailed, count, after) {
		return
	}
	s.withHook(story.OnItemCompleted, count, after)
}

func (s *Session) end() {
	if s.state != Running {
		return
	}
	s.state = Ending
	flags := EndFlags(s.stats)
	for _, f := range flags {
		s.setFlag(f)
	}
	outcome := Classify(s.stats)
	s.log.Printf("run: session ended %s: %d/%d perfect, score %d", outcome, s.stats.Perfect, s.stats.Total(), s.stats.Score)
	sum := Summary{Outcome: outcome, Stats: s.stats, Flags: flags}
	s.withHook(story.OnAllCompleted, s.stats.Total(), func() {
		if s.state != Ending {
			return
		}
		s.state = Ended
		for _, fn := range s.ended {
			fn(sum)
		}
	})
}

// withHook plays the first matching hook and runs next when it closes, or
// runs next at once. It reports whether a hook was played.
func (s *Session) withHook(trigger story.HookTrigger, count int, next func()) bool {
	h, ok := s.findHook(trigger, count)
	if !ok || s.opts.Hooks == nil {
		next()
		return false
	}
	s.hookOpen = true
	s.frozen = !h.NoPause
	closed := false
	s.opts.Hooks.PlayHook(h, func() {
		if closed {
			return
		}
		closed = true
		s.hookOpen, s.frozen = false, false
		next()
	})
	return true
}

func (s *Session) findHook(trigger story.HookTrigger, count int) (story.Hook, bool) {
	for _, h := range s.spec.Hooks {
		if h.Trigger != trigger {
			continue
		}
		if trigger == story.OnItemCompleted && h.AtCount != story.AnyCount && h.AtCount != count {
			continue
		}
		if h.PlayOnce {
			key := fmt.Sprintf("%s_%d", trigger, count)
			if s.played[key] {
				continue
			}
			s.played[key] = true
		}
		return h, true
	}
	return story.Hook{}, false
}

func (s *Session) setFlag(name string) {
	if s.opts.Flags != nil {
		s.opts.Flags.Set(name, true)
	}
}

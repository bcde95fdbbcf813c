package achievement

import (
	"io"
	"log"
	"sort"
	"sync"
)

// DefaultMasterThreshold is the number of perfect items that unlocks MasterCondition.
const DefaultMasterThreshold = 10

// SaveRequester persists the game without waiting for the result.
type SaveRequester interface {
	RequestSave(reason string)
}

type Options struct {
	Threshold int
	Saver     SaveRequester
	Logger    *log.Logger
}

// Engine tracks which catalog entries are unlocked. The catalog passed to
// NewEngine is copied and never modified.
type Engine struct {
	mu        sync.RWMutex
	list      []Achievement
	unlocked  map[int]bool
	perfect   int
	threshold int
	saver     SaveRequester
	log       *log.Logger
	listeners []func(Achievement)
}

func NewEngine(c Catalog, opts Options) *Engine {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultMasterThreshold
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	list := make([]Achievement, len(c.Achievements))
	copy(list, c.Achievements)
	for i := range list {
		list[i].Unlocked = false
	}
	return &Engine{
		list:      list,
		unlocked:  map[int]bool{},
		threshold: opts.Threshold,
		saver:     opts.Saver,
		log:       opts.Logger,
	}
}

func (e *Engine) SetSaver(s SaveRequester) {
	e.mu.Lock()
	e.saver = s
	e.mu.Unlock()
}

// OnUnlocked registers an observer for new unlocks.
func (e *Engine) OnUnlocked(fn func(Achievement)) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// TryUnlock unlocks the achievement bound to token. It reports whether a new
// unlock happened.
func (e *Engine) TryUnlock(token string) bool {
	if token == "" {
		return false
	}
	return e.unlockWhere(func(a Achievement) bool { return a.Condition == token })
}

func (e *Engine) UnlockByID(id int) bool {
	return e.unlockWhere(func(a Achievement) bool { return a.ID == id })
}

func (e *Engine) unlockWhere(match func(Achievement) bool) bool {
	e.mu.Lock()
	idx := -1
	for i := range e.list {
		if match(e.list[i]) {
			idx = i
			break
		}
	}
	if idx < 0 || e.list[idx].Unlocked {
		e.mu.Unlock()
		return false
	}
	e.list[idx].Unlocked = true
	e.unlocked[e.list[idx].ID] = true
	a := e.list[idx]
	listeners := e.listeners
	saver := e.saver
	e.mu.Unlock()

	e.log.Printf("achievement: unlocked %d %q", a.ID, a.Name)
	for _, fn := range listeners {
		fn(a)
	}
	if saver != nil {
		saver.RequestSave("achievement")
	}
	return true
}

// IncrementPerfectCounter adds one perfect item and unlocks MasterCondition
// once the threshold is reached.
func (e *Engine) IncrementPerfectCounter() {
	e.mu.Lock()
	e.perfect++
	reached := e.perfect >= e.threshold
	e.mu.Unlock()
	if reached {
		e.TryUnlock(MasterCondition)
	}
}

func (e *Engine) PerfectCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.perfect
}

func (e *Engine) IsUnlocked(id int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.unlocked[id]
}

func (e *Engine) UnlockedCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.unlocked)
}

// UnlockedIDs returns the unlocked ids in ascending order.
func (e *Engine) UnlockedIDs() []int {
	e.mu.RLock()
	ids := make([]int, 0, len(e.unlocked))
	for id := range e.unlocked {
		ids = append(ids, id)
	}
	e.mu.RUnlock()
	sort.Ints(ids)
	return ids
}

// All returns a copy of the working list with unlock state.
func (e *Engine) All() []Achievement {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Achievement, len(e.list))
	copy(out, e.list)
	return out
}

// Restore replaces the unlocked set and counter from a save. Unknown ids are
// logged and skipped. No events fire and no save is requested.
func (e *Engine) Restore(ids []int, perfect int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unlocked = map[int]bool{}
	for i := range e.list {
		e.list[i].Unlocked = false
	}
	for _, id := range ids {
		found := false
		for i := range e.list {
			if e.list[i].ID == id {
				e.list[i].Unlocked = true
				found = true
				break
			}
		}
		if !found {
			e.log.Printf("achievement: restore skipped unknown id %d", id)
			continue
		}
		e.unlocked[id] = true
	}
	if perfect < 0 {
		perfect = 0
	}
	e.perfect = perfect
}

// Reset wipes the unlocked set and the perfect counter. Debug only.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.unlocked = map[int]bool{}
	for i := range e.list {
		e.list[i].Unlocked = false
	}
	e.perfect = 0
	saver := e.saver
	e.mu.Unlock()

	e.log.Printf("achievement: reset")
	if saver != nil {
		saver.RequestSave("achievement reset")
	}
}

// Package dialogue walks the story node graph: text reveal, choice
// filtering against story flags, fallback continuation, chapter switching and
// the short in-session lines shown during a minigame.
package dialogue

import (
	"fmt"
	"io"
	"log"
	"time"

	"dumplingtale/internal/story"
)

// DefaultCharDelay is the time one character takes to reveal.
const DefaultCharDelay = 50 * time.Millisecond

type Phase int

const (
	Idle Phase = iota
	Revealing
	AwaitingChoice
	AwaitingContinue
	MinigamePending
	Ended
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Revealing:
		return "revealing"
	case AwaitingChoice:
		return "awaiting_choice"
	case AwaitingContinue:
		return "awaiting_continue"
	case MinigamePending:
		return "minigame_pending"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type Options struct {
	Presenter    Presenter
	Audio        Audio
	Saver        Saver
	Logger       *log.Logger
	CharDelay    time.Duration
	HistoryLimit int
	Now          func() time.Time
}

// Engine is single-threaded; the host calls it from one loop.
type Engine struct {
	content *story.Content
	flags   Flags
	view    Presenter
	audio   Audio
	saver   Saver
	log     *log.Logger
	now     func() time.Time
	delay   time.Duration
	history *History

	chapter   *story.Chapter
	node      *story.Node
	phase     Phase
	text      reveal
	presented []presentedChoice
	dedupe    bool

	hook *hookState

	minigameListeners []func(MinigameRequest)
}

type presentedChoice struct {
	view   ChoiceView
	choice story.Choice
}

func NewEngine(content *story.Content, flags Flags, opts Options) *Engine {
	e := &Engine{
		content: content,
		flags:   flags,
		view:    opts.Presenter,
		audio:   opts.Audio,
		saver:   opts.Saver,
		log:     opts.Logger,
		now:     opts.Now,
		delay:   opts.CharDelay,
		history: NewHistory(opts.HistoryLimit),
	}
	if e.view == nil {
		e.view = nopPresenter{}
	}
	if e.audio == nil {
		e.audio = nopAudio{}
	}
	if e.saver == nil {
		e.saver = nopSaver{}
	}
	if e.log == nil {
		e.log = log.New(io.Discard, "", 0)
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.delay <= 0 {
		e.delay = DefaultCharDelay
	}
	return e
}

// OnMinigameRequested registers an observer for minigame nodes.
func (e *Engine) OnMinigameRequested(fn func(MinigameRequest)) {
	if fn != nil {
		e.minigameListeners = append(e.minigameListeners, fn)
	}
}

func (e *Engine) SetPresenter(p Presenter) {
	if p == nil {
		p = nopPresenter{}
	}
	e.view = p
}

func (e *Engine) SetAudio(a Audio) {
	if a == nil {
		a = nopAudio{}
	}
	e.audio = a
}

func (e *Engine) SetSaver(s Saver) {
	if s == nil {
		s = nopSaver{}
	}
	e.saver = s
}

func (e *Engine) Phase() Phase { return e.phase }

func (e *Engine) History() *History { return e.history }

// InHook reports whether an in-session line is open.
func (e *Engine) InHook() bool { return e.hook != nil }

// Revealing reports whether a line, main or hook, is still being revealed.
func (e *Engine) Revealing() bool {
	if e.hook != nil {
		return e.hook.phase == Revealing
	}
	return e.phase == Revealing
}

// CurrentNodeID returns the node on screen, or 0 before the first Show.
func (e *Engine) CurrentNodeID() int {
	if e.node == nil {
		return 0
	}
	return e.node.ID
}

func (e *Engine) CurrentNode() (*story.Node, bool) {
	return e.node, e.node != nil
}

func (e *Engine) CurrentChapter() (*story.Chapter, bool) {
	return e.chapter, e.chapter != nil
}

// PresentedChoices returns the choices currently on screen.
func (e *Engine) PresentedChoices() []ChoiceView {
	out := make([]ChoiceView, len(e.presented))
	for i, p := range e.presented {
		out[i] = p.view
	}
	return out
}

// Start shows the entry node of the named chapter.
func (e *Engine) Start(chapterName string) error {
	ch, err := e.content.ChapterByName(chapterName)
	if err != nil {
		return err
	}
	e.chapter = ch
	return e.Show(ch.EntryID())
}

// Resume shows id after a load. The line is not logged again when it is
// already the newest history entry.
func (e *Engine) Resume(id int) error {
	if last, ok := e.history.Last(); ok && last.NodeID == id {
		e.dedupe = true
	}
	err := e.Show(id)
	if err != nil {
		e.dedupe = false
	}
	return err
}

// Show makes id the current node and starts revealing its text. An id that
// does not resolve is a content error; the current node is left unchanged.
func (e *Engine) Show(id int) error {
	n, ch, err := e.resolve(id)
	if err != nil {
		e.log.Printf("dialogue: %v", err)
		return err
	}
	if ch != e.chapter {
		if e.chapter != nil {
			e.log.Printf("dialogue: chapter %q -> %q at node %d", e.chapter.Name, ch.Name, id)
		}
		e.chapter = ch
	}
	e.node = n
	e.hook = nil
	e.presented = nil
	for _, f := range n.Sets {
		e.flags.Set(f, true)
	}

	e.view.ShowSpeaker(n.Speaker, n.Speaker == "")
	e.view.ShowImage(SlotHands, n.Hands)
	if n.Background != "" {
		e.view.ShowImage(SlotBackground, n.Background)
	}
	e.view.HideChoices()

	e.phase = Revealing
	e.text.start(n.Text)
	e.view.ShowText(e.text.visible(), false)
	if n.Autosave {
		e.saver.RequestSave(fmt.Sprintf("autosave node %d", n.ID))
	}
	if e.text.done(e.delay) {
		e.finishReveal()
	}
	return nil
}

func (e *Engine) resolve(id int) (*story.Node, *story.Chapter, error) {
	if e.chapter != nil {
		if n, ok := e.chapter.Node(id); ok {
			return n, e.chapter, nil
		}
	}
	return e.content.Node(id)
}

// Tick advances the text reveal by dt.
func (e *Engine) Tick(dt time.Duration) {
	if dt <= 0 {
		return
	}
	if e.hook != nil {
		if e.hook.phase == Revealing {
			before := e.hook.text.shown
			e.hook.text.advance(dt, e.delay)
			if e.hook.text.done(e.delay) {
				e.finishHookReveal()
			} else if e.hook.text.shown != before {
				e.view.ShowText(e.hook.text.visible(), false)
			}
		}
		return
	}
	if e.phase != Revealing {
		return
	}
	before := e.text.shown
	e.text.advance(dt, e.delay)
	if e.text.done(e.delay) {
		e.finishReveal()
		return
	}
	if e.text.shown != before {
		e.view.ShowText(e.text.visible(), false)
	}
}

// Skip completes the text being revealed.
func (e *Engine) Skip() {
	if e.hook != nil {
		if e.hook.phase == Revealing {
			e.finishHookReveal()
		}
		return
	}
	if e.phase == Revealing {
		e.finishReveal()
	}
}

func (e *Engine) finishReveal() {
	e.text.complete()
	e.view.ShowText(e.text.visible(), true)
	n := e.node
	if e.dedupe {
		e.dedupe = false
	} else {
		e.history.Add(Entry{NodeID: n.ID, Speaker: n.Speaker, Text: n.Text, At: e.now()})
	}

	switch {
	case n.Minigame != nil:
		e.phase = MinigamePending
		req := MinigameRequest{NodeID: n.ID, Chapter: e.chapter.Name, Spec: *n.Minigame}
		for _, fn := range e.minigameListeners {
			fn(req)
		}
	case e.presentChoices():
		e.phase = AwaitingChoice
	case n.Next != nil:
		e.phase = AwaitingContinue
	default:
		e.phase = Ended
	}
}

// presentChoices filters the current node's choices by their required flag
// and shows the eligible ones.
func (e *Engine) presentChoices() bool {
	e.presented = e.presented[:0]
	for _, c := range e.node.Choices {
		if c.RequiredFlag != "" && !e.flags.Get(c.RequiredFlag) {
			continue
		}
		e.presented = append(e.presented, presentedChoice{
			view:   ChoiceView{Index: len(e.presented), Text: c.Text},
			choice: c,
		})
	}
	if len(e.presented) == 0 {
		return false
	}
	e.view.ShowChoices(e.PresentedChoices())
	return true
}

// SelectChoice follows the presented choice at index. The required flag is
// checked again; a choice that is no longer eligible is ignored and the list
// is refreshed.
func (e *Engine) SelectChoice(index int) bool {
	if e.hook != nil {
		return e.selectHookChoice(index)
	}
	if e.phase != AwaitingChoice || index < 0 || index >= len(e.presented) {
		return false
	}
	c := e.presented[index].choice
	if c.RequiredFlag != "" && !e.flags.Get(c.RequiredFlag) {
		e.log.Printf("dialogue: choice %d at node %d no longer eligible", index, e.node.ID)
		if !e.presentChoices() {
			e.view.HideChoices()
			e.settleWithoutChoices()
		}
		return false
	}
	e.audio.Play(CueButtonClick)
	if err := e.Show(c.Target); err != nil {
		return false
	}
	return true
}

func (e *Engine) settleWithoutChoices() {
	if e.node.Next != nil {
		e.phase = AwaitingContinue
	} else {
		e.phase = Ended
	}
}

// Continue follows the fallback id when the engine waits for it. Inside a
// hook line it closes a line that has no choices.
func (e *Engine) Continue() bool {
	if e.hook != nil {
		if e.hook.phase == AwaitingContinue {
			e.closeHook()
			return true
		}
		return false
	}
	if e.phase != AwaitingContinue || e.node == nil || e.node.Next == nil {
		return false
	}
	e.audio.Play(CueButtonClick)
	return e.Show(*e.node.Next) == nil
}

// Stop ends the dialogue on the current node.
func (e *Engine) Stop() {
	e.hook = nil
	e.presented = nil
	e.view.HideChoices()
	e.phase = Ended
}

// Reset forgets the current position and the history. Used by new game.
func (e *Engine) Reset() {
	e.chapter = nil
	e.node = nil
	e.hook = nil
	e.presented = nil
	e.phase = Idle
	e.dedupe = false
	e.history.Clear()
}

// reveal tracks elapsed time for one line. The first rune is visible at once
// and each further rune after one delay; the line completes one delay after
// the last rune.
type reveal struct {
	runes   []rune
	shown   int
	elapsed time.Duration
	full    bool
}

func (r *reveal) start(text string) {
	r.runes = []rune(text)
	r.elapsed = 0
	r.full = len(r.runes) == 0
	r.shown = 0
	if len(r.runes) > 0 {
		r.shown = 1
	}
}

func (r *reveal) advance(dt, delay time.Duration) {
	if r.full {
		return
	}
	r.elapsed += dt
	n := int(r.elapsed/delay) + 1
	if n > len(r.runes) {
		n = len(r.runes)
	}
	r.shown = n
}

func (r *reveal) done(delay time.Duration) bool {
	return r.full || r.elapsed >= time.Duration(len(r.runes))*delay
}

func (r *reveal) complete() {
	r.shown = len(r.runes)
	r.full = true
}

func (r *reveal) visible() string {
	return string(r.runes[:r.shown])
}

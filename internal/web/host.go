package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"dumplingtale/internal/achievement"
	"dumplingtale/internal/craft"
	"dumplingtale/internal/dialogue"
	"dumplingtale/internal/game"
	"dumplingtale/internal/run"
	"dumplingtale/internal/session"
)

// Envelope is one outbound websocket frame.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

var ErrUnknownMessage = errors.New("web: unknown message type")

const clientBuffer = 256

type client struct {
	id   string
	send chan Envelope
}

// screen mirrors what the presenter last showed, for late joiners.
type screen struct {
	Speaker  string                `json:"speaker"`
	Narrator bool                  `json:"narrator"`
	Text     string                `json:"text"`
	Complete bool                  `json:"complete"`
	Choices  []dialogue.ChoiceView `json:"choices,omitempty"`
	Images   map[string]string     `json:"images,omitempty"`
}

// Host owns one Game and serializes every call into it. Output produced
// while handling a call is queued and fanned out to all attached clients
// once the call returns.
type Host struct {
	mu       sync.Mutex
	game     *game.Game
	log      *log.Logger
	interval time.Duration
	clients  *session.MemoryStore[*client]
	pending  []Envelope
	screen   screen
	held     craft.Target
	holding  bool
}

// NewHost builds the game from opts with the host as its presenter and
// audio sink. interval is the tick period used by Run.
func NewHost(opts game.Options, interval time.Duration) (*Host, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if interval <= 0 {
		interval = time.Second / 30
	}
	h := &Host{
		log:      logger,
		interval: interval,
		clients:  session.NewMemoryStore[*client](),
		screen:   screen{Images: map[string]string{}},
	}
	opts.Presenter = (*hostPresenter)(h)
	opts.Audio = (*hostPresenter)(h)
	g, err := game.New(opts)
	if err != nil {
		return nil, err
	}
	h.game = g
	h.observe()
	return h, nil
}

func (h *Host) observe() {
	g := h.game
	g.OnSessionStarted(func(s *run.Session) {
		spec := s.Spec()
		h.queue("minigame:start", map[string]any{
			"target":     spec.Target,
			"timeLimit":  spec.Limit(),
			"difficulty": spec.Difficulty,
			"special":    s.SpecialIndex(),
		})
	})
	g.OnItemGraded(func(r craft.Result, st run.Stats) {
		h.queue("minigame:item", map[string]any{"result": r, "stats": st})
	})
	g.OnSessionEnded(func(sum run.Summary) { h.queue("minigame:end", sum) })
	g.OnSessionAborted(func(st run.Stats) { h.queue("minigame:abort", st) })
	g.OnAchievementUnlocked(func(a achievement.Achievement) { h.queue("achievement", a) })
	g.OnFlagChanged(func(name string, value bool) {
		h.queue("flag", map[string]any{"name": name, "value": value})
	})
}

// queue must be called with h.mu held.
func (h *Host) queue(typ string, payload any) {
	h.pending = append(h.pending, Envelope{Type: typ, Payload: payload})
}

// flush sends queued frames to every client. Called with h.mu held; a
// client whose buffer is full misses the frame.
func (h *Host) flush() {
	if len(h.pending) == 0 {
		return
	}
	out := h.pending
	h.pending = nil
	h.clients.Each(func(id string, c *client) {
		for _, env := range out {
			select {
			case c.send <- env:
			default:
				h.log.Printf("web: client %s is behind, dropped %s", id, env.Type)
			}
		}
	})
}

// View runs fn with exclusive access to the game. fn must not keep g.
func (h *Host) View(fn func(g *game.Game)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.game)
	h.flush()
}

// Attach registers a new client and primes it with the current screen.
func (h *Host) Attach(ctx context.Context) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &client{id: h.clients.NewID(), send: make(chan Envelope, clientBuffer)}
	_ = h.clients.Put(ctx, c.id, c)
	c.send <- Envelope{Type: "hello", Payload: map[string]any{
		"id":      c.id,
		"hasSave": h.game.HasSave(ctx),
	}}
	c.send <- Envelope{Type: "screen", Payload: h.screenCopy()}
	c.send <- Envelope{Type: "status", Payload: h.game.Status()}
	return c
}

func (h *Host) Detach(ctx context.Context, id string) {
	_ = h.clients.Delete(ctx, id)
}

// Clients reports how many clients are attached.
func (h *Host) Clients() int { return h.clients.Len() }

// Run ticks the game until ctx is done.
func (h *Host) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.Step(h.interval)
		}
	}
}

// Step advances the game by dt and publishes what changed.
func (h *Host) Step(dt time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.holding {
		h.game.PointerHeld(h.held, dt)
	}
	h.game.Tick(dt)
	if h.game.Mode() == game.ModeMinigame {
		h.queue("status", h.game.Status())
	}
	h.flush()
}

type choosePayload struct {
	Index int `json:"index"`
}

type targetPayload struct {
	Target string `json:"target"`
}

type chapterPayload struct {
	Name string `json:"name"`
}

// Handle applies one inbound message. Input that does not apply in the
// current state is ignored by the game; only malformed or unknown
// messages are errors.
func (h *Host) Handle(ctx context.Context, msg inboundMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	defer h.flush()
	g := h.game

	switch msg.Type {
	case "new_game":
		if err := g.NewGame(ctx); err != nil {
			return err
		}
	case "continue":
		if !g.ContinueGame(ctx) {
			h.queue("no_save", nil)
		}
	case "start_chapter":
		var p chapterPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("start_chapter payload: %w", err)
		}
		if err := g.StartChapter(p.Name); err != nil {
			return err
		}
	case "advance":
		g.Advance()
	case "skip":
		g.SkipText()
	case "choose":
		var p choosePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("choose payload: %w", err)
		}
		g.Choose(p.Index)
	case "pointer_down":
		t, err := parseTarget(msg.Payload)
		if err != nil {
			return err
		}
		g.PointerDown(t)
		h.held, h.holding = t, true
	case "pointer_move":
		t, err := parseTarget(msg.Payload)
		if err != nil {
			return err
		}
		h.held = t
	case "pointer_up":
		h.holding = false
		g.PointerUp()
	case "exit_minigame":
		h.holding = false
		g.ExitMinigame(ctx)
	case "force_item":
		g.ForceItem()
	case "reset_achievements":
		g.Achievements.Reset()
	case "status":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	h.queue("status", g.Status())
	return nil
}

func parseTarget(raw json.RawMessage) (craft.Target, error) {
	var p targetPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return craft.None, fmt.Errorf("target payload: %w", err)
	}
	return craft.ParseTarget(p.Target), nil
}

func (h *Host) screenCopy() screen {
	s := h.screen
	s.Choices = append([]dialogue.ChoiceView(nil), h.screen.Choices...)
	s.Images = make(map[string]string, len(h.screen.Images))
	for k, v := range h.screen.Images {
		s.Images[k] = v
	}
	return s
}

// hostPresenter is the Host seen as dialogue presenter and audio sink. Its
// methods run inside game calls, so h.mu is already held.
type hostPresenter Host

func (p *hostPresenter) ShowSpeaker(name string, narrator bool) {
	p.screen.Speaker, p.screen.Narrator = name, narrator
	(*Host)(p).queue("speaker", map[string]any{"name": name, "narrator": narrator})
}

func (p *hostPresenter) ShowText(visible string, complete bool) {
	if visible == p.screen.Text && complete == p.screen.Complete {
		return
	}
	p.screen.Text, p.screen.Complete = visible, complete
	(*Host)(p).queue("text", map[string]any{"text": visible, "complete": complete})
}

func (p *hostPresenter) ShowChoices(choices []dialogue.ChoiceView) {
	p.screen.Choices = append([]dialogue.ChoiceView(nil), choices...)
	(*Host)(p).queue("choices", choices)
}

func (p *hostPresenter) HideChoices() {
	p.screen.Choices = nil
	(*Host)(p).queue("choices:hide", nil)
}

func (p *hostPresenter) ShowImage(slot, key string) {
	if p.screen.Images[slot] == key {
		return
	}
	p.screen.Images[slot] = key
	(*Host)(p).queue("image", map[string]string{"slot": slot, "key": key})
}

func (p *hostPresenter) Play(cue string) {
	(*Host)(p).queue("audio", map[string]string{"cue": cue})
}

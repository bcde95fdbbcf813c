// Package story defines the authored chapter and node content, its YAML
// loading and the validation pass run before any play starts.
package story

type Content struct {
	Title    string    `yaml:"title"`
	Chapters []Chapter `yaml:"chapters"`
}

// Chapter is a contiguous id range [Start, End] of the node space. Entry is
// the node shown when the chapter is started; zero means Start.
type Chapter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Start       int    `yaml:"start"`
	End         int    `yaml:"end"`
	Entry       int    `yaml:"entry,omitempty"`
	Nodes       []Node `yaml:"nodes"`
}

type Node struct {
	ID         int           `yaml:"id"`
	Speaker    string        `yaml:"speaker,omitempty"` // empty = narrator
	Text       string        `yaml:"text"`
	Hands      string        `yaml:"hands,omitempty"`
	Background string        `yaml:"background,omitempty"`
	Choices    []Choice      `yaml:"choices,omitempty"`
	Next       *int          `yaml:"next,omitempty"`
	Autosave   bool          `yaml:"autosave,omitempty"`
	Sets       []string      `yaml:"sets,omitempty"` // flags set true when shown
	Minigame   *MinigameSpec `yaml:"minigame,omitempty"`
}

type Choice struct {
	Text         string `yaml:"text"`
	Target       int    `yaml:"target"`
	RequiredFlag string `yaml:"requires,omitempty"`
}

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

// Outcome is the 4-way performance class of a finished minigame session.
type Outcome string

const (
	Excellent Outcome = "excellent"
	Good      Outcome = "good"
	Poor      Outcome = "poor"
	Average   Outcome = "average"
)

// DefaultTimeLimit applies to timed sessions that do not set time_limit.
const DefaultTimeLimit = 60.0

// MinigameSpec configures one crafting session. Target > 0 selects
// target-count mode; Target == 0 selects timed mode.
type MinigameSpec struct {
	Target     int            `yaml:"target"`
	TimeLimit  float64        `yaml:"time_limit,omitempty"`
	Difficulty Difficulty     `yaml:"difficulty,omitempty"`
	Special    *SpecialItem   `yaml:"special,omitempty"`
	Hooks      []Hook         `yaml:"hooks,omitempty"`
	Outcomes   map[string]int `yaml:"outcomes,omitempty"`
	Next       *int           `yaml:"next,omitempty"`
}

// LastItem in SpecialItem.AppearOn places the special item on the final item.
const LastItem = -1

type SpecialItem struct {
	Type     string `yaml:"type"`
	Name     string `yaml:"name,omitempty"`
	AppearOn int    `yaml:"appear_on"`
}

type HookTrigger string

const (
	OnGameStart     HookTrigger = "game_start"
	OnItemCompleted HookTrigger = "item_completed"
	OnItemFailed    HookTrigger = "item_failed"
	OnAllCompleted  HookTrigger = "all_completed"
)

// AnyCount matches every completed-item count.
const AnyCount = -1

// Hook is a short in-session line shown at a moment inside a minigame.
// The session clock stops while it is open unless NoPause is set.
type Hook struct {
	Trigger  HookTrigger  `yaml:"trigger"`
	AtCount  int          `yaml:"at_count,omitempty"`
	Speaker  string       `yaml:"speaker,omitempty"`
	Text     string       `yaml:"text"`
	Choices  []HookChoice `yaml:"choices,omitempty"`
	PlayOnce bool         `yaml:"play_once,omitempty"`
	NoPause  bool         `yaml:"no_pause,omitempty"`
}

// HookChoice sets SetsFlag to true when selected.
type HookChoice struct {
	Text     string `yaml:"text"`
	SetsFlag string `yaml:"sets_flag,omitempty"`
}

// EntryID is the node the chapter starts on.
func (c *Chapter) EntryID() int {
	if c.Entry != 0 {
		return c.Entry
	}
	return c.Start
}

func (c *Chapter) Contains(id int) bool {
	return id >= c.Start && id <= c.End
}

// Node returns the node with the given id in this chapter.
func (c *Chapter) Node(id int) (*Node, bool) {
	for i := range c.Nodes {
		if c.Nodes[i].ID == id {
			return &c.Nodes[i], true
		}
	}
	return nil, false
}

// IsTimed reports whether the session runs against a countdown.
func (m *MinigameSpec) IsTimed() bool {
	return m.Target <= 0
}

func (m *MinigameSpec) Limit() float64 {
	if m.TimeLimit > 0 {
		return m.TimeLimit
	}
	return DefaultTimeLimit
}

// ReturnNode picks the node to show after a session ended with outcome.
// The outcome table wins, then the minigame's own next id. ok is false when
// neither is set.
func (m *MinigameSpec) ReturnNode(o Outcome) (int, bool) {
	if id, ok := m.Outcomes[string(o)]; ok {
		return id, true
	}
	if m.Next != nil {
		return *m.Next, true
	}
	return 0, false
}

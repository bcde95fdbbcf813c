package dialogue

import "dumplingtale/internal/story"

// ChoiceView is one presented choice. Index is what SelectChoice expects.
type ChoiceView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Image slots understood by presenters.
const (
	SlotBackground = "background"
	SlotHands      = "hands"
)

// Presenter displays dialogue. The engine only calls it; a presenter feeds
// player intent back through SelectChoice, Continue and Skip.
type Presenter interface {
	ShowSpeaker(name string, narrator bool)
	ShowText(visible string, complete bool)
	ShowChoices(choices []ChoiceView)
	HideChoices()
	ShowImage(slot, key string)
}

// Audio plays cues by logical name.
type Audio interface {
	Play(cue string)
}

// Cue names used by the dialogue layer.
const (
	CueButtonClick = "buttonClick"
)

// Flags is the part of the flag store the engine reads and, for hook
// choices, writes.
type Flags interface {
	Get(name string) bool
	Set(name string, value bool)
}

// Saver persists the current game without blocking the caller.
type Saver interface {
	RequestSave(reason string)
}

// MinigameRequest is raised once a minigame node finished revealing.
type MinigameRequest struct {
	NodeID  int
	Chapter string
	Spec    story.MinigameSpec
}

type nopPresenter struct{}

func (nopPresenter) ShowSpeaker(string, bool) {}
func (nopPresenter) ShowText(string, bool) {}
func (nopPresenter) ShowChoices([]ChoiceView) {}
func (nopPresenter) HideChoices() {}
func (nopPresenter) ShowImage(string, string) {}

type nopAudio struct{}

func (nopAudio) Play(string) {}

type nopSaver struct{}

func (nopSaver) RequestSave(string) {}

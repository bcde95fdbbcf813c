package game

import (
	"dumplingtale/internal/craft"
	"dumplingtale/internal/dialogue"
	"dumplingtale/internal/run"
)

// Status is a point-in-time view of the game for hosts that poll.
type Status struct {
	Mode         Mode                  `json:"mode"`
	Phase        string                `json:"phase"`
	NodeID       int                   `json:"nodeId"`
	Chapter      string                `json:"chapter,omitempty"`
	InHook       bool                  `json:"inHook"`
	Choices      []dialogue.ChoiceView `json:"choices,omitempty"`
	Minigame     *MinigameStatus       `json:"minigame,omitempty"`
	Unlocked     int                   `json:"unlocked"`
	PerfectCount int                   `json:"perfectCount"`
}

type MinigameStatus struct {
	Stats   run.Stats       `json:"stats"`
	Step    string          `json:"step"`
	Hint    string          `json:"hint"`
	Hands   string          `json:"hands"`
	Item    craft.ItemState `json:"item"`
	Index   int             `json:"index"`
	Special bool            `json:"special"`
	Paused  bool            `json:"paused"`
}

func (g *Game) Status() Status {
	st := Status{
		Mode:         g.mode,
		Phase:        g.Dialogue.Phase().String(),
		NodeID:       g.Dialogue.CurrentNodeID(),
		InHook:       g.Dialogue.InHook(),
		Choices:      g.Dialogue.PresentedChoices(),
		Unlocked:     g.Achievements.UnlockedCount(),
		PerfectCount: g.Achievements.PerfectCount(),
	}
	if ch, ok := g.Dialogue.CurrentChapter(); ok {
		st.Chapter = ch.Name
	}
	if s := g.session; s != nil {
		m := s.Machine()
		st.Minigame = &MinigameStatus{
			Stats:   s.Stats(),
			Step:    m.Step().String(),
			Hint:    m.Step().Hint(),
			Hands:   m.Hands(),
			Item:    m.Item(),
			Index:   m.Index(),
			Special: m.Special(),
			Paused:  s.Paused(),
		}
	}
	return st
}

package game

import (
	"dumplingtale/internal/achievement"
	"dumplingtale/internal/craft"
	"dumplingtale/internal/dialogue"
	"dumplingtale/internal/run"
)

// events holds the observer lists. Delivery is synchronous, in
// registration order, before the triggering call returns.
type events struct {
	minigameRequested   []func(dialogue.MinigameRequest)
	sessionStarted      []func(*run.Session)
	itemGraded          []func(craft.Result, run.Stats)
	sessionEnded        []func(run.Summary)
	sessionAborted      []func(run.Stats)
	achievementUnlocked []func(achievement.Achievement)
	flagChanged         []func(name string, value bool)
}

func (g *Game) OnMinigameRequested(fn func(dialogue.MinigameRequest)) {
	if fn != nil {
		g.ev.minigameRequested = append(g.ev.minigameRequested, fn)
	}
}

func (g *Game) OnSessionStarted(fn func(*run.Session)) {
	if fn != nil {
		g.ev.sessionStarted = append(g.ev.sessionStarted, fn)
	}
}

func (g *Game) OnItemGraded(fn func(craft.Result, run.Stats)) {
	if fn != nil {
		g.ev.itemGraded = append(g.ev.itemGraded, fn)
	}
}

func (g *Game) OnSessionEnded(fn func(run.Summary)) {
	if fn != nil {
		g.ev.sessionEnded = append(g.ev.sessionEnded, fn)
	}
}

func (g *Game) OnSessionAborted(fn func(run.Stats)) {
	if fn != nil {
		g.ev.sessionAborted = append(g.ev.sessionAborted, fn)
	}
}

func (g *Game) OnAchievementUnlocked(fn func(achievement.Achievement)) {
	if fn != nil {
		g.ev.achievementUnlocked = append(g.ev.achievementUnlocked, fn)
	}
}

func (g *Game) OnFlagChanged(fn func(name string, value bool)) {
	if fn != nil {
		g.ev.flagChanged = append(g.ev.flagChanged, fn)
	}
}

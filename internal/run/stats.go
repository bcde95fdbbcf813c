// Package run drives one minigame session: item after item through the craft
// machine, scoring, in-session hook lines and the end-of-session flags.
package run

import (
	"time"

	"dumplingtale/internal/craft"
	"dumplingtale/internal/story"
)

// Per-item awards. Failed grades still earn a little.
const (
	AwardPerfect = 100
	AwardGood    = 50
	AwardFailed  = 10
)

// Flags written when a session ends.
const (
	FlagCompleted      = "dumplingGameCompleted"
	FlagExcellent      = "dumplingExcellent"
	FlagGood           = "dumplingGood"
	FlagPoor           = "dumplingPoor"
	FlagAverage        = "dumplingAverage"
	FlagTargetReached  = "targetReached"
	FlagHighProduction = "highProduction"
	FlagNoMistakes     = "noMistakes"
	FlagSpecialItem    = "coinDumplingCompleted"
)

const (
	highProductionCount = 10
	noMistakesPerfect   = 5
)

type Mode string

const (
	TargetCount Mode = "target"
	Timed       Mode = "timed"
)

type Stats struct {
	Mode      Mode          `json:"mode"`
	Target    int           `json:"target,omitempty"`
	Perfect   int           `json:"perfect"`
	Good      int           `json:"good"`
	TooLittle int           `json:"tooLittle"`
	TooMuch   int           `json:"tooMuch"`
	Score     int           `json:"score"`
	Elapsed   time.Duration `json:"elapsed"`
	Remaining time.Duration `json:"remaining,omitempty"`
}

func (s Stats) Total() int { return s.Perfect + s.Good + s.TooLittle + s.TooMuch }

func (s Stats) Failed() int { return s.TooLittle + s.TooMuch }

// PerfectRate is perfect over total graded, zero when nothing was graded.
func (s Stats) PerfectRate() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Perfect) / float64(s.Total())
}

func (s *Stats) record(g craft.Grade) {
	switch g {
	case craft.Perfect:
		s.Perfect++
		s.Score += AwardPerfect
	case craft.Good:
		s.Good++
		s.Score += AwardGood
	case craft.TooLittle:
		s.TooLittle++
		s.Score += AwardFailed
	case craft.TooMuch:
		s.TooMuch++
		s.Score += AwardFailed
	}
}

// Classify applies the outcome priority: excellent, good, poor, average.
func Classify(s Stats) story.Outcome {
	rate := s.PerfectRate()
	switch {
	case rate >= 0.8:
		return story.Excellent
	case rate >= 0.5:
		return story.Good
	case s.Failed() > s.Perfect+s.Good:
		return story.Poor
	default:
		return story.Average
	}
}

// OutcomeFlag is the story flag for an outcome.
func OutcomeFlag(o story.Outcome) string {
	switch o {
	case story.Excellent:
		return FlagExcellent
	case story.Good:
		return FlagGood
	case story.Poor:
		return FlagPoor
	default:
		return FlagAverage
	}
}

// EndFlags lists every flag a finished session sets, in write order.
func EndFlags(s Stats) []string {
	out := []string{FlagCompleted, OutcomeFlag(Classify(s))}
	if s.Mode == TargetCount && s.Target > 0 && s.Total() >= s.Target {
		out = append(out, FlagTargetReached)
	}
	if s.Mode == Timed && s.Total() >= highProductionCount {
		out = append(out, FlagHighProduction)
	}
	if s.Perfect >= noMistakesPerfect && s.Failed() == 0 {
		out = append(out, FlagNoMistakes)
	}
	return out
}

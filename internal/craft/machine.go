package craft

import (
	"fmt"
	"io"
	"log"
	"time"
)

type Step int

const (
	Waiting Step = iota
	PlaceBase
	PickToken
	PlaceToken
	DipMoisture
	SpreadMoisture
	AddFilling
	Seal
	Halted
)

func (s Step) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case PlaceBase:
		return "place_base"
	case PickToken:
		return "pick_token"
	case PlaceToken:
		return "place_token"
	case DipMoisture:
		return "dip_moisture"
	case SpreadMoisture:
		return "spread_moisture"
	case AddFilling:
		return "add_filling"
	case Seal:
		return "seal"
	case Halted:
		return "halted"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Hint is the instruction shown to the player for the step.
func (s Step) Hint() string {
	switch s {
	case PlaceBase:
		return "Tap the wrapper stack to lay out a wrapper."
	case PickToken:
		return "Pick up the lucky coin."
	case PlaceToken:
		return "Tap the wrapper to tuck the coin in."
	case DipMoisture:
		return "Tap the water bowl to wet your fingertip."
	case SpreadMoisture:
		return "Hold on the wrapper to wet its edge, then let go."
	case AddFilling:
		return "Spoon, then filling bowl, then the wrapper."
	case Seal:
		return "Tap the dumpling to pinch it shut."
	default:
		return ""
	}
}

// Target is a logical hit area on the crafting table.
type Target int

const (
	None Target = iota
	BaseStack
	Token
	WaterBowl
	Item
	Spoon
	FillingBowl
)

var targetNames = map[Target]string{
	None:        "none",
	BaseStack:   "base_stack",
	Token:       "token",
	WaterBowl:   "water_bowl",
	Item:        "item",
	Spoon:       "spoon",
	FillingBowl: "filling_bowl",
}

func (t Target) String() string {
	if s, ok := targetNames[t]; ok {
		return s
	}
	return fmt.Sprintf("target(%d)", int(t))
}

// ParseTarget maps a target name back to its value; unknown names are None.
func ParseTarget(s string) Target {
	for t, name := range targetNames {
		if name == s {
			return t
		}
	}
	return None
}

// Audio cue names raised by the machine.
const (
	CueItemPlace        = "itemPlace"
	CueDumplingComplete = "dumplingComplete"
	CueCoinAppear       = "coin_appear"
	CueCoinClick        = "coin_click"
)

// Hand pose keys, for presenters.
const (
	HandsNormal = "hands_normal"
	HandsWater  = "hands_water"
	HandsSpoon  = "hands_spoon"
	HandsToken  = "hands_coin"
)

// ItemState is the mutable state of the item being crafted.
type ItemState struct {
	HasBase     bool    `json:"hasBase"`
	MoistOnTool bool    `json:"moistOnTool"`
	Coverage    float64 `json:"coverage"`
	HasFilling  bool    `json:"hasFilling"`
	Sealed      bool    `json:"sealed"`
	HasToken    bool    `json:"hasToken"`
	Grade       Grade   `json:"grade,omitempty"`
}

// Result describes one finished item.
type Result struct {
	Index    int     `json:"index"`
	Grade    Grade   `json:"grade"`
	Special  bool    `json:"special"`
	Forced   bool    `json:"forced"`
	Coverage float64 `json:"coverage"`
}

type Audio interface {
	Play(cue string)
}

type Options struct {
	Audio  Audio
	Logger *log.Logger
}

// Machine runs one item at a time. StartItem arms it; the item completes on
// Seal, on the special-token short cut, or through ForceComplete. After a
// completion the machine waits for the next StartItem.
type Machine struct {
	tol   Tolerance
	audio Audio
	log   *log.Logger

	step      Step
	index     int
	special   bool
	item      ItemState
	holding   bool // token in hand
	spoon     bool
	scooped   bool
	spreading bool

	completed []func(Result)
	stepped   []func(Step)
}

func NewMachine(tol Tolerance, opts Options) *Machine {
	if tol.Rate <= 0 {
		tol = DefaultTolerance
	}
	m := &Machine{tol: tol, audio: opts.Audio, log: opts.Logger}
	if m.log == nil {
		m.log = log.New(io.Discard, "", 0)
	}
	return m
}

func (m *Machine) OnCompleted(fn func(Result)) {
	if fn != nil {
		m.completed = append(m.completed, fn)
	}
}

func (m *Machine) OnStepChanged(fn func(Step)) {
	if fn != nil {
		m.stepped = append(m.stepped, fn)
	}
}

func (m *Machine) Step() Step { return m.step }

// Index is the 1-based number of the item in progress.
func (m *Machine) Index() int { return m.index }

func (m *Machine) Special() bool { return m.special }

func (m *Machine) Item() ItemState { return m.item }

func (m *Machine) Tolerance() Tolerance { return m.tol }

// Hands returns the hand pose for the current tool state.
func (m *Machine) Hands() string {
	switch {
	case m.holding:
		return HandsToken
	case m.spoon:
		return HandsSpoon
	case m.item.MoistOnTool:
		return HandsWater
	default:
		return HandsNormal
	}
}

// StartItem resets the item state and waits for the base to be placed.
func (m *Machine) StartItem(index int, special bool) {
	m.index = index
	m.special = special
	m.item = ItemState{}
	m.holding, m.spoon, m.scooped, m.spreading = false, false, false, false
	if special {
		m.play(CueCoinAppear)
	}
	m.setStep(PlaceBase)
}

// Halt stops the machine; in-progress state is discarded.
func (m *Machine) Halt() {
	m.item = ItemState{}
	m.holding, m.spoon, m.scooped, m.spreading = false, false, false, false
	m.setStep(Halted)
}

// Active reports whether an item is in progress.
func (m *Machine) Active() bool {
	return m.step != Waiting && m.step != Halted
}

// PointerDown advances the step when t is the target the step expects.
// Anything else is ignored.
func (m *Machine) PointerDown(t Target) {
	switch m.step {
	case PlaceBase:
		if t != BaseStack {
			return
		}
		m.item.HasBase = true
		m.play(CueItemPlace)
		if m.special {
			m.setStep(PickToken)
			return
		}
		m.setStep(DipMoisture)
	case PickToken:
		if t != Token {
			return
		}
		m.holding = true
		m.play(CueCoinClick)
		m.setStep(PlaceToken)
	case PlaceToken:
		if t != Item {
			return
		}
		m.holding = false
		m.item.HasToken = true
		m.finish(Perfect, false)
	case DipMoisture:
		if t != WaterBowl {
			return
		}
		m.item.MoistOnTool = true
		m.setStep(SpreadMoisture)
	case SpreadMoisture:
		if t == Item {
			m.spreading = true
		}
	case AddFilling:
		switch {
		case !m.spoon && t == Spoon:
			m.spoon = true
		case m.spoon && !m.scooped && t == FillingBowl:
			m.scooped = true
		case m.spoon && m.scooped && t == Item:
			m.spoon, m.scooped = false, false
			m.item.HasFilling = true
			m.play(CueItemPlace)
			m.setStep(Seal)
		}
	case Seal:
		if t != Item {
			return
		}
		m.item.Sealed = true
		m.finish(m.item.Grade, false)
	}
}

// PointerHeld accumulates coverage while the pointer stays on the item
// during spreading.
func (m *Machine) PointerHeld(t Target, dt time.Duration) {
	if m.step != SpreadMoisture || t != Item || dt <= 0 {
		return
	}
	m.spreading = true
	m.item.Coverage += m.tol.Rate * dt.Seconds()
	if m.item.Coverage > 1 {
		m.item.Coverage = 1
	}
	if m.item.Coverage < 0 {
		m.item.Coverage = 0
	}
}

// PointerUp grades a spreading gesture once and moves on to the filling.
func (m *Machine) PointerUp() {
	if m.step != SpreadMoisture || !m.spreading {
		return
	}
	m.spreading = false
	m.item.Grade = GradeCoverage(m.item.Coverage, m.tol)
	m.item.MoistOnTool = false
	m.setStep(AddFilling)
}

// ForceComplete finishes the current item from whatever state it has.
// Coverage that was never spread counts as zero.
func (m *Machine) ForceComplete() {
	if !m.Active() {
		return
	}
	g := m.item.Grade
	if m.item.HasToken {
		g = Perfect
	}
	if g == Ungraded {
		g = GradeCoverage(m.item.Coverage, m.tol)
	}
	m.finish(g, true)
}

func (m *Machine) finish(g Grade, forced bool) {
	m.item.Grade = g
	res := Result{
		Index:    m.index,
		Grade:    g,
		Special:  m.special && m.item.HasToken,
		Forced:   forced,
		Coverage: m.item.Coverage,
	}
	m.log.Printf("craft: item %d graded %s (coverage %.3f, special=%v, forced=%v)",
		res.Index, res.Grade, res.Coverage, res.Special, res.Forced)
	m.item = ItemState{}
	m.holding, m.spoon, m.scooped, m.spreading = false, false, false, false
	m.special = false
	m.setStep(Waiting)
	m.play(CueDumplingComplete)
	for _, fn := range m.completed {
		fn(res)
	}
}

func (m *Machine) setStep(s Step) {
	if m.step == s {
		return
	}
	m.step = s
	for _, fn := range m.stepped {
		fn(s)
	}
}

func (m *Machine) play(cue string) {
	if m.audio != nil {
		m.audio.Play(cue)
	}
}

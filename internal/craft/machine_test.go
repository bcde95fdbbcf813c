package craft

import (
	"testing"
	"time"

	"dumplingtale/internal/story"
)

type cueLog []string

func (c *cueLog) Play(cue string) { *c = append(*c, cue) }

func newMachine(t *testing.T) (*Machine, *[]Result, *cueLog) {
	t.Helper()
	cues := &cueLog{}
	m := NewMachine(DefaultTolerance, Options{Audio: cues})
	var results []Result
	m.OnCompleted(func(r Result) { results = append(results, r) })
	return m, &results, cues
}

// craftOne runs a full normal item, spreading for held.
func craftOne(m *Machine, held time.Duration) {
	m.PointerDown(BaseStack)
	m.PointerDown(WaterBowl)
	m.PointerDown(Item)
	m.PointerHeld(Item, held)
	m.PointerUp()
	m.PointerDown(Spoon)
	m.PointerDown(FillingBowl)
	m.PointerDown(Item)
	m.PointerDown(Item)
}

func TestGradeCoverage_Boundaries(t *testing.T) {
	tests := []struct {
		coverage float64
		want     Grade
	}{
		{0, TooLittle},
		{0.24999, TooLittle},
		{0.25, Perfect},
		{0.4, Perfect},
		{0.5, Perfect},
		{0.50001, TooMuch},
		{1, TooMuch},
	}
	for _, tt := range tests {
		if got := GradeCoverage(tt.coverage, DefaultTolerance); got != tt.want {
			t.Errorf("GradeCoverage(%v) = %s, want %s", tt.coverage, got, tt.want)
		}
	}
}

func TestPreset(t *testing.T) {
	if Preset(story.Normal) != DefaultTolerance || Preset("") != DefaultTolerance {
		t.Error("Expected normal and empty difficulty to use the default tolerance")
	}
	easy, hard := Preset(story.Easy), Preset(story.Hard)
	if easy.Max-easy.Min <= hard.Max-hard.Min {
		t.Errorf("Expected easy window wider than hard: %+v %+v", easy, hard)
	}
	if hard.Rate <= DefaultTolerance.Rate {
		t.Errorf("Expected hard to spread faster, got %+v", hard)
	}
}

func TestMachine_FullSequence(t *testing.T) {
	m, results, cues := newMachine(t)
	m.StartItem(1, false)

	var steps []Step
	m.OnStepChanged(func(s Step) { steps = append(steps, s) })

	craftOne(m, 3*time.Second)

	if len(*results) != 1 {
		t.Fatalf("Expected one result, got %d", len(*results))
	}
	r := (*results)[0]
	if r.Grade != Perfect || r.Index != 1 || r.Special || r.Forced {
		t.Errorf("Unexpected result %+v", r)
	}
	want := []Step{DipMoisture, SpreadMoisture, AddFilling, Seal, Waiting}
	if len(steps) != len(want) {
		t.Fatalf("Expected steps %v, got %v", want, steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("Step %d: expected %s, got %s", i, want[i], steps[i])
		}
	}
	if m.Active() {
		t.Error("Machine should wait for the next StartItem")
	}
	last := (*cues)[len(*cues)-1]
	if last != CueDumplingComplete {
		t.Errorf("Expected completion cue last, got %v", *cues)
	}
}

func TestMachine_WrongTargetsIgnored(t *testing.T) {
	m, results, _ := newMachine(t)
	m.StartItem(1, false)

	m.PointerDown(WaterBowl)
	m.PointerDown(Item)
	m.PointerDown(None)
	if m.Step() != PlaceBase {
		t.Fatalf("Expected to stay on place_base, got %s", m.Step())
	}
	m.PointerDown(BaseStack)
	m.PointerDown(BaseStack)
	if m.Step() != DipMoisture {
		t.Fatalf("Expected dip_moisture, got %s", m.Step())
	}
	m.PointerDown(WaterBowl)
	m.PointerHeld(WaterBowl, time.Second)
	m.PointerUp()
	if m.Step() != SpreadMoisture || m.Item().Coverage != 0 {
		t.Fatalf("Held off the item must not spread or grade, got %s %v", m.Step(), m.Item().Coverage)
	}
	m.PointerDown(Item)
	m.PointerHeld(Item, 3*time.Second)
	m.PointerUp()
	m.PointerDown(FillingBowl)
	m.PointerDown(Item)
	if m.Step() != AddFilling || m.Item().HasFilling {
		t.Fatalf("Filling must start with the spoon, got %s", m.Step())
	}
	m.PointerDown(Spoon)
	m.PointerDown(Item)
	if m.Item().HasFilling {
		t.Fatal("Empty spoon must not add filling")
	}
	m.PointerDown(FillingBowl)
	if m.Hands() != HandsSpoon {
		t.Errorf("Expected spoon hands, got %s", m.Hands())
	}
	m.PointerDown(Item)
	m.PointerDown(Spoon)
	m.PointerDown(Item)
	if len(*results) != 1 {
		t.Errorf("Expected the item to complete, got %d results", len(*results))
	}
}

func TestMachine_SpreadGradesOnceOnRelease(t *testing.T) {
	tests := []struct {
		name string
		held time.Duration
		want Grade
	}{
		{"too little", 2 * time.Second, TooLittle},
		{"perfect", 4 * time.Second, Perfect},
		{"too much", 6 * time.Second, TooMuch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, results, _ := newMachine(t)
			m.StartItem(1, false)
			m.PointerDown(BaseStack)
			m.PointerDown(WaterBowl)
			for i := 0; i < 10; i++ {
				m.PointerHeld(Item, tt.held/10)
			}
			if m.Hands() != HandsWater {
				t.Errorf("Expected wet hands while spreading, got %s", m.Hands())
			}
			m.PointerUp()
			if m.Item().Grade != tt.want {
				t.Fatalf("Expected %s, got %s (coverage %v)", tt.want, m.Item().Grade, m.Item().Coverage)
			}
			m.PointerHeld(Item, 10*time.Second)
			if m.Item().Grade != tt.want {
				t.Error("Grade changed after release")
			}
			m.PointerDown(Spoon)
			m.PointerDown(FillingBowl)
			m.PointerDown(Item)
			m.PointerDown(Item)
			if len(*results) != 1 || (*results)[0].Grade != tt.want {
				t.Errorf("Expected sealed result %s, got %+v", tt.want, *results)
			}
		})
	}
}

func TestMachine_CoverageClamped(t *testing.T) {
	m, _, _ := newMachine(t)
	m.StartItem(1, false)
	m.PointerDown(BaseStack)
	m.PointerDown(WaterBowl)
	m.PointerHeld(Item, time.Minute)
	if m.Item().Coverage != 1 {
		t.Errorf("Expected coverage clamped to 1, got %v", m.Item().Coverage)
	}
}

func TestMachine_SpecialToken(t *testing.T) {
	m, results, cues := newMachine(t)
	m.StartItem(3, true)
	if (*cues)[0] != CueCoinAppear {
		t.Errorf("Expected coin_appear cue, got %v", *cues)
	}

	m.PointerDown(BaseStack)
	if m.Step() != PickToken {
		t.Fatalf("Expected pick_token after base, got %s", m.Step())
	}
	m.PointerDown(WaterBowl)
	m.PointerDown(Item)
	if m.Step() != PickToken {
		t.Fatalf("Expected to wait for the token, got %s", m.Step())
	}
	m.PointerDown(Token)
	if m.Hands() != HandsToken {
		t.Errorf("Expected token in hand, got %s", m.Hands())
	}
	m.PointerDown(Item)

	if len(*results) != 1 {
		t.Fatalf("Expected immediate completion, got %d results", len(*results))
	}
	r := (*results)[0]
	if r.Grade != Perfect || !r.Special || r.Index != 3 || r.Coverage != 0 {
		t.Errorf("Unexpected special result %+v", r)
	}
}

func TestMachine_ForceComplete(t *testing.T) {
	m, results, _ := newMachine(t)
	m.ForceComplete()
	if len(*results) != 0 {
		t.Fatal("ForceComplete without an item must do nothing")
	}

	m.StartItem(1, false)
	m.PointerDown(BaseStack)
	m.ForceComplete()
	if len(*results) != 1 || (*results)[0].Grade != TooLittle || !(*results)[0].Forced {
		t.Fatalf("Expected forced too_little, got %+v", *results)
	}

	m.StartItem(2, false)
	m.PointerDown(BaseStack)
	m.PointerDown(WaterBowl)
	m.PointerHeld(Item, 3*time.Second)
	m.ForceComplete()
	if (*results)[1].Grade != Perfect {
		t.Errorf("Expected forced grade from partial coverage, got %+v", (*results)[1])
	}
}

func TestMachine_Halt(t *testing.T) {
	m, results, _ := newMachine(t)
	m.StartItem(1, false)
	m.PointerDown(BaseStack)
	m.Halt()
	m.PointerDown(WaterBowl)
	m.ForceComplete()
	if m.Step() != Halted || len(*results) != 0 {
		t.Errorf("Halted machine should ignore input, got %s %d", m.Step(), len(*results))
	}
}

type frame struct {
	down, held, up, blocked bool
	pos                     Point
}

func (f frame) Down() bool { return f.down }
func (f frame) Held() bool { return f.held }
func (f frame) Up() bool { return f.up }
func (f frame) Position() Point { return f.pos }
func (f frame) OverBlockingUI() bool { return f.blocked }

func TestUpdate_PolledInput(t *testing.T) {
	m, _, _ := newMachine(t)
	m.StartItem(1, false)
	stack := Point{X: 100, Y: 450}
	bowl := Point{X: 300, Y: 480}
	item := Point{X: 500, Y: 260}

	m.Update(0, frame{down: true, held: true, pos: stack, blocked: true}, DefaultLayout)
	if m.Step() != PlaceBase {
		t.Fatal("Press over blocking UI must be ignored")
	}
	m.Update(0, frame{down: true, held: true, pos: stack}, DefaultLayout)
	m.Update(0, frame{down: true, held: true, pos: bowl}, DefaultLayout)
	if m.Step() != SpreadMoisture {
		t.Fatalf("Expected spread_moisture, got %s", m.Step())
	}
	for i := 0; i < 30; i++ {
		m.Update(100*time.Millisecond, frame{held: true, pos: item}, DefaultLayout)
	}
	m.Update(0, frame{up: true, pos: item}, DefaultLayout)
	if m.Step() != AddFilling || m.Item().Grade != Perfect {
		t.Errorf("Expected perfect spread, got %s %s %v", m.Step(), m.Item().Grade, m.Item().Coverage)
	}
}

func TestLayoutAndTargetNames(t *testing.T) {
	if DefaultLayout.TargetAt(Point{X: -5, Y: -5}) != None {
		t.Error("Expected None off the table")
	}
	for _, tg := range []Target{BaseStack, Token, WaterBowl, Item, Spoon, FillingBowl} {
		if ParseTarget(tg.String()) != tg {
			t.Errorf("ParseTarget(%q) did not round-trip", tg.String())
		}
	}
	if ParseTarget("table") != None {
		t.Error("Unknown target name should parse to None")
	}
}

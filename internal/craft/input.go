package craft

import "time"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Input is a polled pointer source. Down and Up are edge signals for the
// current frame; Held is level.
type Input interface {
	Down() bool
	Held() bool
	Up() bool
	Position() Point
	OverBlockingUI() bool
}

// HitTester maps a pointer position to a table target.
type HitTester interface {
	TargetAt(p Point) Target
}

// Update feeds one frame of polled input into the machine. Presses over
// blocking UI are dropped; releases always pass so a gesture cannot stick.
func (m *Machine) Update(dt time.Duration, in Input, hit HitTester) {
	if in == nil || hit == nil {
		return
	}
	blocked := in.OverBlockingUI()
	if in.Down() && !blocked {
		m.PointerDown(hit.TargetAt(in.Position()))
	}
	if in.Held() && !blocked {
		m.PointerHeld(hit.TargetAt(in.Position()), dt)
	}
	if in.Up() {
		m.PointerUp()
	}
}

// Rect is an axis-aligned hit area.
type Rect struct {
	Target Target
	X, Y   float64
	W, H   float64
}

func (r Rect) contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Layout is a HitTester over rectangles; later rectangles sit on top.
type Layout []Rect

func (l Layout) TargetAt(p Point) Target {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].contains(p) {
			return l[i].Target
		}
	}
	return None
}

// DefaultLayout is the table arrangement used by the web client, in a
// 1000x600 logical space.
var DefaultLayout = Layout{
	{Target: BaseStack, X: 40, Y: 380, W: 160, H: 160},
	{Target: WaterBowl, X: 240, Y: 420, W: 120, H: 120},
	{Target: Spoon, X: 640, Y: 440, W: 100, H: 100},
	{Target: FillingBowl, X: 780, Y: 400, W: 160, H: 140},
	{Target: Item, X: 380, Y: 160, W: 240, H: 200},
	{Target: Token, X: 820, Y: 60, W: 80, H: 80},
}

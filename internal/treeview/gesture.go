package treeview

import "math"

// Phase is the lifecycle stage of a pointer gesture.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseMove  Phase = "move"
	PhaseEnd   Phase = "end"
)

func (p Phase) IsValid() bool {
	switch p {
	case PhaseStart, PhaseMove, PhaseEnd:
		return true
	default:
		return false
	}
}

// Gesture is one normalised mouse or touch event. One point means a drag,
// two points mean a pinch.
type Gesture struct {
	Phase     Phase   `json:"phase" validate:"required,oneof=start move end"`
	Points    []Point `json:"points" validate:"max=2"`
	OnControl bool    `json:"onControl"`
}

// GestureTracker turns a stream of gestures into pan and zoom operations.
// Deltas are always taken against the last processed event.
type GestureTracker struct {
	dragging bool
	last     Point
	pinching bool
	lastDist float64
}

// Dragging reports whether a drag is in progress.
func (t *GestureTracker) Dragging() bool { return t.dragging }

// Pinching reports whether a two-point pinch is in progress.
func (t *GestureTracker) Pinching() bool { return t.pinching }

// Apply feeds g into the tracker and updates v. It reports whether the
// viewport changed.
func (t *GestureTracker) Apply(v *Viewport, g Gesture) bool {
	switch g.Phase {
	case PhaseStart:
		t.begin(g)
		return false
	case PhaseMove:
		return t.move(v, g)
	default:
		t.reset()
		return false
	}
}

func (t *GestureTracker) begin(g Gesture) {
	t.reset()
	switch {
	case len(g.Points) >= 2:
		t.pinching = true
		t.lastDist = distance(g.Points[0], g.Points[1])
	case len(g.Points) == 1 && !g.OnControl:
		t.dragging = true
		t.last = g.Points[0]
	}
}

func (t *GestureTracker) move(v *Viewport, g Gesture) bool {
	if len(g.Points) >= 2 {
		if !t.pinching {
			t.begin(g)
			return false
		}
		d := distance(g.Points[0], g.Points[1])
		if t.lastDist <= 0 || d <= 0 {
			t.lastDist = d
			return false
		}
		ratio := d / t.lastDist
		t.lastDist = d
		return v.ZoomAt(midpoint(g.Points[0], g.Points[1]), v.Scale*ratio)
	}
	if !t.dragging || len(g.Points) == 0 {
		return false
	}
	p := g.Points[0]
	dx, dy := p.X-t.last.X, p.Y-t.last.Y
	t.last = p
	return v.PanBy(dx, dy)
}

func (t *GestureTracker) reset() {
	*t = GestureTracker{}
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

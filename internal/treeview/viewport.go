package treeview

import "math"

// Point is a pixel position relative to the visible viewport.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the scaled, scrollable layer the tree is drawn into. Content
// sizes are unscaled; scroll offsets are in scaled pixels.
type Viewport struct {
	Scale         float64 `json:"scale"`
	ScrollX       float64 `json:"scrollX"`
	ScrollY       float64 `json:"scrollY"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	ContentWidth  float64 `json:"contentWidth"`
	ContentHeight float64 `json:"contentHeight"`
	MinScale      float64 `json:"minScale"`
	MaxScale      float64 `json:"maxScale"`
}

// Mounted reports whether the container has a known size. Zoom and pan are
// no-ops until it does.
func (v *Viewport) Mounted() bool {
	return v.Width > 0 && v.Height > 0
}

// ClampScale bounds s to [MinScale, MaxScale].
func (v *Viewport) ClampScale(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return v.Scale
	}
	return math.Min(v.MaxScale, math.Max(v.MinScale, s))
}

// ZoomAt changes the scale while keeping the content point under p fixed on
// screen. It reports whether anything changed.
func (v *Viewport) ZoomAt(p Point, scale float64) bool {
	if !v.Mounted() || v.Scale <= 0 {
		return false
	}
	next := v.ClampScale(scale)
	if next == v.Scale {
		return false
	}
	cx := (p.X + v.ScrollX) / v.Scale
	cy := (p.Y + v.ScrollY) / v.Scale
	v.Scale = next
	v.ScrollX = cx*next - p.X
	v.ScrollY = cy*next - p.Y
	v.clampScroll()
	return true
}

// ZoomBy adds delta to the scale, anchored at p.
func (v *Viewport) ZoomBy(p Point, delta float64) bool {
	return v.ZoomAt(p, v.Scale+delta)
}

// Center is the middle of the visible area.
func (v *Viewport) Center() Point {
	return Point{X: v.Width / 2, Y: v.Height / 2}
}

// PanBy moves the content by the pointer delta: dragging right reveals what
// is to the left.
func (v *Viewport) PanBy(dx, dy float64) bool {
	if !v.Mounted() {
		return false
	}
	v.ScrollX -= dx
	v.ScrollY -= dy
	v.clampScroll()
	return true
}

// ScrollBy scrolls by a wheel delta.
func (v *Viewport) ScrollBy(dx, dy float64) bool {
	return v.PanBy(-dx, -dy)
}

// Fit sets scale and centres the content horizontally, scrolled to the top.
func (v *Viewport) Fit(scale float64) {
	v.Scale = v.ClampScale(scale)
	if !v.Mounted() {
		return
	}
	v.ScrollX = math.Max(0, (v.ContentWidth*v.Scale-v.Width)/2)
	v.ScrollY = 0
}

// clampScroll keeps the scroll offset inside the scrollable range. The upper
// bound only applies once the content size is known.
func (v *Viewport) clampScroll() {
	if v.ContentWidth > 0 {
		v.ScrollX = math.Min(v.ScrollX, math.Max(0, v.ContentWidth*v.Scale-v.Width))
	}
	if v.ContentHeight > 0 {
		v.ScrollY = math.Min(v.ScrollY, math.Max(0, v.ContentHeight*v.Scale-v.Height))
	}
	v.ScrollX = math.Max(0, v.ScrollX)
	v.ScrollY = math.Max(0, v.ScrollY)
}

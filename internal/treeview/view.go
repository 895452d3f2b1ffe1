// Package treeview is the interaction engine behind the family-tree view:
// per-node expand state, search highlighting, an anchored-zoom viewport,
// gesture handling, layout and PNG snapshots.
package treeview

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/domain/family"
)

// State is a read-only copy of a view.
type State struct {
	Viewport  Viewport `json:"viewport"`
	Query     string   `json:"query"`
	Collapsed []string `json:"collapsed"`
	Dragging  bool     `json:"dragging"`
	Pinching  bool     `json:"pinching"`
}

// View holds the interaction state of one rendered tree. It is safe for
// concurrent use.
type View struct {
	mu       sync.Mutex
	opts     Options
	expanded map[string]bool
	query    string
	forced   string
	viewport Viewport
	tracker  GestureTracker
	frames   *rate.Limiter
}

// NewView creates a view at the wide reset scale with every node expanded.
func NewView(opts Options) *View {
	opts = opts.withDefaults()
	limit := rate.Inf
	if opts.FrameInterval > 0 {
		limit = rate.Every(opts.FrameInterval)
	}
	v := &View{
		opts:     opts,
		expanded: make(map[string]bool),
		frames:   rate.NewLimiter(limit, 1),
		viewport: Viewport{
			Scale:    opts.ResetScaleWide,
			MinScale: opts.MinScale,
			MaxScale: opts.MaxScale,
		},
	}
	v.viewport.Scale = v.viewport.ClampScale(v.viewport.Scale)
	return v
}

// Options returns the effective options.
func (v *View) Options() Options {
	return v.opts
}

// IsExpanded reports the expand state of id. Nodes default to expanded.
func (v *View) IsExpanded(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.isExpanded(id)
}

func (v *View) isExpanded(id string) bool {
	e, ok := v.expanded[id]
	return !ok || e
}

// Toggle flips the expand state of id and returns the new state.
func (v *View) Toggle(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := !v.isExpanded(id)
	v.expanded[id] = next
	return next
}

// SetExpanded sets the expand state of id.
func (v *View) SetExpanded(id string, expanded bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expanded[id] = expanded
}

// SetSearch sets the live query. Every node whose subtree contains a match
// is expanded. Clearing the query leaves expand state as it is. Later renders
// expand again only when the set of matching subtrees changes, so a branch
// collapsed during a live query stays collapsed.
func (v *View) SetSearch(root *entities.FamilyMember, query string) map[string]family.Match {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = query
	return v.applySearch(root, true)
}

// Query returns the live search query.
func (v *View) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

func (v *View) applySearch(root *entities.FamilyMember, force bool) map[string]family.Match {
	idx := family.MatchIndex(root, v.query)
	key := matchKey(idx)
	if !force && key == v.forced {
		return idx
	}
	for id, m := range idx {
		if m.Contains {
			v.expanded[id] = true
		}
	}
	v.forced = key
	return idx
}

func matchKey(idx map[string]family.Match) string {
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}

// Resize records the visible container size.
func (v *View) Resize(width, height float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewport.Width = width
	v.viewport.Height = height
	v.viewport.clampScroll()
}

// HandleGesture feeds a pointer or touch event into the view. Move events
// beyond the frame budget are dropped; the next accepted move still measures
// its delta from the last accepted one.
func (v *View) HandleGesture(g Gesture) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if g.Phase == PhaseMove && !v.frames.Allow() {
		return false
	}
	return v.tracker.Apply(&v.viewport, g)
}

// Wheel scrolls, or zooms around p when a modifier key is held.
func (v *View) Wheel(p Point, deltaX, deltaY float64, modifier bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !modifier {
		return v.viewport.ScrollBy(deltaX, deltaY)
	}
	if deltaY == 0 {
		return false
	}
	step := v.opts.WheelStep
	if deltaY > 0 {
		step = -step
	}
	return v.viewport.ZoomBy(p, step)
}

// ZoomIn zooms one button step around the viewport centre.
func (v *View) ZoomIn() bool {
	return v.zoomStep(1)
}

// ZoomOut zooms out one button step around the viewport centre.
func (v *View) ZoomOut() bool {
	return v.zoomStep(-1)
}

func (v *View) zoomStep(dir float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewport.ZoomBy(v.viewport.Center(), dir*v.opts.ButtonStep)
}

// ZoomTo sets an absolute scale anchored at p.
func (v *View) ZoomTo(p Point, scale float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewport.ZoomAt(p, scale)
}

// Reset restores the default scale for the current width and centres the
// tree horizontally. root is laid out first so the centring uses its
// current size.
func (v *View) Reset(root *entities.FamilyMember) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.render(root)
	scale := v.opts.ResetScaleWide
	if v.viewport.Mounted() && v.viewport.Width < v.opts.NarrowWidth {
		scale = v.opts.ResetScaleNarrow
	}
	v.viewport.Fit(scale)
}

// Render lays out root under the current expand and search state.
func (v *View) Render(root *entities.FamilyMember) Layout {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.render(root)
}

func (v *View) render(root *entities.FamilyMember) Layout {
	idx := v.applySearch(root, false)
	l := ComputeLayout(root, v.opts.CompactGeneration, v.isExpanded, idx)
	v.viewport.ContentWidth = l.Width
	v.viewport.ContentHeight = l.Height
	v.viewport.clampScroll()
	return l
}

// Snapshot renders root at scale 1 and rasterises it to PNG. The previous
// scale is restored afterwards, also on failure. Any rasterisation failure,
// including a panic, is reported as entities.ErrExportFailed.
func (v *View) Snapshot(root *entities.FamilyMember) (png []byte, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	prev := v.viewport
	defer func() {
		v.viewport.Scale = prev.Scale
		v.viewport.ScrollX = prev.ScrollX
		v.viewport.ScrollY = prev.ScrollY
		if r := recover(); r != nil {
			png, err = nil, fmt.Errorf("%w: %v", entities.ErrExportFailed, r)
		}
	}()

	v.viewport.Scale = 1
	l := v.render(root)
	bg, err := ParseHexColor(v.opts.Background)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrExportFailed, err)
	}
	out, err := Rasterize(l, v.opts.PixelRatio, bg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrExportFailed, err)
	}
	return out, nil
}

// State returns a copy of the current view state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := State{
		Viewport: v.viewport,
		Query:    v.query,
		Dragging: v.tracker.Dragging(),
		Pinching: v.tracker.Pinching(),
	}
	for id, e := range v.expanded {
		if !e {
			s.Collapsed = append(s.Collapsed, id)
		}
	}
	sort.Strings(s.Collapsed)
	return s
}

// Summary is a one-line description used in logs.
func (s State) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scale=%.2f scroll=(%.0f,%.0f)", s.Viewport.Scale, s.Viewport.ScrollX, s.Viewport.ScrollY)
	if s.Query != "" {
		fmt.Fprintf(&b, " query=%q", s.Query)
	}
	return b.String()
}

package treeview

import (
	"math"
	"strings"

	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/domain/family"
)

// Card and spacing metrics in unscaled pixels.
const (
	WideCardWidth    = 208.0
	CompactCardWidth = 48.0
	WidePadding      = 32.0
	CompactPadding   = 4.0
	RowGap           = 48.0
	DropLine         = 24.0
	TreePadding      = 80.0

	wideBaseHeight    = 76.0
	spouseLineHeight  = 20.0
	compactLineHeight = 18.0
	compactMinHeight  = 96.0
)

// Box is one positioned member card.
type Box struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Lines         []string `json:"lines"`
	Label         string   `json:"label"`
	Generation    int      `json:"generation"`
	IsMale        bool     `json:"isMale"`
	Spouses       []string `json:"spouses,omitempty"`
	OtherParent   string   `json:"otherParent,omitempty"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	W             float64  `json:"w"`
	H             float64  `json:"h"`
	Compact       bool     `json:"compact"`
	Highlighted   bool     `json:"highlighted"`
	ContainsMatch bool     `json:"containsMatch"`
	Expanded      bool     `json:"expanded"`
	HasChildren   bool     `json:"hasChildren"`
}

// Line is a connector segment.
type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Layout is the positioned render of the visible part of a tree.
type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Boxes  []Box   `json:"boxes"`
	Lines  []Line  `json:"lines"`
}

// Find returns the box with id.
func (l *Layout) Find(id string) (Box, bool) {
	for _, b := range l.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}

type layoutInput struct {
	compactFrom int
	expanded    func(id string) bool
	matches     map[string]family.Match
}

type layouter struct {
	in     layoutInput
	widths map[*entities.FamilyMember]float64
	out    Layout
}

// ComputeLayout positions every visible node of root. Collapsed nodes keep
// their card but hide their whole subtree.
func ComputeLayout(root *entities.FamilyMember, compactFrom int, expanded func(id string) bool, matches map[string]family.Match) Layout {
	if root == nil {
		return Layout{}
	}
	if expanded == nil {
		expanded = func(string) bool { return true }
	}
	l := &layouter{
		in:     layoutInput{compactFrom: compactFrom, expanded: expanded, matches: matches},
		widths: make(map[*entities.FamilyMember]float64),
	}
	w := l.measure(root)
	bottom := l.place(root, nil, TreePadding, TreePadding)
	l.out.Width = w + 2*TreePadding
	l.out.Height = bottom + TreePadding
	return l.out
}

func (l *layouter) compact(n *entities.FamilyMember) bool {
	return l.in.compactFrom > 0 && n.Generation >= l.in.compactFrom
}

func (l *layouter) cardWidth(n *entities.FamilyMember) float64 {
	if l.compact(n) {
		return CompactCardWidth
	}
	return WideCardWidth
}

func (l *layouter) padding(n *entities.FamilyMember) float64 {
	if l.compact(n) {
		return CompactPadding
	}
	return WidePadding
}

func (l *layouter) cardHeight(n *entities.FamilyMember) float64 {
	if l.compact(n) {
		return math.Max(compactMinHeight, 16+compactLineHeight*float64(len(nameLines(n.Name, true))))
	}
	return wideBaseHeight + spouseLineHeight*float64(len(family.EffectiveSpouses(n)))
}

func (l *layouter) showChildren(n *entities.FamilyMember) bool {
	return n.HasChildren() && l.in.expanded(n.ID)
}

// measure returns the width of n's subtree without the outer slot padding.
func (l *layouter) measure(n *entities.FamilyMember) float64 {
	w := l.cardWidth(n)
	if l.showChildren(n) {
		row := 0.0
		for _, c := range n.Children {
			row += l.measure(c) + 2*l.padding(c)
		}
		w = math.Max(w, row)
	}
	l.widths[n] = w
	return w
}

// place positions n's subtree inside [left, left+width) starting at top and
// returns the lowest y it used.
func (l *layouter) place(n, parent *entities.FamilyMember, left, top float64) float64 {
	width := l.widths[n]
	cw, ch := l.cardWidth(n), l.cardHeight(n)
	x := left + (width-cw)/2
	l.out.Boxes = append(l.out.Boxes, l.box(n, parent, x, top, cw, ch))
	bottom := top + ch

	if !l.showChildren(n) {
		return bottom
	}

	row := 0.0
	for _, c := range n.Children {
		row += l.widths[c] + 2*l.padding(c)
	}
	cx := x + cw/2
	barY := bottom + DropLine
	childTop := bottom + RowGap
	l.out.Lines = append(l.out.Lines, Line{X1: cx, Y1: bottom, X2: cx, Y2: barY})

	slot := left + (width-row)/2
	var firstX, lastX float64
	for i, c := range n.Children {
		pad := l.padding(c)
		childLeft := slot + pad
		childCX := childLeft + l.widths[c]/2
		if i == 0 {
			firstX = childCX
		}
		lastX = childCX
		l.out.Lines = append(l.out.Lines, Line{X1: childCX, Y1: barY, X2: childCX, Y2: childTop})
		if b := l.place(c, n, childLeft, childTop); b > bottom {
			bottom = b
		}
		slot += l.widths[c] + 2*pad
	}
	if len(n.Children) > 1 {
		l.out.Lines = append(l.out.Lines, Line{X1: firstX, Y1: barY, X2: lastX, Y2: barY})
	}
	return bottom
}

func (l *layouter) box(n, parent *entities.FamilyMember, x, y, w, h float64) Box {
	m := l.in.matches[n.ID]
	compact := l.compact(n)
	b := Box{
		ID:            n.ID,
		Name:          n.Name,
		Lines:         nameLines(n.Name, compact),
		Label:         n.GenerationLabel(),
		Generation:    n.Generation,
		IsMale:        n.IsMale,
		OtherParent:   family.OtherParentName(parent, n),
		X:             x,
		Y:             y,
		W:             w,
		H:             h,
		Compact:       compact,
		Highlighted:   m.Self,
		ContainsMatch: m.Contains,
		Expanded:      l.in.expanded(n.ID),
		HasChildren:   n.HasChildren(),
	}
	for _, s := range family.EffectiveSpouses(n) {
		b.Spouses = append(b.Spouses, s.Name)
	}
	return b
}

// nameLines splits a name into one line per word for compact cards.
func nameLines(name string, compact bool) []string {
	if !compact {
		return []string{name}
	}
	words := strings.Fields(name)
	if len(words) == 0 {
		return []string{name}
	}
	return words
}

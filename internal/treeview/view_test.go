package treeview

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giapha/core/internal/domain/entities"
)

func threeLevelTree() *entities.FamilyMember {
	return &entities.FamilyMember{
		ID: "root", Name: "Founder", Generation: 1, IsMale: true,
		Children: []*entities.FamilyMember{
			{
				ID: "mid", Name: "Middle", Generation: 2, IsMale: true,
				Children: []*entities.FamilyMember{
					{ID: "leaf", Name: "Needle Person", Generation: 3},
				},
			},
			{ID: "other", Name: "Other", Generation: 2, IsMale: true},
		},
	}
}

func TestView_DefaultsToExpanded(t *testing.T) {
	v := NewView(Options{})

	assert.True(t, v.IsExpanded("anything"))
	assert.False(t, v.Toggle("anything"))
	assert.False(t, v.IsExpanded("anything"))
	assert.True(t, v.Toggle("anything"))
}

func TestView_SearchExpandsAncestorsOfMatch(t *testing.T) {
	tree := threeLevelTree()
	v := NewView(Options{})
	v.SetExpanded("root", false)
	v.SetExpanded("mid", false)
	v.SetExpanded("other", false)

	idx := v.SetSearch(tree, "needle")

	assert.True(t, v.IsExpanded("root"))
	assert.True(t, v.IsExpanded("mid"))
	assert.False(t, v.IsExpanded("other"), "branches without a match keep their state")
	assert.True(t, idx["leaf"].Self)
	assert.False(t, idx["mid"].Self)
}

func TestView_ClearingSearchDoesNotCollapse(t *testing.T) {
	tree := threeLevelTree()
	v := NewView(Options{})
	v.SetExpanded("mid", false)
	v.SetSearch(tree, "needle")

	v.SetSearch(tree, "")

	assert.True(t, v.IsExpanded("mid"))
	v.SetExpanded("mid", false)
	v.Render(tree)
	assert.False(t, v.IsExpanded("mid"))
}

func TestView_CollapseDuringLiveSearchSticks(t *testing.T) {
	tree := threeLevelTree()
	v := NewView(Options{})
	v.SetSearch(tree, "needle")

	assert.False(t, v.Toggle("mid"))
	l := v.Render(tree)

	assert.False(t, v.IsExpanded("mid"))
	_, ok := l.Find("leaf")
	assert.False(t, ok, "collapsed branch stays hidden while the query is live")

	// A new match elsewhere changes the match set and expands again.
	grown := &entities.FamilyMember{
		ID: tree.ID, Name: tree.Name, Generation: 1, IsMale: true,
		Children: []*entities.FamilyMember{
			tree.Children[0],
			{
				ID: "other", Name: "Other", Generation: 2, IsMale: true,
				Children: []*entities.FamilyMember{{ID: "leaf2", Name: "Needle Too", Generation: 3}},
			},
		},
	}
	v.SetExpanded("other", false)
	v.Render(grown)
	assert.True(t, v.IsExpanded("other"))
	assert.True(t, v.IsExpanded("mid"))
}

func TestView_RenderHighlightsMatches(t *testing.T) {
	tree := threeLevelTree()
	v := NewView(Options{})
	v.SetSearch(tree, "NEEDLE")

	l := v.Render(tree)

	leaf, ok := l.Find("leaf")
	require.True(t, ok)
	assert.True(t, leaf.Highlighted)
	mid, _ := l.Find("mid")
	assert.False(t, mid.Highlighted)
	assert.True(t, mid.ContainsMatch)
	other, _ := l.Find("other")
	assert.False(t, other.ContainsMatch)
}

func TestView_ResetPicksScaleByWidth(t *testing.T) {
	tree := threeLevelTree()

	wide := NewView(Options{})
	wide.Resize(1280, 800)
	wide.ZoomTo(Point{}, 2)
	wide.Reset(tree)
	s := wide.State().Viewport
	assert.Equal(t, 0.8, s.Scale)
	assert.Zero(t, s.ScrollY)

	narrow := NewView(Options{})
	narrow.Resize(375, 700)
	narrow.Reset(tree)
	s = narrow.State().Viewport
	assert.Equal(t, 0.5, s.Scale)
	assert.InDelta(t, (s.ContentWidth*0.5-375)/2, s.ScrollX, 1e-9)
}

func TestView_ZoomButtons(t *testing.T) {
	v := NewView(Options{})
	assert.False(t, v.ZoomIn(), "unmounted view ignores zoom")

	v.Resize(800, 600)
	require.True(t, v.ZoomIn())
	assert.InDelta(t, 0.9, v.State().Viewport.Scale, 1e-9)
	require.True(t, v.ZoomOut())
	require.True(t, v.ZoomOut())
	assert.InDelta(t, 0.7, v.State().Viewport.Scale, 1e-9)
}

func TestView_WheelZoomsOnlyWithModifier(t *testing.T) {
	v := NewView(Options{})
	v.Resize(800, 600)

	v.Wheel(Point{X: 10, Y: 10}, 0, -100, true)
	assert.InDelta(t, 0.85, v.State().Viewport.Scale, 1e-9)

	v.Wheel(Point{X: 10, Y: 10}, 0, 40, false)
	s := v.State().Viewport
	assert.InDelta(t, 0.85, s.Scale, 1e-9)
	assert.Greater(t, s.ScrollY, 0.0)
}

func TestView_SnapshotRestoresScale(t *testing.T) {
	tree := threeLevelTree()
	v := NewView(Options{PixelRatio: 1})
	v.Resize(800, 600)
	v.ZoomTo(Point{}, 1.7)

	out, err := v.Snapshot(tree)

	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	l := v.Render(tree)
	assert.Equal(t, int(l.Width), img.Bounds().Dx())
	assert.InDelta(t, 1.7, v.State().Viewport.Scale, 1e-9)
}

func TestView_SnapshotFailureIsReported(t *testing.T) {
	v := NewView(Options{Background: "not-a-color"})
	v.Resize(800, 600)
	v.ZoomTo(Point{}, 1.3)

	_, err := v.Snapshot(threeLevelTree())

	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrExportFailed))
	assert.InDelta(t, 1.3, v.State().Viewport.Scale, 1e-9)
}

func TestView_StateListsCollapsed(t *testing.T) {
	v := NewView(Options{})
	v.SetExpanded("b", false)
	v.SetExpanded("a", false)
	v.SetExpanded("c", true)

	assert.Equal(t, []string{"a", "b"}, v.State().Collapsed)
}

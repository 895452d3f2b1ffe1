package family

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giapha/core/internal/domain/entities"
)

func sampleTree() *entities.FamilyMember {
	return &entities.FamilyMember{
		ID: "root", Name: "Founder", Generation: 1, IsMale: true,
		Children: []*entities.FamilyMember{
			{
				ID: "a", Name: "Alpha", Generation: 2, IsMale: true,
				Children: []*entities.FamilyMember{
					{ID: "a1", Name: "Alpha One", Generation: 3},
					{ID: "a2", Name: "Alpha Two", Generation: 3, Children: []*entities.FamilyMember{
						{ID: "a2x", Name: "Deep", Generation: 4},
					}},
				},
			},
			{ID: "b", Name: "Beta", Generation: 2},
		},
	}
}

func snapshot(t *testing.T, m *entities.FamilyMember) string {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return string(b)
}

func ids(root *entities.FamilyMember) []string {
	var out []string
	Walk(root, func(n, _ *entities.FamilyMember) bool {
		out = append(out, n.ID)
		return true
	})
	return out
}

func TestDeleteMember_RootIsProtected(t *testing.T) {
	tree := sampleTree()
	before := snapshot(t, tree)

	out, err := DeleteMember(tree, tree.ID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrProtectedRoot))
	assert.Same(t, tree, out)
	assert.Equal(t, before, snapshot(t, out))
}

func TestDeleteMember_RemovesWholeSubtree(t *testing.T) {
	tree := sampleTree()

	out, err := DeleteMember(tree, "a")

	require.NoError(t, err)
	assert.Equal(t, []string{"root", "b"}, ids(out))
	for _, gone := range []string{"a", "a1", "a2", "a2x"} {
		assert.Nil(t, Find(out, gone), "node %s should be pruned", gone)
	}
}

func TestDeleteMember_UnknownIDIsNoOp(t *testing.T) {
	tree := sampleTree()

	out, err := DeleteMember(tree, "missing")

	require.NoError(t, err)
	assert.Same(t, tree, out)
}

func TestAddChild_GenerationInvariant(t *testing.T) {
	tree := sampleTree()
	Walk(tree, func(p, _ *entities.FamilyMember) bool {
		out, child := AddChild(tree, p.ID)
		require.NotNil(t, child, "parent %s", p.ID)
		assert.Equal(t, p.Generation+1, child.Generation)
		assert.Equal(t, entities.NewMemberName, child.Name)
		assert.True(t, child.IsMale)
		assert.Empty(t, child.Children)

		parent := Find(out, p.ID)
		require.NotNil(t, parent)
		require.NotEmpty(t, parent.Children)
		assert.Same(t, child, parent.Children[len(parent.Children)-1])
		return true
	})
}

func TestAddChild_MissingParent(t *testing.T) {
	tree := sampleTree()

	out, child := AddChild(tree, "nope")

	assert.Nil(t, child)
	assert.Same(t, tree, out)
}

func TestAddChild_SharesUntouchedBranches(t *testing.T) {
	tree := sampleTree()

	out, _ := AddChild(tree, "a1")

	assert.NotSame(t, tree, out)
	assert.NotSame(t, tree.Children[0], out.Children[0])
	assert.Same(t, tree.Children[1], out.Children[1], "sibling branch should be shared")
	assert.Same(t, tree.Children[0].Children[1], out.Children[0].Children[1])
}

func TestUpdateMember_Idempotent(t *testing.T) {
	tree := sampleTree()
	m := &entities.FamilyMember{ID: "a1", Name: "Renamed", Generation: 3, Bio: "bio"}

	once := UpdateMember(tree, m)
	twice := UpdateMember(once, m)

	assert.Equal(t, snapshot(t, once), snapshot(t, twice))
	assert.Equal(t, "Renamed", Find(once, "a1").Name)
}

func TestUpdateMember_ReplacesWholesale(t *testing.T) {
	tree := sampleTree()

	out := UpdateMember(tree, &entities.FamilyMember{ID: "a2", Name: "No Kids", Generation: 3})

	assert.Nil(t, Find(out, "a2x"), "children not carried over are dropped")
}

func TestMutations_DoNotTouchInput(t *testing.T) {
	tree := sampleTree()
	before := snapshot(t, tree)

	AddChild(tree, "a2x")
	UpdateMember(tree, &entities.FamilyMember{ID: "b", Name: "Changed", Generation: 2})
	_, err := DeleteMember(tree, "a2")
	require.NoError(t, err)
	NormalizeTree(tree)

	assert.Equal(t, before, snapshot(t, tree))
}

func TestNewMemberID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewMemberID()
		assert.Regexp(t, `^m-\d+$`, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestEndToEndScenario(t *testing.T) {
	tree := &entities.FamilyMember{ID: "Founder", Name: "Founder", Generation: 1, IsMale: true}

	tree, first := AddChild(tree, "Founder")
	require.NotNil(t, first)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, 2, tree.Children[0].Generation)
	assert.Equal(t, entities.NewMemberName, tree.Children[0].Name)

	edited := first.Clone()
	edited.Name = "Child A"
	tree = UpdateMember(tree, edited)
	assert.Equal(t, "Child A", tree.Children[0].Name)

	tree, second := AddChild(tree, "Founder")
	require.NotNil(t, second)
	require.Len(t, tree.Children, 2)
	for _, c := range tree.Children {
		assert.Equal(t, 2, c.Generation)
	}

	tree, err := DeleteMember(tree, first.ID)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, second.ID, tree.Children[0].ID)
	assert.Equal(t, entities.NewMemberName, tree.Children[0].Name)
}

func TestFindParentAndDepth(t *testing.T) {
	tree := sampleTree()

	assert.Nil(t, FindParent(tree, "root"))
	assert.Equal(t, "a2", FindParent(tree, "a2x").ID)
	assert.Equal(t, 4, Depth(tree))
	assert.Equal(t, 6, Count(tree))
}

package family

import (
	"fmt"

	"github.com/giapha/core/internal/domain/entities"
)

// AddChild appends a placeholder child to the node with parentID. It returns
// the new tree and the new child; when the parent is missing the input tree
// is returned unchanged with a nil child.
func AddChild(tree *entities.FamilyMember, parentID string) (*entities.FamilyMember, *entities.FamilyMember) {
	return AddChildWithID(tree, parentID, NewMemberID())
}

// AddChildWithID is AddChild with a caller-chosen id.
func AddChildWithID(tree *entities.FamilyMember, parentID, childID string) (*entities.FamilyMember, *entities.FamilyMember) {
	var created *entities.FamilyMember
	out := Rewrite(tree, func(n *entities.FamilyMember) (*entities.FamilyMember, bool) {
		if created != nil || n.ID != parentID {
			return nil, false
		}
		created = &entities.FamilyMember{
			ID:         childID,
			Name:       entities.NewMemberName,
			Generation: n.Generation + 1,
			IsMale:     true,
			Children:   []*entities.FamilyMember{},
		}
		cp := n.Clone()
		cp.Children = make([]*entities.FamilyMember, 0, len(n.Children)+1)
		cp.Children = append(cp.Children, n.Children...)
		cp.Children = append(cp.Children, created)
		return cp, true
	})
	return out, created
}

// UpdateMember replaces the node whose id matches updated wholesale. Fields
// the caller leaves empty are dropped. Unknown ids leave the tree unchanged.
func UpdateMember(tree *entities.FamilyMember, updated *entities.FamilyMember) *entities.FamilyMember {
	if updated == nil {
		return tree
	}
	return Rewrite(tree, func(n *entities.FamilyMember) (*entities.FamilyMember, bool) {
		if n.ID != updated.ID {
			return nil, false
		}
		return updated.Clone(), true
	})
}

// DeleteMember prunes the subtree rooted at id. Deleting the root is
// rejected with ErrProtectedRoot and the input tree is returned.
func DeleteMember(tree *entities.FamilyMember, id string) (*entities.FamilyMember, error) {
	if tree != nil && tree.ID == id {
		return tree, fmt.Errorf("delete %q: %w", id, entities.ErrProtectedRoot)
	}
	return Rewrite(tree, func(n *entities.FamilyMember) (*entities.FamilyMember, bool) {
		if n.ID == id {
			return nil, true
		}
		return nil, false
	}), nil
}

// Contains reports whether a node with id is present.
func Contains(tree *entities.FamilyMember, id string) bool {
	return Find(tree, id) != nil
}

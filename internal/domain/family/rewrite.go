// Package family holds the pure, copy-on-write operations over the clan tree.
// No function in this package mutates a node it received; changed nodes are
// rebuilt along the path to the root and every other branch is shared.
package family

import "github.com/giapha/core/internal/domain/entities"

// Visitor inspects a node during Rewrite. It returns the replacement node and
// whether the node was handled. A nil replacement with handled=true removes
// the node from its parent's children. When handled is false the walk
// descends into the node's children.
type Visitor func(n *entities.FamilyMember) (replacement *entities.FamilyMember, handled bool)

// Rewrite rebuilds root by applying visit depth-first. Subtrees that did not
// change are returned as the identical pointer, so callers can detect a no-op
// with a pointer comparison.
func Rewrite(root *entities.FamilyMember, visit Visitor) *entities.FamilyMember {
	out, _ := rewrite(root, visit)
	return out
}

func rewrite(n *entities.FamilyMember, visit Visitor) (*entities.FamilyMember, bool) {
	if n == nil {
		return nil, false
	}
	if repl, handled := visit(n); handled {
		return repl, true
	}

	var children []*entities.FamilyMember
	changed := false
	for i, child := range n.Children {
		next, ok := rewrite(child, visit)
		if !ok {
			if changed {
				children = append(children, child)
			}
			continue
		}
		if !changed {
			children = make([]*entities.FamilyMember, 0, len(n.Children))
			children = append(children, n.Children[:i]...)
			changed = true
		}
		if next != nil {
			children = append(children, next)
		}
	}
	if !changed {
		return n, false
	}

	cp := n.Clone()
	cp.Children = children
	return cp, true
}

// Walk visits every node in pre-order. Returning false from fn stops the walk.
func Walk(root *entities.FamilyMember, fn func(n, parent *entities.FamilyMember) bool) {
	walk(root, nil, fn)
}

func walk(n, parent *entities.FamilyMember, fn func(n, parent *entities.FamilyMember) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n, parent) {
		return false
	}
	for _, child := range n.Children {
		if !walk(child, n, fn) {
			return false
		}
	}
	return true
}

// Find returns the node with the given id, or nil.
func Find(root *entities.FamilyMember, id string) *entities.FamilyMember {
	var found *entities.FamilyMember
	Walk(root, func(n, _ *entities.FamilyMember) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindParent returns the parent of the node with the given id. The root and
// unknown ids both yield nil.
func FindParent(root *entities.FamilyMember, id string) *entities.FamilyMember {
	var found *entities.FamilyMember
	Walk(root, func(n, parent *entities.FamilyMember) bool {
		if n.ID == id {
			found = parent
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the tree.
func Count(root *entities.FamilyMember) int {
	total := 0
	Walk(root, func(*entities.FamilyMember, *entities.FamilyMember) bool {
		total++
		return true
	})
	return total
}

// Depth returns the number of generations below and including root.
func Depth(root *entities.FamilyMember) int {
	if root == nil {
		return 0
	}
	deepest := 0
	for _, child := range root.Children {
		if d := Depth(child); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

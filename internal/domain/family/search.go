package family

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/giapha/core/internal/domain/entities"
)

// Fold returns the case-folded form used for every name comparison. A Caser
// keeps state, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Match is the search state of a single node.
type Match struct {
	// Self is true when the node's own name or one of its spouses' names matches.
	Self bool
	// Contains is true when Self is true or any descendant matches.
	Contains bool
}

// Matches reports whether the member's name or any spouse name contains
// query, ignoring case. An empty query never matches.
func Matches(m *entities.FamilyMember, query string) bool {
	q := Fold(strings.TrimSpace(query))
	if q == "" || m == nil {
		return false
	}
	return matchesFolded(m, q)
}

func matchesFolded(m *entities.FamilyMember, q string) bool {
	if strings.Contains(Fold(m.Name), q) {
		return true
	}
	for _, s := range EffectiveSpouses(m) {
		if strings.Contains(Fold(s.Name), q) {
			return true
		}
	}
	return false
}

// MatchIndex computes the Match of every node for query. Nodes with no match
// anywhere in their subtree are absent from the result.
func MatchIndex(root *entities.FamilyMember, query string) map[string]Match {
	idx := make(map[string]Match)
	q := Fold(strings.TrimSpace(query))
	if q == "" {
		return idx
	}
	var visit func(n *entities.FamilyMember) bool
	visit = func(n *entities.FamilyMember) bool {
		self := matchesFolded(n, q)
		contains := self
		for _, child := range n.Children {
			if visit(child) {
				contains = true
			}
		}
		if contains {
			idx[n.ID] = Match{Self: self, Contains: contains}
		}
		return contains
	}
	if root != nil {
		visit(root)
	}
	return idx
}

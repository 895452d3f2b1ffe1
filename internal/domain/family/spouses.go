package family

import (
	"strings"

	"github.com/giapha/core/internal/domain/entities"
)

// LegacySpouseID is the id synthesised for a spouse that only exists in the
// legacy spouseName field.
func LegacySpouseID(memberID string) string {
	return "legacy-" + memberID
}

// legacySpouse returns the implicit spouse encoded in the legacy fields.
func legacySpouse(m *entities.FamilyMember) (entities.Spouse, bool) {
	name := strings.TrimSpace(m.SpouseName)
	if name == "" {
		return entities.Spouse{}, false
	}
	return entities.Spouse{
		ID:        LegacySpouseID(m.ID),
		Name:      name,
		DeathDate: m.SpouseDeathDate,
	}, true
}

// MigrateLegacySpouse returns m with the legacy spouse moved into Spouses
// when Spouses is empty. The input is never modified; when no change is
// needed the same pointer is returned. The legacy fields are kept so the
// stored blob still round-trips.
func MigrateLegacySpouse(m *entities.FamilyMember) *entities.FamilyMember {
	if m == nil || len(m.Spouses) > 0 {
		return m
	}
	sp, ok := legacySpouse(m)
	if !ok {
		return m
	}
	cp := m.Clone()
	cp.Spouses = []entities.Spouse{sp}
	return cp
}

// NormalizeTree applies MigrateLegacySpouse to every node so the rest of the
// system only ever reads the Spouses list.
func NormalizeTree(root *entities.FamilyMember) *entities.FamilyMember {
	if root == nil {
		return nil
	}
	n := MigrateLegacySpouse(root)
	var children []*entities.FamilyMember
	for i, child := range root.Children {
		next := NormalizeTree(child)
		if next != child && children == nil {
			children = make([]*entities.FamilyMember, len(root.Children))
			copy(children, root.Children[:i])
		}
		if children != nil {
			children[i] = next
		}
	}
	if children == nil {
		return n
	}
	if n == root {
		n = root.Clone()
	}
	n.Children = children
	return n
}

// EffectiveSpouses is the canonical spouse list of m: the Spouses entries,
// preceded by the legacy spouse when no entry already carries that name.
func EffectiveSpouses(m *entities.FamilyMember) []entities.Spouse {
	if m == nil {
		return nil
	}
	sp, ok := legacySpouse(m)
	if !ok {
		return m.Spouses
	}
	for _, s := range m.Spouses {
		if strings.TrimSpace(s.Name) == sp.Name {
			return m.Spouses
		}
	}
	out := make([]entities.Spouse, 0, len(m.Spouses)+1)
	out = append(out, sp)
	return append(out, m.Spouses...)
}

// OtherParentName resolves child.OtherParentID against parent's spouses. A
// dangling reference resolves to "".
func OtherParentName(parent, child *entities.FamilyMember) string {
	if parent == nil || child == nil || child.OtherParentID == "" {
		return ""
	}
	for _, s := range EffectiveSpouses(parent) {
		if s.ID == child.OtherParentID {
			return s.Name
		}
	}
	return ""
}

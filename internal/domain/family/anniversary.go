package family

import (
	"fmt"
	"strings"

	"github.com/giapha/core/internal/domain/entities"
)

const anniversaryPrefix = "gio-"

// IsDerivedEventID reports whether id belongs to a synthesised death
// anniversary rather than an authored event.
func IsDerivedEventID(id string) bool {
	return strings.HasPrefix(id, anniversaryPrefix)
}

// DeathAnniversaries walks the tree in pre-order and returns one read-only
// giỗ event for every member and every spouse with a recorded death date.
// Member events use id gio-<memberId>, spouse events gio-<memberId>-<index>.
func DeathAnniversaries(tree *entities.FamilyMember) []entities.EventItem {
	var out []entities.EventItem
	Walk(tree, func(m, _ *entities.FamilyMember) bool {
		if date := m.AnniversaryDate(); date != "" {
			out = append(out, entities.EventItem{
				ID:             anniversaryPrefix + m.ID,
				Title:          "Giỗ cụ " + m.Name,
				LunarDateLabel: date,
				Type:           entities.EventTypeDeathAnniversary,
				Description:    "Ngày mất: " + date,
				Derived:        true,
			})
		}
		for i, s := range EffectiveSpouses(m) {
			if s.DeathDate == "" {
				continue
			}
			out = append(out, entities.EventItem{
				ID:             fmt.Sprintf("%s%s-%d", anniversaryPrefix, m.ID, i),
				Title:          spouseTitle(m, s),
				LunarDateLabel: s.DeathDate,
				Type:           entities.EventTypeDeathAnniversary,
				Description:    "Ngày mất: " + s.DeathDate,
				Derived:        true,
			})
		}
		return true
	})
	return out
}

func spouseTitle(m *entities.FamilyMember, s entities.Spouse) string {
	if m.IsMale {
		return fmt.Sprintf("Giỗ cụ bà %s (vợ cụ %s)", s.Name, m.Name)
	}
	return fmt.Sprintf("Giỗ cụ ông %s (chồng cụ %s)", s.Name, m.Name)
}

// MergeEvents returns the authored events followed by the derived ones.
// Authored entries that collide with a derived id are dropped.
func MergeEvents(authored []entities.EventItem, tree *entities.FamilyMember) []entities.EventItem {
	derived := DeathAnniversaries(tree)
	out := make([]entities.EventItem, 0, len(authored)+len(derived))
	for _, e := range authored {
		if IsDerivedEventID(e.ID) {
			continue
		}
		out = append(out, e)
	}
	return append(out, derived...)
}

package family

import (
	"strconv"

	"github.com/giapha/core/internal/domain/entities"
)

// Row is one flattened member as exported to CSV.
type Row struct {
	ID         string
	Name       string
	Generation int
	IsMale     bool
	BirthDate  string
	DeathDate  string
	SpouseName string
	ParentName string
	ParentID   string
}

// CSVHeader lists the export columns in order.
var CSVHeader = []string{
	"id", "name", "generation", "isMale", "birthDate", "deathDate", "spouseName", "parentName", "parentId",
}

// Flatten emits one row per member in pre-order. Multiple spouses are joined
// with ", ".
func Flatten(root *entities.FamilyMember) []Row {
	var rows []Row
	Walk(root, func(n, parent *entities.FamilyMember) bool {
		row := Row{
			ID:         n.ID,
			Name:       n.Name,
			Generation: n.Generation,
			IsMale:     n.IsMale,
			BirthDate:  n.BirthDate,
			DeathDate:  n.DeathDate,
			SpouseName: spouseNames(n),
		}
		if parent != nil {
			row.ParentName = parent.Name
			row.ParentID = parent.ID
		}
		rows = append(rows, row)
		return true
	})
	return rows
}

// Record renders the row in CSVHeader order.
func (r Row) Record() []string {
	return []string{
		r.ID,
		r.Name,
		strconv.Itoa(r.Generation),
		strconv.FormatBool(r.IsMale),
		r.BirthDate,
		r.DeathDate,
		r.SpouseName,
		r.ParentName,
		r.ParentID,
	}
}

func spouseNames(m *entities.FamilyMember) string {
	out := ""
	for i, s := range EffectiveSpouses(m) {
		if i > 0 {
			out += ", "
		}
		out += s.Name
	}
	return out
}

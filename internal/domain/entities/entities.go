package entities

import (
	"errors"
	"strconv"
	"time"
)

// Common errors
var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrProtectedRoot   = errors.New("cannot delete founding ancestor")
	ErrNewsNotFound    = errors.New("news item not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrDerivedEvent    = errors.New("death anniversaries are derived from the family tree and cannot be edited")
	ErrNoRemoteData    = errors.New("could not sync from remote document")
	ErrNoRemoteLocator = errors.New("remote document link is not configured")
	ErrExportFailed    = errors.New("export failed")
	ErrInvalidPassword = errors.New("invalid admin password")
	ErrViewNotFound    = errors.New("view session not found")
	ErrInvalidEvent    = errors.New("invalid event type")
	ErrInvalidTheme    = errors.New("invalid theme")
)

// Enums and types
type EventType string

const (
	EventTypeDeathAnniversary EventType = "giỗ"
	EventTypeBirthday         EventType = "sinh nhật"
	EventTypeGathering        EventType = "họp mặt"
	EventTypeOther            EventType = "khác"
)

type Theme string

const (
	ThemeClassic Theme = "classic"
	ThemeTet     Theme = "tet"
)

// RootLabel is the display label of the generation-1 node.
const RootLabel = "Cụ Tổ"

// NewMemberName is the placeholder name given to freshly added children.
const NewMemberName = "Thành viên mới"

// Spouse is one entry of a member's ordered spouse list.
type Spouse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BirthDate    string `json:"birthDate,omitempty"`
	DeathDate    string `json:"deathDate,omitempty"`
	RestingPlace string `json:"restingPlace,omitempty"`
}

// FamilyMember is a node of the family tree. Nodes are treated as immutable
// once they are reachable from a published tree; every change builds new
// nodes along the path to the root.
type FamilyMember struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Generation     int             `json:"generation"`
	IsMale         bool            `json:"isMale"`
	BirthDate      string          `json:"birthDate,omitempty"`
	DeathDate      string          `json:"deathDate,omitempty"`
	LunarDeathDate string          `json:"lunarDeathDate,omitempty"`
	RestingPlace   string          `json:"restingPlace,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	Title          string          `json:"title,omitempty"`
	Nickname       string          `json:"nickname,omitempty"`
	Spouses        []Spouse        `json:"spouses,omitempty"`
	OtherParentID  string          `json:"otherParentId,omitempty"`
	Children       []*FamilyMember `json:"children,omitempty"`

	// Legacy single-spouse fields, kept so older blobs round-trip.
	SpouseName      string `json:"spouseName,omitempty"`
	SpouseDeathDate string `json:"spouseDeathDate,omitempty"`
}

// NewsItem is a clan news article.
type NewsItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// EventItem is a calendar entry. Derived entries are synthesised from the
// family tree on every read and never persisted.
type EventItem struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	SolarDate      string    `json:"solarDate"`
	LunarDateLabel string    `json:"lunarDateLabel,omitempty"`
	Type           EventType `json:"type"`
	Description    string    `json:"description,omitempty"`
	Derived        bool      `json:"derived,omitempty"`
}

// AppData is the single persisted blob holding all site state.
type AppData struct {
	FamilyTree         *FamilyMember `json:"familyTree"`
	News               []NewsItem    `json:"news"`
	Events             []EventItem   `json:"events"`
	BannerURL          string        `json:"bannerUrl"`
	Address            string        `json:"address"`
	HistoryText        string        `json:"historyText"`
	AncestralHouseText string        `json:"ancestralHouseText"`
	Regulations        []string      `json:"regulations"`
	ClanName           string        `json:"clanName"`
	LastUpdated        string        `json:"lastUpdated"`
	Theme              Theme         `json:"theme,omitempty"`
}

// Business logic methods for FamilyMember
func (m *FamilyMember) IsRoot() bool {
	return m.Generation == 1
}

func (m *FamilyMember) HasChildren() bool {
	return len(m.Children) > 0
}

// GenerationLabel returns "Cụ Tổ" for the founding ancestor and "Đời n" otherwise.
func (m *FamilyMember) GenerationLabel() string {
	if m.IsRoot() {
		return RootLabel
	}
	return "Đời " + strconv.Itoa(m.Generation)
}

// AnniversaryDate is the label used for the member's own death anniversary.
// The lunar date wins over the free-text death date when both are set.
func (m *FamilyMember) AnniversaryDate() string {
	if m.LunarDeathDate != "" {
		return m.LunarDeathDate
	}
	return m.DeathDate
}

// Clone returns a shallow copy with its own spouse slice. Children are shared.
func (m *FamilyMember) Clone() *FamilyMember {
	cp := *m
	if m.Spouses != nil {
		cp.Spouses = append([]Spouse(nil), m.Spouses...)
	}
	return &cp
}

// Business logic methods for AppData

// Touch returns a shallow copy of the blob with LastUpdated stamped.
func (d *AppData) Touch(now time.Time) *AppData {
	cp := *d
	cp.LastUpdated = now.UTC().Format(time.RFC3339Nano)
	return &cp
}

// Valid reports whether the blob carries a usable family tree.
func (d *AppData) Valid() bool {
	return d != nil && d.FamilyTree != nil && d.FamilyTree.ID != ""
}

// Utility methods
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeDeathAnniversary, EventTypeBirthday, EventTypeGathering, EventTypeOther:
		return true
	default:
		return false
	}
}

func (t Theme) IsValid() bool {
	switch t {
	case ThemeClassic, ThemeTet:
		return true
	default:
		return false
	}
}

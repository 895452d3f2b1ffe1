package ports

import (
	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/treeview"
)

// Request/Response Types

// Auth related types
type LoginRequest struct {
	Password string `json:"password" validate:"required,max=200"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Claims struct {
	Role string `json:"role"`
}

// Family tree related types
type SpouseRequest struct {
	ID           string `json:"id" validate:"omitempty,max=100"`
	Name         string `json:"name" validate:"required,max=200"`
	BirthDate    string `json:"birthDate" validate:"omitempty,max=100"`
	DeathDate    string `json:"deathDate" validate:"omitempty,max=100"`
	RestingPlace string `json:"restingPlace" validate:"omitempty,max=500"`
}

// UpdateMemberRequest carries every editable field of a member. Fields left
// empty are cleared; children and generation are kept from the stored node.
type UpdateMemberRequest struct {
	Name           string          `json:"name" validate:"required,max=200"`
	IsMale         bool            `json:"isMale"`
	BirthDate      string          `json:"birthDate" validate:"omitempty,max=100"`
	DeathDate      string          `json:"deathDate" validate:"omitempty,max=100"`
	LunarDeathDate string          `json:"lunarDeathDate" validate:"omitempty,max=100"`
	RestingPlace   string          `json:"restingPlace" validate:"omitempty,max=500"`
	Bio            string          `json:"bio" validate:"omitempty,max=20000"`
	Title          string          `json:"title" validate:"omitempty,max=200"`
	Nickname       string          `json:"nickname" validate:"omitempty,max=200"`
	Spouses        []SpouseRequest `json:"spouses" validate:"omitempty,max=20,dive"`
	OtherParentID  string          `json:"otherParentId" validate:"omitempty,max=100"`
}

type AddChildResponse struct {
	Child *entities.FamilyMember `json:"child"`
	Tree  *entities.FamilyMember `json:"tree"`
}

// Content related types
type NewsRequest struct {
	ID       string `json:"id" validate:"omitempty,max=100"`
	Title    string `json:"title" validate:"required,max=300"`
	Date     string `json:"date" validate:"omitempty,max=50"`
	Summary  string `json:"summary" validate:"omitempty,max=2000"`
	Content  string `json:"content" validate:"omitempty,max=100000"`
	ImageURL string `json:"imageUrl" validate:"omitempty,max=2000"`
}

type EventRequest struct {
	Title          string             `json:"title" validate:"required,max=300"`
	SolarDate      string             `json:"solarDate" validate:"omitempty,datetime=2006-01-02"`
	LunarDateLabel string             `json:"lunarDateLabel" validate:"omitempty,max=100"`
	Type           entities.EventType `json:"type" validate:"required"`
	Description    string             `json:"description" validate:"omitempty,max=2000"`
}

// ContentPatch updates the free-text sections. Nil fields are left alone.
type ContentPatch struct {
	BannerURL          *string         `json:"bannerUrl" validate:"omitempty,max=2000"`
	Address            *string         `json:"address" validate:"omitempty,max=500"`
	HistoryText        *string         `json:"historyText" validate:"omitempty,max=100000"`
	AncestralHouseText *string         `json:"ancestralHouseText" validate:"omitempty,max=100000"`
	Regulations        *[]string       `json:"regulations" validate:"omitempty,max=100"`
	ClanName           *string         `json:"clanName" validate:"omitempty,max=200"`
	Theme              *entities.Theme `json:"theme"`
}

// Calendar groups the merged event list the way the events page shows it.
type Calendar struct {
	Today    []entities.EventItem `json:"today"`
	Upcoming []entities.EventItem `json:"upcoming"`
	All      []entities.EventItem `json:"all"`
}

// Sync related types
type SyncSettingsRequest struct {
	URL string `json:"url" validate:"required,url,max=2000"`
}

type SyncSettings struct {
	URL       string `json:"url"`
	IsDefault bool   `json:"isDefault"`
}

type SyncResult struct {
	Applied     bool   `json:"applied"`
	Sequence    uint64 `json:"sequence"`
	LastUpdated string `json:"lastUpdated"`
	Members     int    `json:"members"`
}

// View related types
type CreateViewRequest struct {
	Width  float64 `json:"width" validate:"min=0,max=100000"`
	Height float64 `json:"height" validate:"min=0,max=100000"`
}

type ResizeViewRequest struct {
	Width  float64 `json:"width" validate:"min=0,max=100000"`
	Height float64 `json:"height" validate:"min=0,max=100000"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

type WheelRequest struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	DeltaX   float64 `json:"deltaX"`
	DeltaY   float64 `json:"deltaY"`
	Modifier bool    `json:"modifier"`
}

type ZoomRequest struct {
	Direction string   `json:"direction" validate:"required_without=Scale,omitempty,oneof=in out"`
	Scale     *float64 `json:"scale" validate:"omitempty,gt=0"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
}

// ViewResponse is the state of a view session plus its current layout.
type ViewResponse struct {
	ID     string           `json:"id"`
	State  treeview.State   `json:"state"`
	Layout *treeview.Layout `json:"layout,omitempty"`
}

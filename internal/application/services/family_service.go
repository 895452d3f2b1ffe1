package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/domain/family"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/infrastructure/metrics"
	"github.com/giapha/core/internal/ports"
)

// FamilyService edits the family tree held by the site service.
type FamilyService struct {
	site    *SiteService
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewFamilyService creates a new family service
func NewFamilyService(site *SiteService, logger *logger.Logger, m *metrics.Metrics) *FamilyService {
	return &FamilyService{
		site:    site,
		logger:  logger.WithComponent("family"),
		metrics: m,
	}
}

// Tree returns the current tree
func (s *FamilyService) Tree() *entities.FamilyMember {
	return s.site.Tree()
}

// GetMember returns a member prepared for editing: any legacy spouse is
// shown as the first entry of the spouse list.
func (s *FamilyService) GetMember(id string) (*entities.FamilyMember, error) {
	m := family.Find(s.site.Tree(), id)
	if m == nil {
		return nil, fmt.Errorf("member %q: %w", id, entities.ErrMemberNotFound)
	}
	return family.MigrateLegacySpouse(m), nil
}

// AddChild appends a placeholder child under parentID
func (s *FamilyService) AddChild(ctx context.Context, parentID string) (*ports.AddChildResponse, error) {
	var child *entities.FamilyMember
	data, err := s.site.Update(ctx, func(cp *entities.AppData) (*entities.AppData, error) {
		cp.FamilyTree, child = family.AddChild(cp.FamilyTree, parentID)
		if child == nil {
			return nil, fmt.Errorf("parent %q: %w", parentID, entities.ErrMemberNotFound)
		}
		return cp, nil
	})
	if err != nil {
		s.metrics.TreeMutation("add_child", metrics.ResultNoop)
		return nil, err
	}

	s.metrics.TreeMutation("add_child", metrics.ResultOK)
	s.logger.LogAdminAction("add_child", map[string]interface{}{
		"parent_id": parentID,
		"child_id":  child.ID,
	})
	return &ports.AddChildResponse{Child: child, Tree: data.FamilyTree}, nil
}

// UpdateMember replaces every editable field of a member. Children and
// generation are carried over from the stored node; legacy spouse fields are
// cleared because the request's spouse list is canonical.
func (s *FamilyService) UpdateMember(ctx context.Context, id string, req ports.UpdateMemberRequest) (*entities.FamilyMember, error) {
	var updated *entities.FamilyMember
	_, err := s.site.Update(ctx, func(cp *entities.AppData) (*entities.AppData, error) {
		stored := family.Find(cp.FamilyTree, id)
		if stored == nil {
			return nil, fmt.Errorf("member %q: %w", id, entities.ErrMemberNotFound)
		}
		updated = memberFromRequest(stored, req)
		cp.FamilyTree = family.UpdateMember(cp.FamilyTree, updated)
		return cp, nil
	})
	if err != nil {
		s.metrics.TreeMutation("update", metrics.ResultNoop)
		return nil, err
	}

	s.metrics.TreeMutation("update", metrics.ResultOK)
	s.logger.LogAdminAction("update_member", map[string]interface{}{"member_id": id})
	return updated, nil
}

// DeleteMember prunes a member and all of its descendants
func (s *FamilyService) DeleteMember(ctx context.Context, id string) error {
	_, err := s.site.Update(ctx, func(cp *entities.AppData) (*entities.AppData, error) {
		if !family.Contains(cp.FamilyTree, id) {
			return nil, fmt.Errorf("member %q: %w", id, entities.ErrMemberNotFound)
		}
		tree, err := family.DeleteMember(cp.FamilyTree, id)
		if err != nil {
			return nil, err
		}
		cp.FamilyTree = tree
		return cp, nil
	})
	if err != nil {
		s.metrics.TreeMutation("delete", metrics.ResultNoop)
		return err
	}

	s.metrics.TreeMutation("delete", metrics.ResultOK)
	s.logger.LogAdminAction("delete_member", map[string]interface{}{"member_id": id})
	return nil
}

// Anniversaries lists the death anniversaries derived from the current tree
func (s *FamilyService) Anniversaries() []entities.EventItem {
	return family.DeathAnniversaries(s.site.Tree())
}

func memberFromRequest(stored *entities.FamilyMember, req ports.UpdateMemberRequest) *entities.FamilyMember {
	m := &entities.FamilyMember{
		ID:             stored.ID,
		Generation:     stored.Generation,
		Children:       stored.Children,
		Name:           req.Name,
		IsMale:         req.IsMale,
		BirthDate:      req.BirthDate,
		DeathDate:      req.DeathDate,
		LunarDeathDate: req.LunarDeathDate,
		RestingPlace:   req.RestingPlace,
		Bio:            req.Bio,
		Title:          req.Title,
		Nickname:       req.Nickname,
		OtherParentID:  req.OtherParentID,
		Spouses:        make([]entities.Spouse, 0, len(req.Spouses)),
	}
	for _, sp := range req.Spouses {
		spID := sp.ID
		if spID == "" {
			spID = "s-" + uuid.NewString()
		}
		m.Spouses = append(m.Spouses, entities.Spouse{
			ID:           spID,
			Name:         sp.Name,
			BirthDate:    sp.BirthDate,
			DeathDate:    sp.DeathDate,
			RestingPlace: sp.RestingPlace,
		})
	}
	return m
}

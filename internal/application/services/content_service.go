package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/domain/family"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/ports"
)

const solarDateLayout = "2006-01-02"

// ContentService edits news, authored events and the free-text sections.
type ContentService struct {
	site   *SiteService
	logger *logger.Logger
	now    func() time.Time
}

// NewContentService creates a new content service
func NewContentService(site *SiteService, logger *logger.Logger) *ContentService {
	return &ContentService{
		site:   site,
		logger: logger.WithComponent("content"),
		now:    time.Now,
	}
}

// News returns the news list, newest first
func (s *ContentService) News() []entities.NewsItem {
	return s.site.Data().News
}

// UpsertNews replaces the item with the same id, or prepends a new one.
func (s *ContentService) UpsertNews(ctx context.Context, req ports.NewsRequest) (*entities.NewsItem, error) {
	item := entities.NewsItem{
		ID:       req.ID,
		Title:    req.Title,
		Date:     req.Date,
		Summary:  req.Summary,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	if item.Date == "" {
		item.Date = s.now().Format(solarDateLayout)
	}

	_, err := s.site.Update(ctx, func(cp *entities.AppData) (*entities.AppData, error) {
		news := make([]entities.NewsItem, 0, len(cp.News)+1)
		replaced := false
		for _, n := range cp.News {
			if item.ID != "" && n.ID == item.ID {
				news = append(news, item)
				replaced = true
				continue
			}
			news = append(news, n)
		}
		if !replaced {
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			news = append([]entities.NewsItem{item}, news...)
		}
		cp.News = news
		return cp, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogAdminAction("upsert_news", map[string]interface{}{"news_id": item.ID})
	return &item, nil
}

// DeleteNews removes a news item
func (s *ContentService) DeleteNews(ctx context.Context, id string) error {
	_, err := s.site.Update(ctx, func(cp *entities.AppData) (*entities.AppData, error) {
		news := make([]entities.NewsItem, 0, len(cp.News))
		for _, n := range cp.News {
			if n.ID != id {
				news = append(news, n)
			}
		}
		if len(news) == len(cp.News) {
			return nil, fmt.Errorf("news %q: %w", id, entities.ErrNewsNotFound)
		}
		cp.News = news
		return cp, nil
	})
	if err != nil {
		return err
	}
	s.logger.LogAdminAction("delete_news", map[string]interface{}{"news_id": id})
	return nil
}

// AddEvent appends an authored calendar event
func (s *ContentService) AddEvent(ctx context.Context, req ports.EventRequest) (*entities.EventItem, error) {
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%q: %w", req.Type, entities.ErrInvalidEvent)
	}
	item := entities.EventItem{
		ID:             "e-" + uuid.NewString(),
		Title:          req.Title,
		SolarDate:      req.SolarDate,
		LunarDateLabel: req.LunarDateLabel,
		Type:           req.Type,
		Description:    req.Description,
	}

	_, err := s.site.Update(ctx, func(cp *entities.AppData) (*entities.AppData, error) {
		events := make([]entities.EventItem, 0, len(cp.Events)+1)
		events = append(events, cp.Events...)
		cp.Events = append(events, item)
		return cp, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogAdminAction("add_event", map[string]interface{}{"event_id": item.ID})
	return &item, nil
}

// DeleteEvent removes an authored event. Derived anniversaries are rejected.
func (s *ContentService) DeleteEvent(ctx context.Context, id string) error {
	if family.IsDerivedEventID(id) {
		return fmt.Errorf("event %q: %w", id, entities.ErrDerivedEvent)
	}
	_, err := s.site.Update(ctx, func(cp *entities.AppData) (*entities.AppData, error) {
		events := make([]entities.EventItem, 0, len(cp.Events))
		for _, e := range cp.Events {
			if e.ID != id {
				events = append(events, e)
			}
		}
		if len(events) == len(cp.Events) {
			return nil, fmt.Errorf("event %q: %w", id, entities.ErrEventNotFound)
		}
		cp.Events = events
		return cp, nil
	})
	if err != nil {
		return err
	}
	s.logger.LogAdminAction("delete_event", map[string]interface{}{"event_id": id})
	return nil
}

// PatchContent updates the free-text sections present in patch
func (s *ContentService) PatchContent(ctx context.Context, patch ports.ContentPatch) (*entities.AppData, error) {
	if patch.Theme != nil && !patch.Theme.IsValid() {
		return nil, fmt.Errorf("%q: %w", *patch.Theme, entities.ErrInvalidTheme)
	}

	data, err := s.site.Update(ctx, func(cp *entities.AppData) (*entities.AppData, error) {
		if patch.BannerURL != nil {
			cp.BannerURL = *patch.BannerURL
		}
		if patch.Address != nil {
			cp.Address = *patch.Address
		}
		if patch.HistoryText != nil {
			cp.HistoryText = *patch.HistoryText
		}
		if patch.AncestralHouseText != nil {
			cp.AncestralHouseText = *patch.AncestralHouseText
		}
		if patch.Regulations != nil {
			cp.Regulations = append([]string{}, (*patch.Regulations)...)
		}
		if patch.ClanName != nil {
			cp.ClanName = *patch.ClanName
		}
		if patch.Theme != nil {
			cp.Theme = *patch.Theme
		}
		return cp, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogAdminAction("patch_content", nil)
	return data, nil
}

// Calendar merges authored events with the derived anniversaries and splits
// out today's and upcoming events by solar date.
func (s *ContentService) Calendar() ports.Calendar {
	data := s.site.Data()
	all := family.MergeEvents(data.Events, data.FamilyTree)
	today := s.now().Format(solarDateLayout)

	cal := ports.Calendar{
		Today:    []entities.EventItem{},
		Upcoming: []entities.EventItem{},
		All:      all,
	}
	for _, e := range all {
		if e.SolarDate == "" {
			continue
		}
		switch {
		case e.SolarDate == today:
			cal.Today = append(cal.Today, e)
		case e.SolarDate > today:
			cal.Upcoming = append(cal.Upcoming, e)
		}
	}
	sort.SliceStable(cal.Upcoming, func(i, j int) bool {
		return cal.Upcoming[i].SolarDate < cal.Upcoming[j].SolarDate
	})
	return cal
}

package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/infrastructure/config"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/infrastructure/metrics"
	"github.com/giapha/core/internal/ports"
	"github.com/giapha/core/internal/treeview"
)

// ViewService keeps server-side tree view sessions. Idle sessions expire and
// the least recently used one is evicted when the cache is full.
type ViewService struct {
	site     *SiteService
	exporter *ExportService
	opts     treeview.Options
	sessions *expirable.LRU[string, *treeview.View]
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// NewViewService creates a new view service
func NewViewService(site *SiteService, exporter *ExportService, opts treeview.Options, cfg config.ViewsConfig, logger *logger.Logger, m *metrics.Metrics) *ViewService {
	size := cfg.MaxSessions
	if size <= 0 {
		size = 256
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	s := &ViewService{
		site:     site,
		exporter: exporter,
		opts:     opts,
		logger:   logger.WithComponent("views"),
		metrics:  m,
	}
	s.sessions = expirable.NewLRU[string, *treeview.View](size, func(id string, _ *treeview.View) {
		s.logger.Debugw("View session closed", "view_id", id)
	}, ttl)
	return s
}

// Create opens a view sized to the client's container and resets it.
func (s *ViewService) Create(req ports.CreateViewRequest) *ports.ViewResponse {
	v := treeview.NewView(s.opts)
	v.Resize(req.Width, req.Height)
	v.Reset(s.site.Tree())

	id := uuid.NewString()
	s.sessions.Add(id, v)
	s.metrics.SetViewSessions(s.sessions.Len())
	return s.respond(id, v, true)
}

// Get returns a session's state and current layout.
func (s *ViewService) Get(id string) (*ports.ViewResponse, error) {
	v, err := s.view(id)
	if err != nil {
		return nil, err
	}
	return s.respond(id, v, true), nil
}

// Delete closes a session.
func (s *ViewService) Delete(id string) error {
	if !s.sessions.Remove(id) {
		return fmt.Errorf("view %q: %w", id, entities.ErrViewNotFound)
	}
	s.metrics.SetViewSessions(s.sessions.Len())
	return nil
}

// Resize records the client's container size.
func (s *ViewService) Resize(id string, req ports.ResizeViewRequest) (*ports.ViewResponse, error) {
	return s.apply(id, true, func(v *treeview.View) {
		v.Resize(req.Width, req.Height)
	})
}

// Search sets the live query; matching branches are expanded.
func (s *ViewService) Search(id string, req ports.SearchRequest) (*ports.ViewResponse, error) {
	return s.apply(id, true, func(v *treeview.View) {
		v.SetSearch(s.site.Tree(), req.Query)
	})
}

// Toggle flips one member's expand state.
func (s *ViewService) Toggle(id, memberID string) (*ports.ViewResponse, error) {
	return s.apply(id, true, func(v *treeview.View) {
		v.Toggle(memberID)
	})
}

// Gesture feeds one pointer or touch event. The layout is left out of the
// response because gestures only move the viewport.
func (s *ViewService) Gesture(id string, g treeview.Gesture) (*ports.ViewResponse, error) {
	return s.apply(id, false, func(v *treeview.View) {
		v.HandleGesture(g)
	})
}

// Wheel scrolls, or zooms when the modifier is held.
func (s *ViewService) Wheel(id string, req ports.WheelRequest) (*ports.ViewResponse, error) {
	return s.apply(id, false, func(v *treeview.View) {
		v.Wheel(treeview.Point{X: req.X, Y: req.Y}, req.DeltaX, req.DeltaY, req.Modifier)
	})
}

// Zoom steps in or out around the centre, or jumps to an absolute scale
// anchored at the given point (the centre when none is given).
func (s *ViewService) Zoom(id string, req ports.ZoomRequest) (*ports.ViewResponse, error) {
	return s.apply(id, false, func(v *treeview.View) {
		if req.Scale != nil {
			vp := v.State().Viewport
			p := vp.Center()
			if req.X != nil && req.Y != nil {
				p = treeview.Point{X: *req.X, Y: *req.Y}
			}
			v.ZoomTo(p, *req.Scale)
			return
		}
		switch req.Direction {
		case "in":
			v.ZoomIn()
		case "out":
			v.ZoomOut()
		}
	})
}

// Reset restores the default scale for the container width.
func (s *ViewService) Reset(id string) (*ports.ViewResponse, error) {
	return s.apply(id, true, func(v *treeview.View) {
		v.Reset(s.site.Tree())
	})
}

// Snapshot renders the session's tree to PNG with its expand and search
// state. The session's scale is unchanged afterwards.
func (s *ViewService) Snapshot(id string) (*Export, error) {
	v, err := s.view(id)
	if err != nil {
		return nil, err
	}
	return s.exporter.Export(FormatPNG, v)
}

func (s *ViewService) view(id string) (*treeview.View, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		s.metrics.SetViewSessions(s.sessions.Len())
		return nil, fmt.Errorf("view %q: %w", id, entities.ErrViewNotFound)
	}
	return v, nil
}

func (s *ViewService) apply(id string, withLayout bool, fn func(v *treeview.View)) (*ports.ViewResponse, error) {
	v, err := s.view(id)
	if err != nil {
		return nil, err
	}
	fn(v)
	return s.respond(id, v, withLayout), nil
}

func (s *ViewService) respond(id string, v *treeview.View, withLayout bool) *ports.ViewResponse {
	resp := &ports.ViewResponse{ID: id}
	if withLayout {
		l := v.Render(s.site.Tree())
		resp.Layout = &l
	}
	resp.State = v.State()
	return resp
}

// Len reports the number of live sessions.
func (s *ViewService) Len() int {
	return s.sessions.Len()
}

package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/domain/family"
	"github.com/giapha/core/internal/infrastructure/config"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/infrastructure/metrics"
	"github.com/giapha/core/internal/ports"
)

// SyncService pulls the shared document into the site state. Each sync takes
// a sequence number when it starts; a result is applied only if no later
// sync has been applied first, so a slow fetch cannot overwrite a newer one.
type SyncService struct {
	site        *SiteService
	gateway     *Gateway
	defaultLink string
	started     atomic.Uint64
	applyMu     sync.Mutex
	applied     uint64
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

// NewSyncService creates a new sync service
func NewSyncService(site *SiteService, gateway *Gateway, cfg config.RemoteConfig, logger *logger.Logger, m *metrics.Metrics) *SyncService {
	return &SyncService{
		site:        site,
		gateway:     gateway,
		defaultLink: cfg.URL,
		logger:      logger.WithComponent("sync"),
		metrics:     m,
	}
}

// Settings returns the effective remote link.
func (s *SyncService) Settings(ctx context.Context) ports.SyncSettings {
	if link := s.gateway.LoadCloudLink(ctx); link != "" {
		return ports.SyncSettings{URL: link, IsDefault: link == s.defaultLink}
	}
	return ports.SyncSettings{URL: s.defaultLink, IsDefault: true}
}

// SetLink persists a new remote link.
func (s *SyncService) SetLink(ctx context.Context, link string) (ports.SyncSettings, error) {
	link = strings.TrimSpace(link)
	if !s.gateway.SaveCloudLink(ctx, link) {
		return ports.SyncSettings{}, errPersist
	}
	s.logger.LogAdminAction("set_cloud_link", map[string]interface{}{"url": link})
	return ports.SyncSettings{URL: link, IsDefault: link == s.defaultLink}, nil
}

// Sync fetches the remote document and replaces the site state with it. An
// empty override uses the configured link. On failure the state is left as
// it was and entities.ErrNoRemoteData is returned.
func (s *SyncService) Sync(ctx context.Context, override string) (*ports.SyncResult, error) {
	locator := strings.TrimSpace(override)
	if locator == "" {
		locator = s.Settings(ctx).URL
	}
	if locator == "" {
		s.metrics.RemoteSync(metrics.ResultError)
		return nil, entities.ErrNoRemoteLocator
	}

	seq := s.started.Add(1)
	data := s.gateway.FetchRemote(ctx, locator)
	if data == nil {
		s.metrics.RemoteSync(metrics.ResultError)
		return nil, fmt.Errorf("%s: %w", locator, entities.ErrNoRemoteData)
	}

	s.applyMu.Lock()
	if s.applied > seq {
		applied := s.applied
		s.applyMu.Unlock()
		s.metrics.RemoteSync(metrics.ResultStale)
		s.logger.Infow("Discarding stale sync result", "sequence", seq, "applied", applied)
		return &ports.SyncResult{Applied: false, Sequence: seq, LastUpdated: s.site.Data().LastUpdated}, nil
	}
	s.applied = seq
	stored := s.site.Replace(ctx, data)
	s.applyMu.Unlock()

	s.metrics.RemoteSync(metrics.ResultOK)
	s.logger.Infow("Synced from remote document", "sequence", seq, "members", family.Count(stored.FamilyTree))
	return &ports.SyncResult{
		Applied:     true,
		Sequence:    seq,
		LastUpdated: stored.LastUpdated,
		Members:     family.Count(stored.FamilyTree),
	}, nil
}

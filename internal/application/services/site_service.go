package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/infrastructure/logger"
)

// Load sources reported by SiteService.Load.
const (
	SourceLocal = "local"
	SourceSeed  = "seed"
)

var errPersist = errors.New("site data could not be persisted")

// SiteService owns the in-memory site state. Readers get the current blob
// without locking; writers are serialised and every replacement is stamped
// and persisted.
type SiteService struct {
	mu      sync.Mutex
	current atomic.Pointer[entities.AppData]
	gateway *Gateway
	logger  *logger.Logger
	now     func() time.Time
}

// NewSiteService creates a site service holding the seed data until Load runs.
func NewSiteService(gateway *Gateway, logger *logger.Logger) *SiteService {
	s := &SiteService{
		gateway: gateway,
		logger:  logger.WithComponent("site"),
		now:     time.Now,
	}
	s.current.Store(entities.SeedAppData(s.now()))
	return s
}

// Load reads the stored blob, falling back to the seed data.
func (s *SiteService) Load(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data := s.gateway.LoadLocal(ctx); data != nil {
		s.current.Store(data)
		s.logger.Infow("Loaded site data", "source", SourceLocal, "last_updated", data.LastUpdated)
		return SourceLocal
	}
	s.current.Store(entities.SeedAppData(s.now()))
	s.logger.Infow("Loaded site data", "source", SourceSeed)
	return SourceSeed
}

// Seed replaces the state with the seed data. Without force an existing
// stored blob is kept.
func (s *SiteService) Seed(ctx context.Context, force bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && s.gateway.LoadLocal(ctx) != nil {
		return false, nil
	}
	data := entities.SeedAppData(s.now())
	s.current.Store(data)
	if !s.gateway.SaveLocal(ctx, data) {
		return true, errPersist
	}
	return true, nil
}

// Data returns the current blob. Callers must treat it as read-only.
func (s *SiteService) Data() *entities.AppData {
	return s.current.Load()
}

// Tree returns the current family tree.
func (s *SiteService) Tree() *entities.FamilyMember {
	return s.current.Load().FamilyTree
}

// Update applies fn to a shallow copy of the current blob. fn must replace
// any slice or tree it changes instead of editing it in place. A nil result
// from fn leaves the state untouched.
func (s *SiteService) Update(ctx context.Context, fn func(cp *entities.AppData) (*entities.AppData, error)) (*entities.AppData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *s.current.Load()
	next, err := fn(&cp)
	if err != nil || next == nil {
		return s.current.Load(), err
	}
	return s.publish(ctx, next), nil
}

// Replace swaps in data wholesale, as a remote sync does.
func (s *SiteService) Replace(ctx context.Context, data *entities.AppData) *entities.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publish(ctx, data)
}

func (s *SiteService) publish(ctx context.Context, data *entities.AppData) *entities.AppData {
	stamped := data.Touch(s.now())
	s.current.Store(stamped)
	// Storage failures are logged by the gateway; memory stays authoritative.
	s.gateway.SaveLocal(ctx, stamped)
	return stamped
}

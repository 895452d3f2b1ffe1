package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/domain/family"
	"github.com/giapha/core/internal/infrastructure/config"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/ports"
)

// Gateway is the best-effort persistence boundary. None of its methods
// return storage or network errors: failures are logged and reported as
// "nothing there".
type Gateway struct {
	store   ports.BlobStore
	remote  ports.RemoteSource
	dataKey string
	linkKey string
	logger  *logger.Logger
}

// NewGateway creates a new persistence gateway
func NewGateway(store ports.BlobStore, remote ports.RemoteSource, cfg config.StorageConfig, logger *logger.Logger) *Gateway {
	dataKey, linkKey := cfg.DataKey, cfg.LinkKey
	if dataKey == "" {
		dataKey = "giapha_le_data"
	}
	if linkKey == "" {
		linkKey = "cloud_data_link"
	}
	return &Gateway{
		store:   store,
		remote:  remote,
		dataKey: dataKey,
		linkKey: linkKey,
		logger:  logger.WithComponent("gateway"),
	}
}

// SaveLocal writes the blob. It reports success but never fails the caller.
func (g *Gateway) SaveLocal(ctx context.Context, data *entities.AppData) bool {
	b, err := json.Marshal(data)
	if err != nil {
		g.logger.WithError(err).Errorw("Failed to encode site data")
		return false
	}
	if err := g.store.Put(ctx, g.dataKey, b); err != nil {
		g.logger.WithError(err).Errorw("Failed to save site data", "driver", g.store.Driver())
		return false
	}
	return true
}

// LoadLocal reads the blob. Missing or malformed data yields nil.
func (g *Gateway) LoadLocal(ctx context.Context) *entities.AppData {
	b, err := g.store.Get(ctx, g.dataKey)
	if err != nil {
		if !errors.Is(err, ports.ErrBlobNotFound) {
			g.logger.WithError(err).Warnw("Failed to load site data", "driver", g.store.Driver())
		}
		return nil
	}
	data, err := decodeAppData(b)
	if err != nil {
		g.logger.WithError(err).Warnw("Stored site data is malformed")
		return nil
	}
	return data
}

// FetchRemote downloads the shared document. Any failure yields nil.
func (g *Gateway) FetchRemote(ctx context.Context, locator string) *entities.AppData {
	if g.remote == nil || strings.TrimSpace(locator) == "" {
		return nil
	}
	b, err := g.remote.Fetch(ctx, locator)
	if err != nil {
		g.logger.WithError(err).Warnw("Remote fetch failed", "locator", locator)
		return nil
	}
	data, err := decodeAppData(b)
	if err != nil {
		g.logger.WithError(err).Warnw("Remote document is malformed", "locator", locator)
		return nil
	}
	return data
}

// SaveCloudLink persists the admin-configured remote locator.
func (g *Gateway) SaveCloudLink(ctx context.Context, link string) bool {
	b, err := json.Marshal(link)
	if err != nil {
		return false
	}
	if err := g.store.Put(ctx, g.linkKey, b); err != nil {
		g.logger.WithError(err).Errorw("Failed to save cloud link")
		return false
	}
	return true
}

// LoadCloudLink returns the persisted remote locator, or "" when none is set.
func (g *Gateway) LoadCloudLink(ctx context.Context) string {
	b, err := g.store.Get(ctx, g.linkKey)
	if err != nil {
		if !errors.Is(err, ports.ErrBlobNotFound) {
			g.logger.WithError(err).Warnw("Failed to load cloud link")
		}
		return ""
	}
	var link string
	if err := json.Unmarshal(b, &link); err != nil {
		// Older stores kept the raw string.
		return strings.TrimSpace(string(b))
	}
	return link
}

// Ping checks the underlying store.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.store.Ping(ctx)
}

// Stats returns store statistics, or nil when the store has none.
func (g *Gateway) Stats() map[string]interface{} {
	if r, ok := g.store.(ports.StatsReporter); ok {
		return r.Stats()
	}
	return nil
}

// Driver names the underlying store.
func (g *Gateway) Driver() string {
	return g.store.Driver()
}

var errNoTree = errors.New("blob has no family tree")

// decodeAppData parses a blob and brings legacy spouse fields into the
// canonical spouse list.
func decodeAppData(b []byte) (*entities.AppData, error) {
	var data entities.AppData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	if !data.Valid() {
		return nil, errNoTree
	}
	data.FamilyTree = family.NormalizeTree(data.FamilyTree)
	if data.News == nil {
		data.News = []entities.NewsItem{}
	}
	if data.Events == nil {
		data.Events = []entities.EventItem{}
	}
	if data.Regulations == nil {
		data.Regulations = []string{}
	}
	// Derived anniversaries are never persisted; drop any that leaked in.
	authored := data.Events[:0:0]
	for _, e := range data.Events {
		if !family.IsDerivedEventID(e.ID) {
			authored = append(authored, e)
		}
	}
	data.Events = authored
	return &data, nil
}

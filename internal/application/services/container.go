package services

import (
	"github.com/giapha/core/internal/infrastructure/config"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/infrastructure/metrics"
	"github.com/giapha/core/internal/ports"
)

// Container wires every application service around one site state.
type Container struct {
	Gateway *Gateway
	Site    *SiteService
	Family  *FamilyService
	Content *ContentService
	Sync    *SyncService
	Export  *ExportService
	Views   *ViewService
	Auth    *AuthService
}

// NewContainer builds the services. Call Site.Load before serving.
func NewContainer(cfg *config.Config, store ports.BlobStore, remote ports.RemoteSource, log *logger.Logger, m *metrics.Metrics) *Container {
	opts := cfg.Tree.Options()

	gateway := NewGateway(store, remote, cfg.Storage, log)
	site := NewSiteService(gateway, log)
	exporter := NewExportService(site, opts, log, m)

	return &Container{
		Gateway: gateway,
		Site:    site,
		Family:  NewFamilyService(site, log, m),
		Content: NewContentService(site, log),
		Sync:    NewSyncService(site, gateway, cfg.Remote, log, m),
		Export:  exporter,
		Views:   NewViewService(site, exporter, opts, cfg.Views, log, m),
		Auth:    NewAuthService(cfg.Admin, cfg.JWT, log),
	}
}

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giapha/core/internal/application/services"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/ports"
)

// SyncHandler handles the shared-document sync
type SyncHandler struct {
	sync   *services.SyncService
	logger *logger.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(sync *services.SyncService, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		sync:   sync,
		logger: logger,
	}
}

// SyncRequest overrides the stored link for a single sync.
type SyncRequest struct {
	URL string `json:"url" validate:"omitempty,url,max=2000"`
}

// GetSettings godoc
// @Summary Get the remote document link
// @Tags sync
// @Produce json
// @Success 200 {object} ports.SyncSettings
// @Security BearerAuth
// @Router /sync/settings [get]
func (h *SyncHandler) GetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sync.Settings(c.Request().Context()))
}

// UpdateSettings godoc
// @Summary Change the remote document link
// @Tags sync
// @Accept json
// @Produce json
// @Param request body ports.SyncSettingsRequest true "Document link"
// @Success 200 {object} ports.SyncSettings
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /sync/settings [put]
func (h *SyncHandler) UpdateSettings(c echo.Context) error {
	var req ports.SyncSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	settings, err := h.sync.SetLink(c.Request().Context(), req.URL)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

// Sync godoc
// @Summary Pull the remote document
// @Description Replaces the site with the remote document. On failure the site is left unchanged.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body SyncRequest false "Optional one-off document link"
// @Success 200 {object} ports.SyncResult
// @Failure 502 {object} ErrorResponse "Could not sync"
// @Security BearerAuth
// @Router /sync [post]
func (h *SyncHandler) Sync(c echo.Context) error {
	var req SyncRequest
	if c.Request().ContentLength > 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}
	result, err := h.sync.Sync(c.Request().Context(), req.URL)
	if err != nil {
		h.logger.Warnw("Sync failed", "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

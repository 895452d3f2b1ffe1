package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giapha/core/internal/application/services"
	"github.com/giapha/core/internal/infrastructure/logger"
)

// ExportHandler serves tree downloads
type ExportHandler struct {
	export *services.ExportService
	logger *logger.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(export *services.ExportService, logger *logger.Logger) *ExportHandler {
	return &ExportHandler{
		export: export,
		logger: logger,
	}
}

// TreeJSON godoc
// @Summary Download the tree as JSON
// @Tags export
// @Produce json
// @Success 200 {file} file
// @Security BearerAuth
// @Router /export/tree.json [get]
func (h *ExportHandler) TreeJSON(c echo.Context) error {
	return h.serve(c, services.FormatJSON)
}

// TreeCSV godoc
// @Summary Download the tree as CSV
// @Description One row per member, UTF-8 with a byte-order mark
// @Tags export
// @Produce text/csv
// @Success 200 {file} file
// @Security BearerAuth
// @Router /export/tree.csv [get]
func (h *ExportHandler) TreeCSV(c echo.Context) error {
	return h.serve(c, services.FormatCSV)
}

// TreePNG godoc
// @Summary Download the tree as a PNG image
// @Tags export
// @Produce image/png
// @Success 200 {file} file
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /export/tree.png [get]
func (h *ExportHandler) TreePNG(c echo.Context) error {
	return h.serve(c, services.FormatPNG)
}

// Backup godoc
// @Summary Download a full backup of the site
// @Tags export
// @Produce json
// @Success 200 {file} file
// @Security BearerAuth
// @Router /export/backup.json [get]
func (h *ExportHandler) Backup(c echo.Context) error {
	return h.serve(c, services.FormatBackup)
}

func (h *ExportHandler) serve(c echo.Context, format string) error {
	out, err := h.export.Export(format, nil)
	if err != nil {
		return toHTTPError(err)
	}
	return sendExport(c, out)
}

func sendExport(c echo.Context, out *services.Export) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", out.Filename))
	return c.Blob(http.StatusOK, out.ContentType, out.Body)
}

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giapha/core/internal/application/services"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/ports"
)

// ContentHandler handles news, the events calendar and the free-text sections
type ContentHandler struct {
	content *services.ContentService
	logger  *logger.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(content *services.ContentService, logger *logger.Logger) *ContentHandler {
	return &ContentHandler{
		content: content,
		logger:  logger,
	}
}

// ListNews godoc
// @Summary List news, newest first
// @Tags news
// @Produce json
// @Success 200 {array} entities.NewsItem
// @Router /news [get]
func (h *ContentHandler) ListNews(c echo.Context) error {
	return c.JSON(http.StatusOK, h.content.News())
}

// UpsertNews godoc
// @Summary Create or replace a news item
// @Description Items without a known id are created and placed first
// @Tags news
// @Accept json
// @Produce json
// @Param request body ports.NewsRequest true "News item"
// @Success 200 {object} entities.NewsItem
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /news [put]
func (h *ContentHandler) UpsertNews(c echo.Context) error {
	var req ports.NewsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	item, err := h.content.UpsertNews(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteNews godoc
// @Summary Delete a news item
// @Tags news
// @Produce json
// @Param id path string true "News ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /news/{id} [delete]
func (h *ContentHandler) DeleteNews(c echo.Context) error {
	if err := h.content.DeleteNews(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "News deleted"})
}

// GetCalendar godoc
// @Summary Get the events calendar
// @Description Authored events merged with the death anniversaries derived from the tree
// @Tags events
// @Produce json
// @Success 200 {object} ports.Calendar
// @Router /events [get]
func (h *ContentHandler) GetCalendar(c echo.Context) error {
	return c.JSON(http.StatusOK, h.content.Calendar())
}

// AddEvent godoc
// @Summary Add a calendar event
// @Tags events
// @Accept json
// @Produce json
// @Param request body ports.EventRequest true "Event"
// @Success 201 {object} entities.EventItem
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /events [post]
func (h *ContentHandler) AddEvent(c echo.Context) error {
	var req ports.EventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	item, err := h.content.AddEvent(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

// DeleteEvent godoc
// @Summary Delete an authored event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Derived anniversaries cannot be deleted"
// @Security BearerAuth
// @Router /events/{id} [delete]
func (h *ContentHandler) DeleteEvent(c echo.Context) error {
	if err := h.content.DeleteEvent(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Event deleted"})
}

// PatchContent godoc
// @Summary Update the site texts
// @Description Only the fields present in the body are changed
// @Tags site
// @Accept json
// @Produce json
// @Param request body ports.ContentPatch true "Changed fields"
// @Success 200 {object} entities.AppData
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /content [patch]
func (h *ContentHandler) PatchContent(c echo.Context) error {
	var req ports.ContentPatch
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	data, err := h.content.PatchContent(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, data)
}

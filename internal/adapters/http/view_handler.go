package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giapha/core/internal/application/services"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/ports"
	"github.com/giapha/core/internal/treeview"
)

// ViewHandler drives server-side tree view sessions
type ViewHandler struct {
	views  *services.ViewService
	logger *logger.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(views *services.ViewService, logger *logger.Logger) *ViewHandler {
	return &ViewHandler{
		views:  views,
		logger: logger,
	}
}

// CreateView godoc
// @Summary Open a tree view
// @Description Opens a view sized to the client's container at the default scale
// @Tags views
// @Accept json
// @Produce json
// @Param request body ports.CreateViewRequest true "Container size"
// @Success 201 {object} ports.ViewResponse
// @Failure 400 {object} ErrorResponse
// @Router /views [post]
func (h *ViewHandler) CreateView(c echo.Context) error {
	var req ports.CreateViewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.views.Create(req))
}

// GetView godoc
// @Summary Get a view's state and layout
// @Tags views
// @Produce json
// @Param id path string true "View ID"
// @Success 200 {object} ports.ViewResponse
// @Failure 404 {object} ErrorResponse
// @Router /views/{id} [get]
func (h *ViewHandler) GetView(c echo.Context) error {
	resp, err := h.views.Get(c.Param("id"))
	return h.reply(c, resp, err)
}

// DeleteView godoc
// @Summary Close a view
// @Tags views
// @Param id path string true "View ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /views/{id} [delete]
func (h *ViewHandler) DeleteView(c echo.Context) error {
	if err := h.views.Delete(c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Resize godoc
// @Summary Report the container size
// @Tags views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param request body ports.ResizeViewRequest true "Container size"
// @Success 200 {object} ports.ViewResponse
// @Router /views/{id}/size [put]
func (h *ViewHandler) Resize(c echo.Context) error {
	var req ports.ResizeViewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resp, err := h.views.Resize(c.Param("id"), req)
	return h.reply(c, resp, err)
}

// Search godoc
// @Summary Set the live search query
// @Description Branches containing a match are expanded
// @Tags views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param request body ports.SearchRequest true "Query"
// @Success 200 {object} ports.ViewResponse
// @Router /views/{id}/search [put]
func (h *ViewHandler) Search(c echo.Context) error {
	var req ports.SearchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resp, err := h.views.Search(c.Param("id"), req)
	return h.reply(c, resp, err)
}

// Toggle godoc
// @Summary Expand or collapse a member
// @Tags views
// @Produce json
// @Param id path string true "View ID"
// @Param memberId path string true "Member ID"
// @Success 200 {object} ports.ViewResponse
// @Router /views/{id}/toggle/{memberId} [post]
func (h *ViewHandler) Toggle(c echo.Context) error {
	resp, err := h.views.Toggle(c.Param("id"), c.Param("memberId"))
	return h.reply(c, resp, err)
}

// Gesture godoc
// @Summary Feed a pointer or touch event
// @Description One point drags, two points pinch. Moves beyond the frame budget are dropped.
// @Tags views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param request body treeview.Gesture true "Gesture"
// @Success 200 {object} ports.ViewResponse
// @Router /views/{id}/gestures [post]
func (h *ViewHandler) Gesture(c echo.Context) error {
	var req treeview.Gesture
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resp, err := h.views.Gesture(c.Param("id"), req)
	return h.reply(c, resp, err)
}

// Wheel godoc
// @Summary Feed a wheel event
// @Description Scrolls, or zooms around the pointer when a modifier key is held
// @Tags views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param request body ports.WheelRequest true "Wheel event"
// @Success 200 {object} ports.ViewResponse
// @Router /views/{id}/wheel [post]
func (h *ViewHandler) Wheel(c echo.Context) error {
	var req ports.WheelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resp, err := h.views.Wheel(c.Param("id"), req)
	return h.reply(c, resp, err)
}

// Zoom godoc
// @Summary Zoom one step or to an absolute scale
// @Tags views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param request body ports.ZoomRequest true "Zoom"
// @Success 200 {object} ports.ViewResponse
// @Router /views/{id}/zoom [post]
func (h *ViewHandler) Zoom(c echo.Context) error {
	var req ports.ZoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resp, err := h.views.Zoom(c.Param("id"), req)
	return h.reply(c, resp, err)
}

// Reset godoc
// @Summary Reset zoom and centre the tree
// @Tags views
// @Produce json
// @Param id path string true "View ID"
// @Success 200 {object} ports.ViewResponse
// @Router /views/{id}/reset [post]
func (h *ViewHandler) Reset(c echo.Context) error {
	resp, err := h.views.Reset(c.Param("id"))
	return h.reply(c, resp, err)
}

// Snapshot godoc
// @Summary Download the view as a PNG image
// @Description Rendered at scale 1 with the view's expand state; the view's zoom is unchanged
// @Tags views
// @Produce image/png
// @Param id path string true "View ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /views/{id}/snapshot.png [get]
func (h *ViewHandler) Snapshot(c echo.Context) error {
	out, err := h.views.Snapshot(c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return sendExport(c, out)
}

func (h *ViewHandler) reply(c echo.Context, resp *ports.ViewResponse, err error) error {
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giapha/core/internal/application/services"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/ports"
)

// TreeHandler serves the site blob and the family tree editor
type TreeHandler struct {
	site   *services.SiteService
	family *services.FamilyService
	logger *logger.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(site *services.SiteService, family *services.FamilyService, logger *logger.Logger) *TreeHandler {
	return &TreeHandler{
		site:   site,
		family: family,
		logger: logger,
	}
}

// GetSite godoc
// @Summary Get the whole site
// @Description Returns the persisted site blob: tree, news, events and texts
// @Tags site
// @Produce json
// @Success 200 {object} entities.AppData
// @Router /site [get]
func (h *TreeHandler) GetSite(c echo.Context) error {
	return c.JSON(http.StatusOK, h.site.Data())
}

// GetTree godoc
// @Summary Get the family tree
// @Tags tree
// @Produce json
// @Success 200 {object} entities.FamilyMember
// @Router /tree [get]
func (h *TreeHandler) GetTree(c echo.Context) error {
	return c.JSON(http.StatusOK, h.family.Tree())
}

// GetMember godoc
// @Summary Get one member for editing
// @Description A legacy single spouse is returned as the first entry of spouses
// @Tags tree
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} entities.FamilyMember
// @Failure 404 {object} ErrorResponse
// @Router /tree/members/{id} [get]
func (h *TreeHandler) GetMember(c echo.Context) error {
	member, err := h.family.GetMember(c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, member)
}

// AddChild godoc
// @Summary Add a child
// @Description Appends a placeholder child one generation below the parent
// @Tags tree
// @Produce json
// @Param id path string true "Parent member ID"
// @Success 201 {object} ports.AddChildResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tree/members/{id}/children [post]
func (h *TreeHandler) AddChild(c echo.Context) error {
	resp, err := h.family.AddChild(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// UpdateMember godoc
// @Summary Replace a member's details
// @Description Every editable field is replaced; children and generation are kept
// @Tags tree
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body ports.UpdateMemberRequest true "Member details"
// @Success 200 {object} entities.FamilyMember
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /tree/members/{id} [put]
func (h *TreeHandler) UpdateMember(c echo.Context) error {
	var req ports.UpdateMemberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	member, err := h.family.UpdateMember(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, member)
}

// DeleteMember godoc
// @Summary Delete a member and their descendants
// @Tags tree
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "The founding ancestor cannot be deleted"
// @Security BearerAuth
// @Router /tree/members/{id} [delete]
func (h *TreeHandler) DeleteMember(c echo.Context) error {
	if err := h.family.DeleteMember(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Member deleted"})
}

// GetAnniversaries godoc
// @Summary List death anniversaries derived from the tree
// @Tags tree
// @Produce json
// @Success 200 {array} entities.EventItem
// @Router /tree/anniversaries [get]
func (h *TreeHandler) GetAnniversaries(c echo.Context) error {
	return c.JSON(http.StatusOK, h.family.Anniversaries())
}

package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/giapha/core/internal/application/services"
	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/ports"
)

// User-facing messages for errors the site shows as notifications.
const (
	MsgProtectedRoot   = "Không thể xóa Cụ Tổ của dòng họ!"
	MsgSyncFailed      = "Lỗi đồng bộ. Hãy đảm bảo Google Doc ở chế độ Công Khai!"
	MsgNoRemoteLocator = "Vui lòng cung cấp link Google Doc!"
	MsgExportFailed    = "Có lỗi xảy ra khi xuất ảnh. Vui lòng thử lại."
	MsgInvalidPassword = "Mật khẩu không đúng!"
	MsgDerivedEvent    = "Ngày giỗ được tính từ gia phả và không thể xóa trực tiếp."
)

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse documents the error body written by the server.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// toHTTPError maps domain errors onto status codes. Unknown errors become
// 500s and are logged by the server's error handler.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, entities.ErrMemberNotFound),
		errors.Is(err, entities.ErrNewsNotFound),
		errors.Is(err, entities.ErrEventNotFound),
		errors.Is(err, entities.ErrViewNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrProtectedRoot):
		return echo.NewHTTPError(http.StatusConflict, MsgProtectedRoot)
	case errors.Is(err, entities.ErrDerivedEvent):
		return echo.NewHTTPError(http.StatusConflict, MsgDerivedEvent)
	case errors.Is(err, entities.ErrInvalidEvent), errors.Is(err, entities.ErrInvalidTheme):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrNoRemoteLocator):
		return echo.NewHTTPError(http.StatusBadRequest, MsgNoRemoteLocator)
	case errors.Is(err, entities.ErrNoRemoteData):
		return echo.NewHTTPError(http.StatusBadGateway, MsgSyncFailed)
	case errors.Is(err, entities.ErrExportFailed):
		return echo.NewHTTPError(http.StatusInternalServerError, MsgExportFailed).SetInternal(err)
	case errors.Is(err, entities.ErrInvalidPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidPassword)
	}
	return err
}

// bindAndValidate decodes the request body into req and validates it.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// AuthHandler handles the admin content lock
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary Unlock the editor
// @Description Exchange the shared admin password for a short-lived token. This is a content lock, not access control.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ports.LoginRequest true "Admin password"
// @Success 200 {object} ports.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	response, err := h.authService.Login(req, c.RealIP())
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, response)
}

package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/giapha/core/internal/application/services"
)

const ctxRoleKey = "role"

// authMiddleware validates the bearer token handed out by the login endpoint
func (s *Server) authMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader || tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", c.RealIP(), map[string]interface{}{
					"error":    err.Error(),
					"endpoint": c.Request().URL.Path,
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ctxRoleKey, claims.Role)
			return next(c)
		}
	}
}

// requireRole checks the role set by authMiddleware
func (s *Server) requireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ctxRoleKey).(string)
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}

			s.logger.LogSecurityEvent("insufficient_permissions", c.RealIP(), map[string]interface{}{
				"required_roles": roles,
				"role":           role,
				"endpoint":       c.Request().URL.Path,
			})
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

package middleware

// identity.go holds the context keys the gate fills in and helpers for
// reading them back in handlers and other middleware.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributor-orders/internal/model"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// UserID returns the authenticated user id, or "" on unprotected routes.
func UserID(c echo.Context) string {
	s, _ := c.Get(ContextUserID).(string)
	return s
}

// Role returns the authenticated role, or "" on unprotected routes.
func Role(c echo.Context) model.Role {
	s, _ := c.Get(ContextRole).(string)
	return model.Role(s)
}

// currentUserID is the rate limit and request log view of the caller.
func currentUserID(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}

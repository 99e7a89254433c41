package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributor-orders/internal/middleware"
	"github.com/iliyamo/distributor-orders/internal/service"
)

// UserHandler serves /users. Records are addressed with ?id= rather
// than a path segment.
type UserHandler struct {
	Auth  *service.AuthService
	Users *service.UserService
}

// NewUserHandler needs the auth service for registration and the user
// service for everything else.
func NewUserHandler(a *service.AuthService, u *service.UserService) *UserHandler {
	return &UserHandler{Auth: a, Users: u}
}

func actor(c echo.Context) service.Actor {
	return service.Actor{UserID: middleware.UserID(c), Role: middleware.Role(c)}
}

func queryID(c echo.Context) (string, error) {
	id := strings.TrimSpace(c.QueryParam("id"))
	if id == "" {
		return "", &service.ValidationError{Msg: "user id is required"}
	}
	return id, nil
}

// List returns all users, or one when ?id= is present.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if id := strings.TrimSpace(c.QueryParam("id")); id != "" {
		u, err := h.Users.Get(ctx, id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, u)
	}
	users, err := h.Users.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Create registers a new account.
func (h *UserHandler) Create(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Auth.Register(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

// Update edits the account named by ?id=. Used for both PUT and PATCH.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := queryID(c)
	if err != nil {
		return err
	}
	var req service.UpdateUserInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Users.Update(ctx, actor(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// Delete removes the account named by ?id=.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := queryID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

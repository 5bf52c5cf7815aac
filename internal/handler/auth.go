package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/postboard-api/internal/service"
)

// AuthHandler serves /auth.
type AuthHandler struct {
	base
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService, timeout time.Duration) *AuthHandler {
	return &AuthHandler{base: base{timeout: timeout}, Auth: auth}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login returns {userId, email, accessToken, refreshToken}.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	pair, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Registration creates a USER account and returns it without the hash.
func (h *AuthHandler) Registration(c echo.Context) error {
	var req createUserReq
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// Logout revokes all of the caller's token pairs.
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, p); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GrantAdmin promotes the caller when ?secretAdminKey matches.
func (h *AuthHandler) GrantAdmin(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Auth.GrantAdmin(ctx, c.QueryParam("secretAdminKey"), p.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Refresh exchanges a refresh token for a new pair and revokes the old
// ones.
func (h *AuthHandler) Refresh(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, p)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

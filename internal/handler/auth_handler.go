package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/service"
	"github.com/locvowork/employee_records/internal/service/serviceutils"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	auth   service.AuthService
	cookie CookieConfig
}

func NewAuthHandler(auth service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

// LoginHandler handles POST /login.
func (h *AuthHandler) LoginHandler(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid input data", err)
	}

	ctx := c.Request().Context()
	s, err := h.auth.Login(ctx, req.Username, req.Password)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		logger.WarnLog(ctx, "rejected login for %q", req.Username)
		return serviceutils.ResponseError(c, http.StatusUnauthorized, "Invalid credentials", nil)
	case err != nil:
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Database error", err)
	}

	// A fresh id is issued on every login; the one the browser arrived with
	// is dropped.
	if old, err := c.Cookie(SessionCookieName); err == nil && old.Value != "" && old.Value != s.ID {
		if err := h.auth.Logout(ctx, old.Value); err != nil {
			logger.WarnLog(ctx, "failed to drop previous session: %v", err)
		}
	}

	c.SetCookie(h.sessionCookie(s.ID, int(h.cookie.TTL.Seconds())))
	logger.InfoLog(ctx, "user %q logged in", s.Username)
	return c.Redirect(http.StatusFound, "/dashboard")
}

// LogoutHandler handles GET /logout. It is safe to call without a session.
func (h *AuthHandler) LogoutHandler(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.auth.Logout(c.Request().Context(), cookie.Value); err != nil {
			return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to logout", err)
		}
	}

	c.SetCookie(h.sessionCookie("", -1))
	return c.Redirect(http.StatusFound, loginPagePath)
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/metrics"
	"github.com/locvowork/employee_records/internal/service"
	"github.com/locvowork/employee_records/internal/service/serviceutils"
)

const (
	// SessionCookieName holds the opaque session id.
	SessionCookieName = "sid"

	loginPagePath = "/log-in"
)

// SessionGate rejects requests that carry no live session. Nothing behind it
// runs for anonymous callers.
type SessionGate struct {
	auth service.AuthService
}

func NewSessionGate(auth service.AuthService) *SessionGate {
	return &SessionGate{auth: auth}
}

// RequirePageSession sends anonymous browsers to the login page.
func (g *SessionGate) RequirePageSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := g.authenticate(c)
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			return c.Redirect(http.StatusFound, loginPagePath)
		case err != nil:
			return serviceutils.ResponseError(c, http.StatusInternalServerError, "Session store error", err)
		}
		return next(c)
	}
}

// RequireAPISession answers anonymous API calls with 401.
func (g *SessionGate) RequireAPISession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := g.authenticate(c)
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			return serviceutils.ResponseError(c, http.StatusUnauthorized, "Authentication required", nil)
		case err != nil:
			return serviceutils.ResponseError(c, http.StatusInternalServerError, "Session store error", err)
		}
		return next(c)
	}
}

func (g *SessionGate) authenticate(c echo.Context) error {
	var sid string
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		sid = cookie.Value
	}

	req := c.Request()
	s, err := g.auth.Authenticate(req.Context(), sid)
	if err != nil {
		return err
	}

	ctx := logger.WithLogger(req.Context(), map[string]interface{}{"user": s.Username})
	c.SetRequest(req.WithContext(ctx))
	return nil
}

// RequestLogger puts a request scoped logger on the context and writes one
// line per request. It must run after middleware.RequestID.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			ctx := logger.WithLogger(req.Context(), map[string]interface{}{
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
				"method":     req.Method,
				"path":       req.URL.Path,
			})
			c.SetRequest(req.WithContext(ctx))

			if err := next(c); err != nil {
				c.Error(err)
			}

			logger.Event(c.Request().Context()).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request completed")
			return nil
		}
	}
}

// Metrics records request count and latency per matched route.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

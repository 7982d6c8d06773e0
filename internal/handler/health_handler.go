package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_records/internal/service/serviceutils"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthHandler handles GET /health.
func (h *HealthHandler) HealthHandler(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return serviceutils.ResponseError(c, http.StatusServiceUnavailable, "Database unavailable", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

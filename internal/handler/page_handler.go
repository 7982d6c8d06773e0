package handler

import (
	"embed"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_records/internal/service/serviceutils"
)

//go:embed pages/*.html
var pageFS embed.FS

// PageHandler serves the static HTML shells. All data is fetched by the
// pages from the JSON routes.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Page returns a handler that writes pages/<name>.
func (h *PageHandler) Page(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := pageFS.ReadFile("pages/" + name)
		if err != nil {
			return serviceutils.ResponseError(c, http.StatusInternalServerError, "Page not available", err)
		}
		return c.HTMLBlob(http.StatusOK, data)
	}
}

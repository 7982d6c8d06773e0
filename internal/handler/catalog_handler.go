package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_records/internal/domain"
)

type CatalogHandler struct {
	catalog *domain.Catalog
}

func NewCatalogHandler(catalog *domain.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// DepartmentsHandler handles GET /departments. The add and edit pages use it
// to fill the department and position pickers.
func (h *CatalogHandler) DepartmentsHandler(c echo.Context) error {
	names := h.catalog.Departments()
	out := make([]departmentEntry, 0, len(names))
	for _, name := range names {
		out = append(out, departmentEntry{Name: name, Positions: h.catalog.Positions(name)})
	}
	return c.JSON(http.StatusOK, DepartmentsResponse{Departments: out})
}

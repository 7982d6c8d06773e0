package handler

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_records/internal/cipher"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/service"
	"github.com/locvowork/employee_records/internal/service/serviceutils"
	"github.com/locvowork/employee_records/pkg/simpleexcel"
)

//go:embed templates/employees_export.yaml
var exportTemplate []byte

// exportPageSize bounds each List call made while building the export.
const exportPageSize = 500

type EmployeeHandler struct {
	svc service.EmployeeService
}

func NewEmployeeHandler(svc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// DashboardDataHandler handles GET /dashboard-data. The total is the sum of
// one grouped count so both figures come from the same snapshot.
func (h *EmployeeHandler) DashboardDataHandler(c echo.Context) error {
	counts, err := h.svc.CountByDepartment(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Database error", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	return c.JSON(http.StatusOK, DashboardResponse{
		TotalEmployees:   total,
		DepartmentCounts: counts,
	})
}

// CreateHandler handles POST /add-employee.
func (h *EmployeeHandler) CreateHandler(c echo.Context) error {
	in, err := bindEmployee(c)
	if err != nil {
		return respondInvalid(c, err)
	}

	id, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		if isValidation(err) {
			return respondInvalid(c, err)
		}
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to add employee", err)
	}

	logger.InfoLog(c.Request().Context(), "employee %d added", id)
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Employee added successfully", CreateResult{
		InsertID:     id,
		AffectedRows: 1,
	})
}

// GetHandler handles GET /employee/:id and returns the decrypted record.
func (h *EmployeeHandler) GetHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee ID", nil)
	}

	emp, err := h.svc.Get(c.Request().Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return serviceutils.ResponseMessage(c, http.StatusNotFound, "Employee not found")
	case errors.Is(err, cipher.ErrDecryption):
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to decrypt data", err)
	case err != nil:
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Error fetching employee data", err)
	}

	return c.JSON(http.StatusOK, newEmployeeResponse(emp))
}

// UpdateHandler handles PUT /edit/:id. Omitting social_security_number or
// bank_account keeps the stored value.
func (h *EmployeeHandler) UpdateHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee ID", nil)
	}

	in, err := bindEmployee(c)
	if err != nil {
		return respondInvalid(c, err)
	}

	err = h.svc.Update(c.Request().Context(), id, in)
	switch {
	case isValidation(err):
		return respondInvalid(c, err)
	case errors.Is(err, domain.ErrNotFound):
		return serviceutils.ResponseMessage(c, http.StatusNotFound, "Employee not found")
	case err != nil:
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to update employee", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee updated successfully", UpdateResult{AffectedRows: 1})
}

// DeleteHandler handles DELETE /employee/:id.
func (h *EmployeeHandler) DeleteHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee ID", nil)
	}

	err = h.svc.Delete(c.Request().Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return serviceutils.ResponseMessage(c, http.StatusNotFound, "Employee not found")
	case err != nil:
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Error deleting employee", err)
	}

	return serviceutils.ResponseMessage(c, http.StatusOK, "Employee deleted successfully")
}

// SearchHandler handles GET /employees/search?q=.
func (h *EmployeeHandler) SearchHandler(c echo.Context) error {
	hits, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"))
	switch {
	case errors.Is(err, domain.ErrSearchDisabled):
		return serviceutils.ResponseError(c, http.StatusServiceUnavailable, "Search is not configured", nil)
	case isValidation(err):
		return respondInvalid(c, err)
	case err != nil:
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Search failed", err)
	}

	if hits == nil {
		hits = []domain.EmployeeSearchHit{}
	}
	return c.JSON(http.StatusOK, SearchResponse{Results: hits})
}

// ExportHandler handles GET /export/employees?department=&name=. Both
// filters are optional. The sensitive pair only appears masked in the
// workbook.
func (h *EmployeeHandler) ExportHandler(c echo.Context) error {
	ctx := c.Request().Context()

	total, err := h.svc.CountAll(ctx)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Database error", err)
	}

	filter := domain.EmployeeFilter{
		Department: c.QueryParam("department"),
		Name:       c.QueryParam("name"),
		Limit:      exportPageSize,
	}
	rows := make([]domain.EmployeeSummary, 0, total)
	for ; ; filter.Offset += exportPageSize {
		page, err := h.svc.List(ctx, filter)
		if isValidation(err) {
			return respondInvalid(c, err)
		}
		if err != nil {
			return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to list employees", err)
		}
		rows = append(rows, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	counts, err := h.svc.CountByDepartment(ctx)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Database error", err)
	}

	exporter, err := simpleexcel.NewDataExporterFromYaml(exportTemplate)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to parse export template", err)
	}
	exporter.
		BindSectionData("employees", rows).
		BindSectionData("departments", departmentRows(counts))

	data, err := exporter.ToBytes()
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to generate Excel file", err)
	}

	filename := fmt.Sprintf("employees_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	logger.InfoLog(ctx, "exported %d of %d employees", len(rows), total)
	return c.Blob(http.StatusOK, simpleexcel.ContentType, data)
}

func departmentRows(counts map[string]int) []departmentCount {
	out := make([]departmentCount, 0, len(counts))
	for dept, n := range counts {
		out = append(out, departmentCount{Department: dept, Total: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

func bindEmployee(c echo.Context) (domain.EmployeeInput, error) {
	var req EmployeeRequest
	if err := c.Bind(&req); err != nil {
		return domain.EmployeeInput{}, err
	}
	return req.toInput()
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("employee id must be positive, got %d", id)
	}
	return id, nil
}

func isValidation(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve)
}

// respondInvalid reports field errors verbatim and everything else as a
// generic bad request.
func respondInvalid(c echo.Context, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return serviceutils.ResponseError(c, http.StatusBadRequest, ve.Error(), nil)
	}
	return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid input data", err)
}

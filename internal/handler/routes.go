package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Routes is the full route table. Health and Metrics are optional.
type Routes struct {
	Gate      *SessionGate
	Auth      *AuthHandler
	Employees *EmployeeHandler
	Catalog   *CatalogHandler
	Pages     *PageHandler
	Health    *HealthHandler
	Metrics   http.Handler
}

// Register mounts every route on e. Gated routes get the session check as
// route middleware so unknown paths still answer 404.
func (r *Routes) Register(e *echo.Echo) {
	page := r.Gate.RequirePageSession
	api := r.Gate.RequireAPISession

	e.GET(loginPagePath, r.Pages.Page("login.html"))
	e.POST("/login", r.Auth.LoginHandler)
	e.GET("/logout", r.Auth.LogoutHandler)

	e.GET("/dashboard", r.Pages.Page("dashboard.html"), page)
	e.GET("/add", r.Pages.Page("add.html"), page)
	e.GET("/view", r.Pages.Page("view.html"), page)
	e.GET("/delete", r.Pages.Page("delete.html"), page)
	e.GET("/update", r.Pages.Page("edit.html"), page)

	e.GET("/dashboard-data", r.Employees.DashboardDataHandler, api)
	e.POST("/add-employee", r.Employees.CreateHandler, api)
	e.GET("/employee/:id", r.Employees.GetHandler, api)
	e.DELETE("/employee/:id", r.Employees.DeleteHandler, api)
	e.PUT("/edit/:id", r.Employees.UpdateHandler, api)
	e.GET("/employees/search", r.Employees.SearchHandler, api)
	e.GET("/export/employees", r.Employees.ExportHandler, api)
	e.GET("/departments", r.Catalog.DepartmentsHandler, api)

	if r.Health != nil {
		e.GET("/health", r.Health.HealthHandler)
	}
	if r.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.Metrics))
	}
}

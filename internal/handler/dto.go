package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/locvowork/employee_records/internal/domain"
)

// LoginRequest is accepted as JSON or as an urlencoded form.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// EmployeeRequest is the body of POST /add-employee and PUT /edit/:id.
// Field names follow the HTML forms, which post snake_case.
type EmployeeRequest struct {
	FirstName            string  `json:"first_name" form:"first_name"`
	LastName             string  `json:"last_name" form:"last_name"`
	Department           string  `json:"department" form:"department"`
	Position             string  `json:"position" form:"position"`
	Phone                string  `json:"phone" form:"phone"`
	Email                string  `json:"email" form:"email"`
	DOB                  string  `json:"dob" form:"dob"`
	Gender               string  `json:"gender" form:"gender"`
	Salary               flexInt `json:"salary" form:"salary"`
	SocialSecurityNumber string  `json:"social_security_number" form:"social_security_number"`
	BankAccount          string  `json:"bank_account" form:"bank_account"`
}

func (r EmployeeRequest) toInput() (domain.EmployeeInput, error) {
	dob, err := parseDOB(r.DOB)
	if err != nil {
		return domain.EmployeeInput{}, err
	}
	return domain.EmployeeInput{
		Profile: domain.Profile{
			FirstName:  r.FirstName,
			LastName:   r.LastName,
			Department: r.Department,
			Position:   r.Position,
			Salary:     int(r.Salary),
			Email:      r.Email,
			Phone:      r.Phone,
			Gender:     r.Gender,
			DOB:        dob,
		},
		SocialSecurityNumber: r.SocialSecurityNumber,
		BankAccount:          r.BankAccount,
	}, nil
}

// parseDOB accepts a bare date or a full RFC 3339 timestamp, which is what
// the view page echoes back on edit.
func parseDOB(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, &domain.ValidationError{Field: "dob", Reason: "must be a date in YYYY-MM-DD format"}
}

// flexInt takes a JSON number or a numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	return n.UnmarshalParam(s)
}

// UnmarshalParam is used by echo's form binder.
func (n *flexInt) UnmarshalParam(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("salary %q is not a whole number", s)
	}
	*n = flexInt(v)
	return nil
}

// EmployeeResponse is the decrypted employee returned by GET /employee/:id.
type EmployeeResponse struct {
	ID                   int64  `json:"id"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Department           string `json:"department"`
	Position             string `json:"position"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Gender               string `json:"gender"`
	DOB                  string `json:"dob"`
	Salary               int    `json:"salary"`
	SocialSecurityNumber string `json:"socialSecurityNumber"`
	BankAccount          string `json:"bankAccount"`
}

func newEmployeeResponse(e *domain.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:                   e.ID,
		FirstName:            e.FirstName,
		LastName:             e.LastName,
		Department:           e.Department,
		Position:             e.Position,
		Email:                e.Email,
		Phone:                e.Phone,
		Gender:               e.Gender,
		Salary:               e.Salary,
		SocialSecurityNumber: e.SocialSecurityNumber,
		BankAccount:          e.BankAccount,
	}
	if !e.DOB.IsZero() {
		resp.DOB = e.DOB.Format(domain.DateLayout)
	}
	return resp
}

type DashboardResponse struct {
	TotalEmployees   int            `json:"totalEmployees"`
	DepartmentCounts map[string]int `json:"departmentCounts"`
}

// CreateResult mirrors the driver result the dashboard scripts read.
type CreateResult struct {
	InsertID     int64 `json:"insertId"`
	AffectedRows int   `json:"affectedRows"`
}

type UpdateResult struct {
	AffectedRows int `json:"affectedRows"`
}

type SearchResponse struct {
	Results []domain.EmployeeSearchHit `json:"results"`
}

// departmentCount is one row of the headcount sheet in the export.
type departmentCount struct {
	Department string
	Total      int
}

type DepartmentsResponse struct {
	Departments []departmentEntry `json:"departments"`
}

type departmentEntry struct {
	Name      string   `json:"name"`
	Positions []string `json:"positions"`
}

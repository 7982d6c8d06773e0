package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Column limits of the employees table.
const (
	MaxSalary     = math.MaxInt32
	maxNameLength = 100
)

var fieldLimits = []struct {
	field string
	value func(EmployeeInput) string
	max   int
}{
	{"first_name", func(in EmployeeInput) string { return in.FirstName }, maxNameLength},
	{"last_name", func(in EmployeeInput) string { return in.LastName }, maxNameLength},
	{"position", func(in EmployeeInput) string { return in.Position }, 100},
	{"email", func(in EmployeeInput) string { return in.Email }, 255},
	{"phone", func(in EmployeeInput) string { return in.Phone }, 50},
	{"gender", func(in EmployeeInput) string { return in.Gender }, 20},
}

// Normalize trims surrounding whitespace from every string field and reduces
// the date of birth to a UTC calendar date.
func (in EmployeeInput) Normalize() EmployeeInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Department = strings.TrimSpace(in.Department)
	in.Position = strings.TrimSpace(in.Position)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Gender = strings.TrimSpace(in.Gender)
	in.SocialSecurityNumber = strings.TrimSpace(in.SocialSecurityNumber)
	in.BankAccount = strings.TrimSpace(in.BankAccount)
	if !in.DOB.IsZero() {
		y, m, d := in.DOB.Date()
		in.DOB = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return in
}

// Validate checks an input against the catalog. requireSensitive is set on
// create; updates may omit the sensitive pair to keep the stored values.
func (in EmployeeInput) Validate(catalog *Catalog, requireSensitive bool) error {
	switch {
	case in.FirstName == "":
		return &ValidationError{Field: "first_name", Reason: "is required"}
	case in.LastName == "":
		return &ValidationError{Field: "last_name", Reason: "is required"}
	case !catalog.HasDepartment(in.Department):
		return &ValidationError{Field: "department", Reason: "is not a known department"}
	case in.Salary <= 0:
		return &ValidationError{Field: "salary", Reason: "must be a positive integer"}
	case in.Salary > MaxSalary:
		return &ValidationError{Field: "salary", Reason: fmt.Sprintf("must not exceed %d", MaxSalary)}
	case in.DOB.IsZero():
		return &ValidationError{Field: "dob", Reason: "is required"}
	}

	for _, l := range fieldLimits {
		if utf8.RuneCountInString(l.value(in)) > l.max {
			return &ValidationError{Field: l.field, Reason: fmt.Sprintf("must be at most %d characters", l.max)}
		}
	}

	if requireSensitive {
		if in.SocialSecurityNumber == "" {
			return &ValidationError{Field: "social_security_number", Reason: "is required"}
		}
		if in.BankAccount == "" {
			return &ValidationError{Field: "bank_account", Reason: "is required"}
		}
	}
	return nil
}

// MaskTail replaces every letter and digit except the last keep characters
// with '*'. Separators are preserved so "123-45-6789" becomes "***-**-6789".
func MaskTail(s string, keep int) string {
	runes := []rune(s)
	cut := len(runes) - keep
	for i := 0; i < cut; i++ {
		if unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) {
			runes[i] = '*'
		}
	}
	return string(runes)
}

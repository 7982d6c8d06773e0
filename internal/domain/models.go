package domain

import "time"

// DateLayout is the wire and storage format of the date of birth.
const DateLayout = "2006-01-02"

// Profile holds the employee fields that are stored as-is.
type Profile struct {
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	Department string    `db:"department"`
	Position   string    `db:"position"`
	Salary     int       `db:"salary"`
	Email      string    `db:"email"`
	Phone      string    `db:"phone"`
	Gender     string    `db:"gender"`
	DOB        time.Time `db:"dob"`
}

// EmployeeInput is what callers submit on create and update. The sensitive
// pair is plaintext here and must be encrypted before it reaches a repository.
type EmployeeInput struct {
	Profile
	SocialSecurityNumber string
	BankAccount          string
}

// EmployeeRecord is the at-rest form of an employee row. The sensitive pair is
// always ciphertext.
type EmployeeRecord struct {
	ID int64 `db:"id"`
	Profile
	EncryptedSSN         string `db:"social_security_number"`
	EncryptedBankAccount string `db:"bank_account"`
}

// Employee is the decrypted view returned to authenticated callers.
type Employee struct {
	ID int64
	Profile
	SocialSecurityNumber string
	BankAccount          string
}

// EmployeeSummary is used for listings and exports; the sensitive pair is
// masked and never decrypted in full.
type EmployeeSummary struct {
	ID int64
	Profile
	MaskedSSN         string
	MaskedBankAccount string
}

// EmployeeFilter defines criteria for listing employees. Department is an
// exact match; Name matches a substring of the first or last name, ignoring
// case.
type EmployeeFilter struct {
	Department string
	Name       string
	Limit      int
	Offset     int
}

// EmployeeSearchHit is a search index match. It carries no sensitive data.
type EmployeeSearchHit struct {
	ID         int64   `json:"id"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Department string  `json:"department"`
	Position   string  `json:"position"`
	Score      float64 `json:"score"`
}

// User is a login account. Only the bcrypt hash of the password is stored.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}

package domain

import "context"

// EmployeeRepository defines the interface for employee data access.
// GetByID, Update and Delete return ErrNotFound when no row matches.
type EmployeeRepository interface {
	Create(ctx context.Context, r *EmployeeRecord) (int64, error)
	GetByID(ctx context.Context, id int64) (*EmployeeRecord, error)
	// Update replaces the profile of r.ID. An empty EncryptedSSN or
	// EncryptedBankAccount leaves the stored ciphertext untouched.
	Update(ctx context.Context, r *EmployeeRecord) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter EmployeeFilter) ([]EmployeeRecord, error)
	Count(ctx context.Context) (int, error)
	CountByDepartment(ctx context.Context) (map[string]int, error)
}

// UserRepository is used for credential checks and account provisioning.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) (int64, error)
}

// EmployeeIndexer keeps a searchable copy of the non-sensitive fields.
type EmployeeIndexer interface {
	IndexEmployee(ctx context.Context, id int64, p Profile) error
	DeleteEmployee(ctx context.Context, id int64) error
	SearchEmployees(ctx context.Context, query string, limit int) ([]EmployeeSearchHit, error)
}

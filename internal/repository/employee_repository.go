package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/repository/builder"
)

const employeesTable = "employees"

var employeeColumns = []string{
	"id", "first_name", "last_name", "department", "position", "salary",
	"email", "phone", "gender", "dob", "social_security_number", "bank_account",
}

// likeEscaper neutralises LIKE wildcards in user supplied name fragments.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(db *sql.DB) domain.EmployeeRepository {
	return &employeeRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row rowScanner) (*domain.EmployeeRecord, error) {
	var r domain.EmployeeRecord
	err := row.Scan(&r.ID, &r.FirstName, &r.LastName, &r.Department, &r.Position, &r.Salary,
		&r.Email, &r.Phone, &r.Gender, &r.DOB, &r.EncryptedSSN, &r.EncryptedBankAccount)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *employeeRepository) Create(ctx context.Context, e *domain.EmployeeRecord) (int64, error) {
	query, args := builder.NewSQLBuilder().
		Insert(employeesTable, employeeColumns[1:]...).
		Values(e.FirstName, e.LastName, e.Department, e.Position, e.Salary,
			e.Email, e.Phone, e.Gender, e.DOB, e.EncryptedSSN, e.EncryptedBankAccount).
		Returning("id").
		Build()

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create employee: %w", err)
	}
	return id, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.EmployeeRecord, error) {
	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From(employeesTable).
		Where("id = ?", id).
		Build()

	rec, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee %d: %w", id, err)
	}
	return rec, nil
}

func (r *employeeRepository) Update(ctx context.Context, e *domain.EmployeeRecord) error {
	b := builder.NewSQLBuilder().
		Update(employeesTable).
		Set("first_name", e.FirstName).
		Set("last_name", e.LastName).
		Set("department", e.Department).
		Set("position", e.Position).
		Set("salary", e.Salary).
		Set("email", e.Email).
		Set("phone", e.Phone).
		Set("gender", e.Gender).
		Set("dob", e.DOB)
	if e.EncryptedSSN != "" {
		b.Set("social_security_number", e.EncryptedSSN)
	}
	if e.EncryptedBankAccount != "" {
		b.Set("bank_account", e.EncryptedBankAccount)
	}
	query, args := b.Where("id = ?", e.ID).Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update employee %d: %w", e.ID, err)
	}
	return requireAffected(res)
}

func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	query, args := builder.NewSQLBuilder().
		Delete(employeesTable).
		Where("id = ?", id).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}
	return requireAffected(res)
}

func (r *employeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.EmployeeRecord, error) {
	b := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From(employeesTable)

	if filter.Department != "" {
		b.Where("department = ?", filter.Department)
	}
	if filter.Name != "" {
		pattern := "%" + likeEscaper.Replace(filter.Name) + "%"
		b.WhereGroup(func(g *builder.SQLBuilder) *builder.SQLBuilder {
			return g.Where("first_name ILIKE ?", pattern).Or("last_name ILIKE ?", pattern)
		})
	}

	b.OrderBy("id ASC")
	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		b.Offset(filter.Offset)
	}

	query, args, err := b.BuildSafe()
	if err != nil {
		return nil, fmt.Errorf("failed to build employee list query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var records []domain.EmployeeRecord
	for rows.Next() {
		rec, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return records, nil
}

func (r *employeeRepository) Count(ctx context.Context) (int, error) {
	query, args := builder.NewSQLBuilder().
		Select("COUNT(*)").
		From(employeesTable).
		Build()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return n, nil
}

func (r *employeeRepository) CountByDepartment(ctx context.Context) (map[string]int, error) {
	query, args := builder.NewSQLBuilder().
		Select("department", "COUNT(*)").
		From(employeesTable).
		GroupBy("department").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees by department: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var dept string
		var n int
		if err := rows.Scan(&dept, &n); err != nil {
			return nil, fmt.Errorf("failed to scan department count: %w", err)
		}
		counts[dept] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count employees by department: %w", err)
	}
	return counts, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

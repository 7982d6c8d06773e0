package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/repository/builder"
)

// UserRepository handles the login accounts table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByUsername returns domain.ErrNotFound for unknown usernames.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query, args := builder.NewSQLBuilder().
		Select("id", "username", "password_hash").
		From("users").
		Where("username = ?", username).
		Build()

	var u domain.User
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// Create inserts a user and returns the new id.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	query, args := builder.NewSQLBuilder().
		Insert("users", "username", "password_hash").
		Values(u.Username, u.PasswordHash).
		Returning("id").
		Build()

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

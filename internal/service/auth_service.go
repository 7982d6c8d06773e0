package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/metrics"
	"github.com/locvowork/employee_records/internal/session"
)

// dummyHash is compared against when the username is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZeNqYwKrSmMWGgIfINpD0G")

// AuthService turns credentials into sessions and sessions back into users.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*session.Session, error)
	Authenticate(ctx context.Context, sessionID string) (*session.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

type authService struct {
	users    domain.UserRepository
	sessions session.Store
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService builds the authenticator. ttl is the session lifetime.
func NewAuthService(users domain.UserRepository, sessions session.Store, ttl time.Duration) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (a *authService) Login(ctx context.Context, username, password string) (*session.Session, error) {
	user, err := a.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	s := session.New(user.Username, a.now(), a.ttl)
	if err := a.sessions.Save(ctx, s); err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return s, nil
}

func (a *authService) Authenticate(ctx context.Context, sessionID string) (*session.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthenticated
	}
	s, err := a.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if s.Expired(a.now()) {
		return nil, domain.ErrUnauthenticated
	}
	return s, nil
}

func (a *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return a.sessions.Delete(ctx, sessionID)
}

// HashPassword returns the bcrypt hash stored in users.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", &domain.ValidationError{Field: "password", Reason: "is required"}
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

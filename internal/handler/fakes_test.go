package handler

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/locvowork/employee_records/internal/cipher"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/service"
	"github.com/locvowork/employee_records/internal/session"
)

var (
	testCipherOnce sync.Once
	testCipher     *cipher.FieldCipher
)

func sharedCipher(t *testing.T) *cipher.FieldCipher {
	t.Helper()
	testCipherOnce.Do(func() {
		c, err := cipher.New("handler-test-secret")
		require.NoError(t, err)
		testCipher = c
	})
	return testCipher
}

// memRepo is an in-memory employee table that keeps what the service stores
// so tests can inspect the at-rest values.
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.EmployeeRecord
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[int64]domain.EmployeeRecord)}
}

func (m *memRepo) Create(_ context.Context, r *domain.EmployeeRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec := *r
	rec.ID = m.nextID
	m.rows[rec.ID] = rec
	return rec.ID, nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*domain.EmployeeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *memRepo) Update(_ context.Context, r *domain.EmployeeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[r.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := *r
	if next.EncryptedSSN == "" {
		next.EncryptedSSN = cur.EncryptedSSN
	}
	if next.EncryptedBankAccount == "" {
		next.EncryptedBankAccount = cur.EncryptedBankAccount
	}
	m.rows[r.ID] = next
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memRepo) List(_ context.Context, filter domain.EmployeeFilter) ([]domain.EmployeeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EmployeeRecord
	for _, r := range m.rows {
		if matchesFilter(r.Profile, filter) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchesFilter(p domain.Profile, f domain.EmployeeFilter) bool {
	if f.Department != "" && p.Department != f.Department {
		return false
	}
	if f.Name == "" {
		return true
	}
	name := strings.ToLower(f.Name)
	return strings.Contains(strings.ToLower(p.FirstName), name) || strings.Contains(strings.ToLower(p.LastName), name)
}

func (m *memRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *memRepo) CountByDepartment(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, r := range m.rows {
		counts[r.Department]++
	}
	return counts, nil
}

type memUsers struct {
	users map[string]domain.User
	err   error
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (int64, error) {
	return 0, errors.New("not supported")
}

// spyService records every call and answers with err.
type spyService struct {
	mu      sync.Mutex
	calls   []string
	err     error
	hits    []domain.EmployeeSearchHit
	counts  map[string]int
	filters []domain.EmployeeFilter
}

func (s *spyService) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

func (s *spyService) Create(context.Context, domain.EmployeeInput) (int64, error) {
	s.record("Create")
	return 1, s.err
}

func (s *spyService) Get(_ context.Context, id int64) (*domain.Employee, error) {
	s.record("Get")
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Employee{ID: id}, nil
}

func (s *spyService) Update(context.Context, int64, domain.EmployeeInput) error {
	s.record("Update")
	return s.err
}

func (s *spyService) Delete(context.Context, int64) error {
	s.record("Delete")
	return s.err
}

func (s *spyService) CountAll(context.Context) (int, error) {
	s.record("CountAll")
	return 0, s.err
}

func (s *spyService) CountByDepartment(context.Context) (map[string]int, error) {
	s.record("CountByDepartment")
	if s.counts == nil {
		return map[string]int{}, s.err
	}
	return s.counts, s.err
}

func (s *spyService) List(_ context.Context, filter domain.EmployeeFilter) ([]domain.EmployeeSummary, error) {
	s.record("List")
	s.mu.Lock()
	s.filters = append(s.filters, filter)
	s.mu.Unlock()
	return nil, s.err
}

func (s *spyService) Search(context.Context, string) ([]domain.EmployeeSearchHit, error) {
	s.record("Search")
	return s.hits, s.err
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

// testServer is the full route table over in-memory stores with one user,
// alice/secret.
type testServer struct {
	e     *echo.Echo
	users *memUsers
	store *session.MemoryStore
}

func newTestServer(t *testing.T, svc service.EmployeeService) *testServer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &memUsers{users: map[string]domain.User{
		"alice": {ID: 1, Username: "alice", PasswordHash: string(hash)},
	}}
	store := session.NewMemoryStore()
	auth := service.NewAuthService(users, store, time.Hour)

	e := echo.New()
	routes := &Routes{
		Gate:      NewSessionGate(auth),
		Auth:      NewAuthHandler(auth, CookieConfig{TTL: time.Hour}),
		Employees: NewEmployeeHandler(svc),
		Catalog:   NewCatalogHandler(domain.DefaultCatalog()),
		Pages:     NewPageHandler(),
		Health:    NewHealthHandler(fakePinger{}),
	}
	routes.Register(e)
	return &testServer{e: e, users: users, store: store}
}

func newRealService(t *testing.T) (service.EmployeeService, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return service.NewEmployeeService(repo, sharedCipher(t), domain.DefaultCatalog(), nil), repo
}

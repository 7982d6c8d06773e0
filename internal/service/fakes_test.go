package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_records/internal/cipher"
	"github.com/locvowork/employee_records/internal/domain"
)

var (
	testCipherOnce sync.Once
	testCipher     *cipher.FieldCipher
)

// sharedCipher avoids paying for key derivation in every test.
func sharedCipher(t *testing.T) *cipher.FieldCipher {
	t.Helper()
	testCipherOnce.Do(func() {
		c, err := cipher.New("test-secret")
		require.NoError(t, err)
		testCipher = c
	})
	return testCipher
}

type memEmployeeRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]domain.EmployeeRecord
	failErr error
}

func newMemEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{rows: make(map[int64]domain.EmployeeRecord)}
}

func (m *memEmployeeRepo) Create(_ context.Context, r *domain.EmployeeRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return 0, m.failErr
	}
	m.nextID++
	rec := *r
	rec.ID = m.nextID
	m.rows[rec.ID] = rec
	return rec.ID, nil
}

func (m *memEmployeeRepo) GetByID(_ context.Context, id int64) (*domain.EmployeeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	rec, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *memEmployeeRepo) Update(_ context.Context, r *domain.EmployeeRecord) error {
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

func (m *memEmployeeRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memEmployeeRepo) List(_ context.Context, filter domain.EmployeeFilter) ([]domain.EmployeeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EmployeeRecord
	for _, r := range m.rows {
		if filter.Department != "" && r.Department != filter.Department {
			continue
		}
		if filter.Name != "" && !containsFold(r.FirstName, filter.Name) && !containsFold(r.LastName, filter.Name) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (m *memEmployeeRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *memEmployeeRepo) CountByDepartment(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, r := range m.rows {
		counts[r.Department]++
	}
	return counts, nil
}

type spyIndexer struct {
	indexed map[int64]domain.Profile
	deleted []int64
	queries []string
	err     error
}

func newSpyIndexer() *spyIndexer {
	return &spyIndexer{indexed: make(map[int64]domain.Profile)}
}

func (s *spyIndexer) IndexEmployee(_ context.Context, id int64, p domain.Profile) error {
	if s.err != nil {
		return s.err
	}
	s.indexed[id] = p
	return nil
}

func (s *spyIndexer) DeleteEmployee(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *spyIndexer) SearchEmployees(_ context.Context, query string, limit int) ([]domain.EmployeeSearchHit, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return []domain.EmployeeSearchHit{{ID: 1, FirstName: query}}, nil
}

type memUserRepo struct {
	users map[string]domain.User
	err   error
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) (int64, error) {
	if _, ok := m.users[u.Username]; ok {
		return 0, errors.New("duplicate username")
	}
	u.ID = int64(len(m.users) + 1)
	m.users[u.Username] = *u
	return u.ID, nil
}

package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/locvowork/employee_records/internal/database"
	"github.com/locvowork/employee_records/internal/domain"
)

type pagedRepo struct {
	domain.EmployeeRepository
	records []domain.EmployeeRecord
	pages   []domain.EmployeeFilter
}

func (p *pagedRepo) List(_ context.Context, f domain.EmployeeFilter) ([]domain.EmployeeRecord, error) {
	p.pages = append(p.pages, f)
	if f.Offset >= len(p.records) {
		return nil, nil
	}
	end := f.Offset + f.Limit
	if end > len(p.records) {
		end = len(p.records)
	}
	return p.records[f.Offset:end], nil
}

type recordingIndexer struct {
	batches [][]database.EmployeeDoc
	err     error
}

func (r *recordingIndexer) BulkIndexEmployees(_ context.Context, docs []database.EmployeeDoc) (int, error) {
	r.batches = append(r.batches, docs)
	if r.err != nil {
		return 0, r.err
	}
	return len(docs), nil
}

func records(n int) []domain.EmployeeRecord {
	out := make([]domain.EmployeeRecord, n)
	for i := range out {
		out[i] = domain.EmployeeRecord{
			ID:           int64(i + 1),
			Profile:      domain.Profile{FirstName: "E", Department: "IT Department"},
			EncryptedSSN: "v1:secret",
		}
	}
	return out
}

func TestReindex(t *testing.T) {
	repo := &pagedRepo{records: records(5)}
	idx := &recordingIndexer{}

	n, err := reindex(context.Background(), repo, idx, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.Len(t, idx.batches, 3)
	assert.Len(t, idx.batches[2], 1)
	assert.Equal(t, int64(5), idx.batches[2][0].ID)
	assert.Equal(t, []domain.EmployeeFilter{{Limit: 2}, {Limit: 2, Offset: 2}, {Limit: 2, Offset: 4}}, repo.pages)
}

func TestReindex_ExactMultipleEndsOnEmptyPage(t *testing.T) {
	repo := &pagedRepo{records: records(4)}
	idx := &recordingIndexer{}

	n, err := reindex(context.Background(), repo, idx, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Len(t, repo.pages, 3)
}

func TestReindex_IndexError(t *testing.T) {
	repo := &pagedRepo{records: records(3)}
	idx := &recordingIndexer{err: errors.New("cluster red")}

	_, err := reindex(context.Background(), repo, idx, 2)
	assert.ErrorContains(t, err, "cluster red")
	assert.Len(t, idx.batches, 1)
}

type captureUsers struct {
	created *domain.User
}

func (c *captureUsers) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (c *captureUsers) Create(_ context.Context, u *domain.User) (int64, error) {
	c.created = u
	return 9, nil
}

func TestAddUser(t *testing.T) {
	users := &captureUsers{}
	id, err := addUser(context.Background(), users, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	require.NotNil(t, users.created)
	assert.Equal(t, "alice", users.created.Username)
	assert.NotEqual(t, "secret", users.created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.created.PasswordHash), []byte("secret")))
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()
	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"migrate", "add-user", "reindex"}, names)
}

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/locvowork/employee_records/internal/database"
)

const sessionKind = "Session"

// EntityStore is the subset of database.DatastoreClient used for sessions.
type EntityStore interface {
	Put(ctx context.Context, kind, name string, src interface{}) error
	Get(ctx context.Context, kind, name string, dst interface{}) error
	Delete(ctx context.Context, kind, name string) error
}

type sessionEntity struct {
	Username  string    `datastore:"username"`
	CreatedAt time.Time `datastore:"created_at"`
	ExpiresAt time.Time `datastore:"expires_at,noindex"`
}

// DatastoreStore keeps sessions as Cloud Datastore entities of kind Session,
// so they survive restarts and are shared between replicas.
type DatastoreStore struct {
	entities EntityStore
	now      func() time.Time
}

// NewDatastoreStore wraps an entity store, usually a *database.DatastoreClient.
func NewDatastoreStore(entities EntityStore) *DatastoreStore {
	return &DatastoreStore{entities: entities, now: time.Now}
}

func (d *DatastoreStore) Save(ctx context.Context, s *Session) error {
	e := &sessionEntity{Username: s.Username, CreatedAt: s.CreatedAt, ExpiresAt: s.ExpiresAt}
	if err := d.entities.Put(ctx, sessionKind, s.ID, e); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (d *DatastoreStore) Get(ctx context.Context, id string) (*Session, error) {
	var e sessionEntity
	err := d.entities.Get(ctx, sessionKind, id, &e)
	if errors.Is(err, database.ErrEntityNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s := &Session{ID: id, Username: e.Username, CreatedAt: e.CreatedAt, ExpiresAt: e.ExpiresAt}
	if s.Expired(d.now()) {
		// Expired entities are removed on read.
		_ = d.entities.Delete(ctx, sessionKind, id)
		return nil, ErrNotFound
	}
	return s, nil
}

func (d *DatastoreStore) Delete(ctx context.Context, id string) error {
	if err := d.entities.Delete(ctx, sessionKind, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

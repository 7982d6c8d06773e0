package database

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/datastore"
)

// ErrEntityNotFound is returned by Get when no entity has the given key.
var ErrEntityNotFound = errors.New("entity not found")

var errNilDatastore = errors.New("datastore client is nil")

// DatastoreClient wraps the cloud datastore client. Entities are addressed by
// kind and a string name.
type DatastoreClient struct {
	client *datastore.Client
}

// NewDatastoreClient connects to the given project. DATASTORE_EMULATOR_HOST
// is honoured by the underlying client.
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, error) {
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreClient{client: client}, nil
}

// Put stores src under kind/name, replacing any existing entity.
func (dc *DatastoreClient) Put(ctx context.Context, kind, name string, src interface{}) error {
	if dc == nil || dc.client == nil {
		return errNilDatastore
	}
	if _, err := dc.client.Put(ctx, datastore.NameKey(kind, name, nil), src); err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", kind, name, err)
	}
	return nil
}

// Get loads kind/name into dst.
func (dc *DatastoreClient) Get(ctx context.Context, kind, name string, dst interface{}) error {
	if dc == nil || dc.client == nil {
		return errNilDatastore
	}
	err := dc.client.Get(ctx, datastore.NameKey(kind, name, nil), dst)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return ErrEntityNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s/%s: %w", kind, name, err)
	}
	return nil
}

// Delete removes kind/name. Deleting a missing entity succeeds.
func (dc *DatastoreClient) Delete(ctx context.Context, kind, name string) error {
	if dc == nil || dc.client == nil {
		return errNilDatastore
	}
	if err := dc.client.Delete(ctx, datastore.NameKey(kind, name, nil)); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", kind, name, err)
	}
	return nil
}

// Close releases the underlying connection.
func (dc *DatastoreClient) Close() error {
	if dc == nil || dc.client == nil {
		return nil
	}
	return dc.client.Close()
}

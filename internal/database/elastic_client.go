package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/olivere/elastic/v7"

	"github.com/locvowork/employee_records/internal/domain"
)

// EmployeeDoc is the search document for an employee. It carries only the
// non-sensitive profile fields.
type EmployeeDoc struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Email      string `json:"email"`
}

// NewEmployeeDoc builds the document indexed for id.
func NewEmployeeDoc(id int64, p domain.Profile) EmployeeDoc {
	return EmployeeDoc{
		ID:         id,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Department: p.Department,
		Position:   p.Position,
		Email:      p.Email,
	}
}

var searchFields = []string{"first_name", "last_name", "department", "position", "email"}

// ElasticSearchClient wraps olivere/elastic client.
type ElasticSearchClient struct {
	client *elastic.Client
	index  string
}

// NewElasticSearchClient creates a new client for Elasticsearch 7.x. Extra
// options are appended after the defaults.
func NewElasticSearchClient(url, index string, opts ...elastic.ClientOptionFunc) (*ElasticSearchClient, error) {
	options := append([]elastic.ClientOptionFunc{
		elastic.SetURL(url),
		elastic.SetSniff(false),
	}, opts...)

	client, err := elastic.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return &ElasticSearchClient{client: client, index: index}, nil
}

// IndexEmployee creates or replaces the document of one employee.
func (es *ElasticSearchClient) IndexEmployee(ctx context.Context, id int64, p domain.Profile) error {
	_, err := es.client.Index().
		Index(es.index).
		Id(docID(id)).
		BodyJson(NewEmployeeDoc(id, p)).
		Refresh("true").
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index employee %d: %w", id, err)
	}
	return nil
}

// DeleteEmployee removes a document. A missing document is not an error.
func (es *ElasticSearchClient) DeleteEmployee(ctx context.Context, id int64) error {
	_, err := es.client.Delete().
		Index(es.index).
		Id(docID(id)).
		Refresh("true").
		Do(ctx)
	if err != nil && !elastic.IsNotFound(err) {
		return fmt.Errorf("failed to delete employee %d from index: %w", id, err)
	}
	return nil
}

// SearchEmployees runs a full-text match across the indexed profile fields.
func (es *ElasticSearchClient) SearchEmployees(ctx context.Context, query string, limit int) ([]domain.EmployeeSearchHit, error) {
	result, err := es.client.Search().
		Index(es.index).
		Query(elastic.NewMultiMatchQuery(query, searchFields...).Fuzziness("AUTO")).
		Size(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]domain.EmployeeSearchHit, 0, len(result.Hits.Hits))
	for _, item := range result.Hits.Hits {
		var doc EmployeeDoc
		if err := json.Unmarshal(item.Source, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode search hit %s: %w", item.Id, err)
		}
		hit := domain.EmployeeSearchHit{
			ID:         doc.ID,
			FirstName:  doc.FirstName,
			LastName:   doc.LastName,
			Department: doc.Department,
			Position:   doc.Position,
		}
		if item.Score != nil {
			hit.Score = *item.Score
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// BulkIndexEmployees indexes docs in one request and returns how many were
// accepted.
func (es *ElasticSearchClient) BulkIndexEmployees(ctx context.Context, docs []EmployeeDoc) (int, error) {
	bulkRequest := es.client.Bulk()
	for _, doc := range docs {
		bulkRequest = bulkRequest.Add(elastic.NewBulkIndexRequest().
			Index(es.index).
			Id(docID(doc.ID)).
			Doc(doc))
	}

	if bulkRequest.NumberOfActions() == 0 {
		return 0, nil
	}

	resp, err := bulkRequest.Refresh("true").Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("bulk index failed: %w", err)
	}

	failed := resp.Failed()
	if len(failed) > 0 {
		reason := "unknown"
		if failed[0].Error != nil {
			reason = failed[0].Error.Reason
		}
		return len(docs) - len(failed), fmt.Errorf("bulk index: %d of %d items failed, first: %s", len(failed), len(docs), reason)
	}
	return len(docs), nil
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

package force

import "context"

// Client defines the interface for REST API operations. *Session implements
// it; the entity package binds generated types to it.
type Client interface {
	// Query executes a SOQL query and returns the first page of results.
	Query(ctx context.Context, soql string) (*QueryResponse, error)

	// QueryMore fetches the next page of a previous query.
	QueryMore(ctx context.Context, nextRecordsURL string) (*QueryResponse, error)

	// Search executes a SOSL search.
	Search(ctx context.Context, sosl string) (*SearchResponse, error)

	// Retrieve fetches a single record by ID, optionally limited to fields.
	Retrieve(ctx context.Context, objtype, id string, fields ...string) (SObject, error)

	// Create inserts a new record and returns its ID.
	Create(ctx context.Context, objtype string, fields map[string]interface{}) (*SaveResult, error)

	// Update applies field changes to an existing record.
	Update(ctx context.Context, objtype, id string, changes map[string]interface{}) error

	// Upsert creates or updates a record addressed by an external ID field.
	Upsert(ctx context.Context, objtype, externalIDField, externalID string, fields map[string]interface{}) (*SaveResult, error)

	// Delete removes a record by ID.
	Delete(ctx context.Context, objtype, id string) error

	// Describe returns the metadata of one object type.
	Describe(ctx context.Context, objtype string) (*DescribeResponse, error)
}

var _ Client = (*Session)(nil)

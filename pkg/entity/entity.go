// Package entity generates lightweight per-object data-access types. A Type
// is defined once with an object name, a field list and an optional filter
// clause; its methods translate create/read/update/delete calls into SOQL and
// REST requests against a bound force.Client.
package entity

import (
	"context"
	"fmt"

	"github.com/natserract/forcekit/pkg/force"
	"github.com/natserract/forcekit/pkg/soql"
	"go.uber.org/zap"
)

// Type is a generated data-access object for one sobject type.
type Type struct {
	client force.Client
	name   string
	fields []string
	where  string
	logger *zap.Logger
}

// Define binds a new Type to a client. fields is the column list used by
// Query, Get and Search; the identifier field is added when missing. where is
// an optional filter applied to every Query.
func Define(client force.Client, name string, fields []string, where string) *Type {
	logger, _ := zap.NewProduction()
	return DefineWithLogger(client, name, fields, where, logger)
}

// DefineWithLogger is Define with a custom logger.
func DefineWithLogger(client force.Client, name string, fields []string, where string, logger *zap.Logger) *Type {
	return &Type{
		client: client,
		name:   name,
		fields: withID(fields),
		where:  where,
		logger: logger,
	}
}

// withID guarantees the identifier field is part of the column list; the diff
// and delete paths need it on every fetched record.
func withID(fields []string) []string {
	for _, f := range fields {
		if f == "Id" {
			return fields
		}
	}
	return append([]string{"Id"}, fields...)
}

// Name returns the bound object name.
func (t *Type) Name() string { return t.name }

// Fields returns the bound column list.
func (t *Type) Fields() []string { return t.fields }

// New returns an empty record of this type. Insert persists it.
func (t *Type) New() *Record {
	return newRecord()
}

// Query fetches all records matching the type's filter clause, following
// pagination until the result set is complete.
func (t *Type) Query(ctx context.Context) ([]*Record, error) {
	return t.QueryWhere(ctx, "")
}

// QueryWhere is Query with an extra filter. The type's own clause and the
// extra clause are joined with AND, in that order.
func (t *Type) QueryWhere(ctx context.Context, extra string) ([]*Record, error) {
	stmt := soql.Select(t.fields...).From(t.name).Where(t.combineWhere(extra)).String()
	t.logger.Debug("Querying records", zap.String("objtype", t.name), zap.String("soql", stmt))

	resp, err := t.client.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query %s failed: %w", t.name, err)
	}

	records := make([]*Record, 0, resp.TotalSize)
	for {
		for _, obj := range resp.Records {
			records = append(records, newRecordFromSObject(obj))
		}
		if resp.Done || resp.NextRecordsURL == "" {
			break
		}
		resp, err = t.client.QueryMore(ctx, resp.NextRecordsURL)
		if err != nil {
			return nil, fmt.Errorf("query more %s failed: %w", t.name, err)
		}
	}

	t.logger.Debug("Query complete", zap.String("objtype", t.name), zap.Int("records", len(records)))
	return records, nil
}

func (t *Type) combineWhere(extra string) string {
	switch {
	case t.where != "" && extra != "":
		return fmt.Sprintf("(%s) AND (%s)", t.where, extra)
	case t.where != "":
		return t.where
	default:
		return extra
	}
}

// Get fetches a single record by ID using the type's field list.
func (t *Type) Get(ctx context.Context, id string) (*Record, error) {
	obj, err := t.client.Retrieve(ctx, t.name, id, t.fields...)
	if err != nil {
		return nil, fmt.Errorf("get %s %s failed: %w", t.name, id, err)
	}
	return newRecordFromSObject(obj), nil
}

// Insert creates the record remotely and returns the new ID. The identifier
// field and the attributes envelope are stripped from the payload; the record
// is updated in place with the assigned ID and marked clean.
func (t *Type) Insert(ctx context.Context, rec *Record) (string, error) {
	payload := rec.Fields()
	delete(payload, "Id")
	delete(payload, attributesField)

	result, err := t.client.Create(ctx, t.name, payload)
	if err != nil {
		return "", fmt.Errorf("insert %s failed: %w", t.name, err)
	}

	rec.Set("Id", result.ID)
	rec.commit()
	t.logger.Debug("Inserted record", zap.String("objtype", t.name), zap.String("id", result.ID))
	return result.ID, nil
}

// Save sends the record's changed fields. A record with no changes is a
// no-op: no REST call is made. After a successful save the original snapshot
// is reset to the current values.
func (t *Type) Save(ctx context.Context, rec *Record) error {
	id := rec.ID()
	if id == "" {
		return fmt.Errorf("save %s: record has no Id, use Insert", t.name)
	}

	changes := rec.Changes()
	if len(changes) == 0 {
		t.logger.Debug("Save skipped, record unchanged", zap.String("objtype", t.name), zap.String("id", id))
		return nil
	}

	if err := t.client.Update(ctx, t.name, id, changes); err != nil {
		return fmt.Errorf("save %s %s failed: %w", t.name, id, err)
	}

	rec.commit()
	t.logger.Debug("Saved record",
		zap.String("objtype", t.name),
		zap.String("id", id),
		zap.Int("changed_fields", len(changes)))
	return nil
}

// Upsert creates or updates a record addressed by an external ID field and
// marks it clean.
func (t *Type) Upsert(ctx context.Context, externalIDField, externalID string, rec *Record) error {
	payload := rec.Fields()
	delete(payload, "Id")
	delete(payload, attributesField)
	delete(payload, externalIDField)

	result, err := t.client.Upsert(ctx, t.name, externalIDField, externalID, payload)
	if err != nil {
		return fmt.Errorf("upsert %s %s=%s failed: %w", t.name, externalIDField, externalID, err)
	}

	if result.ID != "" {
		rec.Set("Id", result.ID)
	}
	rec.commit()
	return nil
}

// Delete removes a record by ID.
func (t *Type) Delete(ctx context.Context, id string) error {
	if err := t.client.Delete(ctx, t.name, id); err != nil {
		return fmt.Errorf("delete %s %s failed: %w", t.name, id, err)
	}
	return nil
}

// Search runs a SOSL search for term scoped to this type, returning matches
// with the type's field list populated.
func (t *Type) Search(ctx context.Context, term string) ([]*Record, error) {
	stmt := soql.Find(term).In("ALL FIELDS").Returning(t.name, t.fields...).String()
	t.logger.Debug("Searching records", zap.String("objtype", t.name), zap.String("sosl", stmt))

	resp, err := t.client.Search(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("search %s failed: %w", t.name, err)
	}

	records := make([]*Record, 0, len(resp.SearchRecords))
	for _, obj := range resp.SearchRecords {
		records = append(records, newRecordFromSObject(obj))
	}
	return records, nil
}

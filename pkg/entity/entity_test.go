package entity

import (
	"context"
	"testing"

	"github.com/natserract/forcekit/pkg/force"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClient records the calls the generated type makes and plays back canned
// responses.
type fakeClient struct {
	queries    []string
	morePages  []*force.QueryResponse
	queryResp  *force.QueryResponse
	searchSOSL string
	searchResp *force.SearchResponse
	retrieved  force.SObject
	fields     []string

	created     map[string]interface{}
	createResp  *force.SaveResult
	updatedID   string
	updatedWith map[string]interface{}
	updateCalls int
	deletedID   string
	upsertWith  map[string]interface{}
}

func (f *fakeClient) Query(ctx context.Context, soql string) (*force.QueryResponse, error) {
	f.queries = append(f.queries, soql)
	return f.queryResp, nil
}

func (f *fakeClient) QueryMore(ctx context.Context, nextRecordsURL string) (*force.QueryResponse, error) {
	resp := f.morePages[0]
	f.morePages = f.morePages[1:]
	return resp, nil
}

func (f *fakeClient) Search(ctx context.Context, sosl string) (*force.SearchResponse, error) {
	f.searchSOSL = sosl
	return f.searchResp, nil
}

func (f *fakeClient) Retrieve(ctx context.Context, objtype, id string, fields ...string) (force.SObject, error) {
	f.fields = fields
	return f.retrieved, nil
}

func (f *fakeClient) Create(ctx context.Context, objtype string, fields map[string]interface{}) (*force.SaveResult, error) {
	f.created = fields
	return f.createResp, nil
}

func (f *fakeClient) Update(ctx context.Context, objtype, id string, changes map[string]interface{}) error {
	f.updateCalls++
	f.updatedID = id
	f.updatedWith = changes
	return nil
}

func (f *fakeClient) Upsert(ctx context.Context, objtype, externalIDField, externalID string, fields map[string]interface{}) (*force.SaveResult, error) {
	f.upsertWith = fields
	return &force.SaveResult{ID: "003000000000009", Success: true}, nil
}

func (f *fakeClient) Delete(ctx context.Context, objtype, id string) error {
	f.deletedID = id
	return nil
}

func (f *fakeClient) Describe(ctx context.Context, objtype string) (*force.DescribeResponse, error) {
	return &force.DescribeResponse{Name: objtype}, nil
}

func newTestType(client force.Client, fields []string, where string) *Type {
	return DefineWithLogger(client, "Contact", fields, where, zap.NewNop())
}

func TestDefine_AddsIdentifierField(t *testing.T) {
	typ := newTestType(&fakeClient{}, []string{"LastName", "Email"}, "")
	assert.Equal(t, []string{"Id", "LastName", "Email"}, typ.Fields())

	t.Run("identifier is not duplicated", func(t *testing.T) {
		typ := newTestType(&fakeClient{}, []string{"Id", "LastName"}, "")
		assert.Equal(t, []string{"Id", "LastName"}, typ.Fields())
	})
}

func TestType_Query(t *testing.T) {
	t.Run("builds statement with bound filter", func(t *testing.T) {
		client := &fakeClient{
			queryResp: &force.QueryResponse{Done: true, Records: []force.SObject{}},
		}
		typ := newTestType(client, []string{"LastName"}, "AccountId != null")

		_, err := typ.Query(context.Background())
		require.NoError(t, err)
		require.Len(t, client.queries, 1)
		assert.Equal(t, "SELECT Id, LastName FROM Contact WHERE AccountId != null", client.queries[0])
	})

	t.Run("extra clause is ANDed after bound clause", func(t *testing.T) {
		client := &fakeClient{
			queryResp: &force.QueryResponse{Done: true},
		}
		typ := newTestType(client, []string{"LastName"}, "AccountId != null")

		_, err := typ.QueryWhere(context.Background(), "Email != null")
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT Id, LastName FROM Contact WHERE (AccountId != null) AND (Email != null)",
			client.queries[0])
	})

	t.Run("follows pagination until done", func(t *testing.T) {
		client := &fakeClient{
			queryResp: &force.QueryResponse{
				TotalSize:      3,
				Done:           false,
				NextRecordsURL: "/services/data/v59.0/query/01g-2000",
				Records:        []force.SObject{{"Id": "1"}, {"Id": "2"}},
			},
			morePages: []*force.QueryResponse{
				{Done: true, Records: []force.SObject{{"Id": "3"}}},
			},
		}
		typ := newTestType(client, []string{"LastName"}, "")

		records, err := typ.Query(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "3", records[2].ID())
	})
}

func TestType_Get(t *testing.T) {
	client := &fakeClient{
		retrieved: force.SObject{"Id": "003000000000001", "LastName": "Stone"},
	}
	typ := newTestType(client, []string{"LastName", "Email"}, "")

	rec, err := typ.Get(context.Background(), "003000000000001")
	require.NoError(t, err)
	assert.Equal(t, "Stone", rec.GetString("LastName"))
	assert.Equal(t, []string{"Id", "LastName", "Email"}, client.fields, "retrieve uses the defined field list")
	assert.False(t, rec.Dirty(), "fetched record starts clean")
}

func TestType_Insert(t *testing.T) {
	client := &fakeClient{
		createResp: &force.SaveResult{ID: "003000000000005", Success: true},
	}
	typ := newTestType(client, []string{"LastName"}, "")

	rec := typ.New()
	rec.Set("LastName", "Ward")
	rec.Set("Id", "should-be-stripped")

	id, err := typ.Insert(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "003000000000005", id)
	assert.Equal(t, "003000000000005", rec.ID())
	assert.NotContains(t, client.created, "Id")
	assert.Equal(t, "Ward", client.created["LastName"])
	assert.False(t, rec.Dirty(), "inserted record is clean")
}

func TestType_Save(t *testing.T) {
	t.Run("sends only changed fields", func(t *testing.T) {
		client := &fakeClient{}
		typ := newTestType(client, []string{"LastName", "Email"}, "")

		rec := newRecordFromSObject(force.SObject{
			"Id":       "003000000000001",
			"LastName": "Stone",
			"Email":    "old@example.com",
		})
		rec.Set("Email", "new@example.com")

		require.NoError(t, typ.Save(context.Background(), rec))
		assert.Equal(t, "003000000000001", client.updatedID)
		assert.Equal(t, map[string]interface{}{"Email": "new@example.com"}, client.updatedWith)
		assert.False(t, rec.Dirty(), "save resets the snapshot")
	})

	t.Run("unchanged record makes no call", func(t *testing.T) {
		client := &fakeClient{}
		typ := newTestType(client, []string{"LastName"}, "")

		rec := newRecordFromSObject(force.SObject{"Id": "003000000000001", "LastName": "Stone"})
		require.NoError(t, typ.Save(context.Background(), rec))
		assert.Zero(t, client.updateCalls)
	})

	t.Run("record without identifier is rejected", func(t *testing.T) {
		typ := newTestType(&fakeClient{}, []string{"LastName"}, "")
		rec := typ.New()
		rec.Set("LastName", "Stone")

		err := typ.Save(context.Background(), rec)
		assert.ErrorContains(t, err, "no Id")
	})
}

func TestType_Upsert(t *testing.T) {
	client := &fakeClient{}
	typ := newTestType(client, []string{"LastName"}, "")

	rec := typ.New()
	rec.Set("LastName", "Ward")
	rec.Set("External_Key__c", "ext-1")

	require.NoError(t, typ.Upsert(context.Background(), "External_Key__c", "ext-1", rec))
	assert.NotContains(t, client.upsertWith, "External_Key__c", "external id field travels in the URL")
	assert.Equal(t, "003000000000009", rec.ID())
}

func TestType_Delete(t *testing.T) {
	client := &fakeClient{}
	typ := newTestType(client, []string{"LastName"}, "")

	require.NoError(t, typ.Delete(context.Background(), "003000000000001"))
	assert.Equal(t, "003000000000001", client.deletedID)
}

func TestType_Search(t *testing.T) {
	client := &fakeClient{
		searchResp: &force.SearchResponse{
			SearchRecords: []force.SObject{{"Id": "003000000000001", "LastName": "Stone"}},
		},
	}
	typ := newTestType(client, []string{"LastName"}, "")

	records, err := typ.Search(context.Background(), "stone")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "FIND {stone} IN ALL FIELDS RETURNING Contact(Id, LastName)", client.searchSOSL)
}

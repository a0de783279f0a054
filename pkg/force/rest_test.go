package force

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/natserract/forcekit/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hostedSession returns a session already bound to the test server via a
// pre-issued token.
func hostedSession(t *testing.T, srv *httptest.Server) *Session {
	t.Helper()
	session := newTestSession(t, &config.Config{
		LoginURL:    srv.URL,
		ClientID:    "app",
		APIVersion:  "v59.0",
		AccessToken: "tok-1",
		InstanceURL: srv.URL,
	})
	require.NoError(t, session.Login(context.Background()))
	return session
}

func TestQuery(t *testing.T) {
	var gotAuth, gotSOQL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/services/data/v59.0/query", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotSOQL = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(QueryResponse{
			TotalSize: 1,
			Done:      true,
			Records:   []SObject{{"Id": "003000000000001", "LastName": "Stone"}},
		})
	}))
	defer srv.Close()

	session := hostedSession(t, srv)
	resp, err := session.Query(context.Background(), "SELECT Id, LastName FROM Contact")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "SELECT Id, LastName FROM Contact", gotSOQL)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "003000000000001", resp.Records[0].ID())
}

func TestCreateUpdateDelete(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]interface{}
	}
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			json.Unmarshal(raw, &body)
		}
		calls = append(calls, call{method: r.Method, path: r.URL.Path, body: body})

		switch r.Method {
		case http.MethodPost:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(SaveResult{ID: "003000000000007", Success: true})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	session := hostedSession(t, srv)
	ctx := context.Background()

	result, err := session.Create(ctx, "Contact", map[string]interface{}{"LastName": "Ward"})
	require.NoError(t, err)
	assert.Equal(t, "003000000000007", result.ID)

	require.NoError(t, session.Update(ctx, "Contact", "003000000000007", map[string]interface{}{"Email": "w@example.com"}))
	require.NoError(t, session.Delete(ctx, "Contact", "003000000000007"))

	require.Len(t, calls, 3)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/services/data/v59.0/sobjects/Contact", calls[0].path)
	assert.Equal(t, "Ward", calls[0].body["LastName"])
	assert.Equal(t, http.MethodPatch, calls[1].method)
	assert.Equal(t, "/services/data/v59.0/sobjects/Contact/003000000000007", calls[1].path)
	assert.Equal(t, http.MethodDelete, calls[2].method)
}

func TestRetrieve_FieldList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Id,LastName", r.URL.Query().Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SObject{"Id": "003000000000001", "LastName": "Stone"})
	}))
	defer srv.Close()

	session := hostedSession(t, srv)
	record, err := session.Retrieve(context.Background(), "Contact", "003000000000001", "Id", "LastName")
	require.NoError(t, err)
	assert.Equal(t, "Stone", record["LastName"])
}

func TestUpsert_Path(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/services/data/v59.0/sobjects/Contact/External_Key__c/ext-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(SaveResult{ID: "003000000000008", Success: true})
	}))
	defer srv.Close()

	session := hostedSession(t, srv)
	result, err := session.Upsert(context.Background(), "Contact", "External_Key__c", "ext-1",
		map[string]interface{}{"LastName": "Ward"})
	require.NoError(t, err)
	assert.Equal(t, "003000000000008", result.ID)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode([]ErrorItem{{
			Message:   "unexpected token: FORM",
			ErrorCode: "MALFORMED_QUERY",
		}})
	}))
	defer srv.Close()

	session := hostedSession(t, srv)
	_, err := session.Query(context.Background(), "SELECT FORM")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Len(t, apiErr.Errors, 1)
	assert.Equal(t, "MALFORMED_QUERY", apiErr.Errors[0].ErrorCode)
	assert.Contains(t, apiErr.Error(), "MALFORMED_QUERY")
}

func TestExpiredSessionIsRefreshedOnce(t *testing.T) {
	var dataCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/services/oauth2/token":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(AuthResponse{AccessToken: "tok-2"})
		case "/services/data/v59.0/query":
			dataCalls++
			if r.Header.Get("Authorization") != "Bearer tok-2" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode([]ErrorItem{{Message: "Session expired", ErrorCode: "INVALID_SESSION_ID"}})
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(QueryResponse{Done: true, TotalSize: 0, Records: []SObject{}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	session := newTestSession(t, &config.Config{
		LoginURL:    srv.URL,
		ClientID:    "app",
		APIVersion:  "v59.0",
		Username:    "user@example.com",
		Password:    "pw",
		AccessToken: "stale",
		InstanceURL: srv.URL,
	})
	require.NoError(t, session.Login(context.Background()))

	resp, err := session.Query(context.Background(), "SELECT Id FROM Contact")
	require.NoError(t, err)
	assert.True(t, resp.Done)
	assert.Equal(t, 2, dataCalls, "one failed attempt, one retry")
}

func TestNotLoggedIn(t *testing.T) {
	session := newTestSession(t, &config.Config{
		LoginURL:   "https://login.salesforce.com",
		ClientID:   "app",
		APIVersion: "v59.0",
	})

	_, err := session.Query(context.Background(), "SELECT Id FROM Contact")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

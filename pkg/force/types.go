package force

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotLoggedIn is returned when a REST call is made on a cleared handle.
var ErrNotLoggedIn = errors.New("force: not logged in")

// ErrNoLoginStrategy is returned by Login when the configuration carries no
// credentials. The interactive web-server flow (AuthorizeURL + LoginWithCode)
// is the remaining option.
var ErrNoLoginStrategy = errors.New("force: no login strategy configured; use AuthorizeURL and LoginWithCode")

// AuthResponse represents the OAuth token response
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	InstanceURL  string `json:"instance_url,omitempty"`
	ID           string `json:"id,omitempty"`
	TokenType    string `json:"token_type"`
	IssuedAt     string `json:"issued_at,omitempty"`
	Signature    string `json:"signature,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// OAuthError is the token endpoint's error payload.
type OAuthError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *OAuthError) Error() string {
	return fmt.Sprintf("oauth error %s: %s", e.Code, e.Description)
}

// SObject is a single record as returned by the REST API. The "attributes"
// envelope (type + record URL) is kept as-is.
type SObject map[string]interface{}

// ID returns the record identifier, or the empty string when absent.
func (o SObject) ID() string {
	id, _ := o["Id"].(string)
	return id
}

// QueryResponse is one page of query results. When Done is false,
// NextRecordsURL locates the following page (see Session.QueryMore).
type QueryResponse struct {
	TotalSize      int       `json:"totalSize"`
	Done           bool      `json:"done"`
	NextRecordsURL string    `json:"nextRecordsUrl,omitempty"`
	Records        []SObject `json:"records"`
}

// SearchResponse holds SOSL search results.
type SearchResponse struct {
	SearchRecords []SObject `json:"searchRecords"`
}

// SaveResult is returned by Create and Upsert.
type SaveResult struct {
	ID      string      `json:"id"`
	Success bool        `json:"success"`
	Errors  []ErrorItem `json:"errors"`
}

// ErrorItem is one entry of the platform's error payload.
type ErrorItem struct {
	Message   string   `json:"message"`
	ErrorCode string   `json:"errorCode"`
	Fields    []string `json:"fields,omitempty"`
}

// APIError wraps a non-2xx REST response. The platform returns a JSON array of
// ErrorItem; all entries are preserved.
type APIError struct {
	StatusCode int
	Errors     []ErrorItem
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", item.ErrorCode, item.Message))
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, strings.Join(msgs, "; "))
}

// Version is one entry of the versions listing at /services/data.
type Version struct {
	Label   string `json:"label"`
	URL     string `json:"url"`
	Version string `json:"version"`
}

// DescribeGlobalResponse lists the sobjects visible to the session.
type DescribeGlobalResponse struct {
	Encoding     string            `json:"encoding"`
	MaxBatchSize int               `json:"maxBatchSize"`
	SObjects     []DescribeSObject `json:"sobjects"`
}

// DescribeSObject is the summary metadata of one object type.
type DescribeSObject struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	KeyPrefix  string `json:"keyPrefix"`
	Custom     bool   `json:"custom"`
	Queryable  bool   `json:"queryable"`
	Createable bool   `json:"createable"`
	Updateable bool   `json:"updateable"`
	Deletable  bool   `json:"deletable"`
}

// DescribeResponse is the per-object describe result. Field metadata beyond
// the common properties is available through the raw map.
type DescribeResponse struct {
	Name   string          `json:"name"`
	Label  string          `json:"label"`
	Custom bool            `json:"custom"`
	Fields []DescribeField `json:"fields"`
}

// DescribeField is the metadata of a single field.
type DescribeField struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Length     int    `json:"length"`
	Nillable   bool   `json:"nillable"`
	Createable bool   `json:"createable"`
	Updateable bool   `json:"updateable"`
}

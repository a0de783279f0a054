package force

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	httpclient "github.com/natserract/forcekit/pkg/http"
	"go.uber.org/zap"
)

// restPath prefixes a resource path with the versioned REST root.
func (s *Session) restPath(path string) string {
	return fmt.Sprintf("/services/data/%s%s", s.config.APIVersion, path)
}

// do executes one REST call against the instance the session is bound to,
// attaching the Bearer token. On a 401 the non-interactive login strategy is
// re-run once and the call retried, so callers never see an expired session.
// Non-2xx responses are decoded into *APIError.
func (s *Session) do(ctx context.Context, method, path string, query map[string]string, body interface{}, out interface{}) error {
	resp, err := s.doOnce(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if reauthErr := s.reauthenticate(ctx); reauthErr != nil {
			return s.apiError(resp)
		}
		resp, err = s.doOnce(ctx, method, path, query, body)
		if err != nil {
			return err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return s.apiError(resp)
	}

	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			s.logger.Error("Failed to parse response", zap.Error(err), zap.String("path", path))
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func (s *Session) doOnce(ctx context.Context, method, path string, query map[string]string, body interface{}) (*httpclient.Response, error) {
	token, instanceURL, err := s.token()
	if err != nil {
		return nil, err
	}

	endpoint, err := httpclient.BuildURL(instanceURL, path, query)
	if err != nil {
		s.logger.Error("Failed to build URL", zap.Error(err), zap.String("path", path))
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	headers := map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}

	s.logger.Debug("Making REST request", zap.String("method", method), zap.String("endpoint", endpoint))
	resp, err := s.httpClient.Do(httpclient.RequestOptions{
		Method:  method,
		URL:     endpoint,
		Headers: headers,
		Body:    body,
		Context: ctx,
	})
	if err != nil {
		s.logger.Error("REST request failed", zap.Error(err), zap.String("method", method), zap.String("endpoint", endpoint))
		return nil, fmt.Errorf("rest request failed: %w", err)
	}
	return resp, nil
}

// apiError decodes the platform's error payload, falling back to the raw body.
func (s *Session) apiError(resp *httpclient.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(resp.Body, &apiErr.Errors); err != nil || len(apiErr.Errors) == 0 {
		s.logger.Error("REST call failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(resp.Body)))
		return fmt.Errorf("rest call failed with status %d: %s", resp.StatusCode, string(resp.Body))
	}
	s.logger.Error("REST call failed",
		zap.Int("status_code", resp.StatusCode),
		zap.String("error_code", apiErr.Errors[0].ErrorCode),
		zap.String("message", apiErr.Errors[0].Message))
	return apiErr
}

// Versions lists the REST API versions available on the instance.
func (s *Session) Versions(ctx context.Context) ([]Version, error) {
	var versions []Version
	if err := s.do(ctx, http.MethodGet, "/services/data", nil, nil, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// Resources lists the resources available under the configured API version.
func (s *Session) Resources(ctx context.Context) (map[string]string, error) {
	var resources map[string]string
	if err := s.do(ctx, http.MethodGet, s.restPath(""), nil, nil, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// DescribeGlobal lists all object types visible to the session.
func (s *Session) DescribeGlobal(ctx context.Context) (*DescribeGlobalResponse, error) {
	var describe DescribeGlobalResponse
	if err := s.do(ctx, http.MethodGet, s.restPath("/sobjects"), nil, nil, &describe); err != nil {
		return nil, err
	}
	return &describe, nil
}

// Describe returns the full metadata of one object type.
func (s *Session) Describe(ctx context.Context, objtype string) (*DescribeResponse, error) {
	s.logger.Debug("Describing object type", zap.String("objtype", objtype))
	var describe DescribeResponse
	path := s.restPath(fmt.Sprintf("/sobjects/%s/describe", objtype))
	if err := s.do(ctx, http.MethodGet, path, nil, nil, &describe); err != nil {
		return nil, err
	}
	return &describe, nil
}

// Query executes a SOQL query and returns the first page of results.
func (s *Session) Query(ctx context.Context, soql string) (*QueryResponse, error) {
	s.logger.Debug("Executing query", zap.String("soql", soql))
	var result QueryResponse
	if err := s.do(ctx, http.MethodGet, s.restPath("/query"), map[string]string{"q": soql}, nil, &result); err != nil {
		return nil, err
	}
	s.logger.Debug("Query returned",
		zap.Int("total_size", result.TotalSize),
		zap.Bool("done", result.Done),
		zap.Int("records", len(result.Records)))
	return &result, nil
}

// QueryAll is Query including deleted and archived records.
func (s *Session) QueryAll(ctx context.Context, soql string) (*QueryResponse, error) {
	var result QueryResponse
	if err := s.do(ctx, http.MethodGet, s.restPath("/queryAll"), map[string]string{"q": soql}, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// QueryMore fetches the next page of a query using the NextRecordsURL of a
// previous response. The URL is an instance-relative path.
func (s *Session) QueryMore(ctx context.Context, nextRecordsURL string) (*QueryResponse, error) {
	var result QueryResponse
	if err := s.do(ctx, http.MethodGet, nextRecordsURL, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Search executes a SOSL search.
func (s *Session) Search(ctx context.Context, sosl string) (*SearchResponse, error) {
	s.logger.Debug("Executing search", zap.String("sosl", sosl))
	var result SearchResponse
	if err := s.do(ctx, http.MethodGet, s.restPath("/search"), map[string]string{"q": sosl}, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Retrieve fetches a single record by ID. When fields are given only those are
// returned; otherwise the platform returns every readable field.
func (s *Session) Retrieve(ctx context.Context, objtype, id string, fields ...string) (SObject, error) {
	var query map[string]string
	if len(fields) > 0 {
		query = map[string]string{"fields": strings.Join(fields, ",")}
	}
	var record SObject
	path := s.restPath(fmt.Sprintf("/sobjects/%s/%s", objtype, id))
	if err := s.do(ctx, http.MethodGet, path, query, nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Create inserts a new record and returns its ID.
func (s *Session) Create(ctx context.Context, objtype string, fields map[string]interface{}) (*SaveResult, error) {
	s.logger.Debug("Creating record", zap.String("objtype", objtype))
	var result SaveResult
	path := s.restPath(fmt.Sprintf("/sobjects/%s", objtype))
	if err := s.do(ctx, http.MethodPost, path, nil, fields, &result); err != nil {
		return nil, err
	}
	s.logger.Info("Created record", zap.String("objtype", objtype), zap.String("id", result.ID))
	return &result, nil
}

// Update applies the given field changes to an existing record.
func (s *Session) Update(ctx context.Context, objtype, id string, changes map[string]interface{}) error {
	s.logger.Debug("Updating record", zap.String("objtype", objtype), zap.String("id", id))
	path := s.restPath(fmt.Sprintf("/sobjects/%s/%s", objtype, id))
	if err := s.do(ctx, http.MethodPatch, path, nil, changes, nil); err != nil {
		return err
	}
	s.logger.Info("Updated record", zap.String("objtype", objtype), zap.String("id", id))
	return nil
}

// Upsert creates or updates a record addressed by an external ID field.
func (s *Session) Upsert(ctx context.Context, objtype, externalIDField, externalID string, fields map[string]interface{}) (*SaveResult, error) {
	s.logger.Debug("Upserting record",
		zap.String("objtype", objtype),
		zap.String("external_id_field", externalIDField),
		zap.String("external_id", externalID))
	var result SaveResult
	path := s.restPath(fmt.Sprintf("/sobjects/%s/%s/%s", objtype, externalIDField, externalID))
	if err := s.do(ctx, http.MethodPatch, path, nil, fields, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a record by ID.
func (s *Session) Delete(ctx context.Context, objtype, id string) error {
	s.logger.Debug("Deleting record", zap.String("objtype", objtype), zap.String("id", id))
	path := s.restPath(fmt.Sprintf("/sobjects/%s/%s", objtype, id))
	if err := s.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return err
	}
	s.logger.Info("Deleted record", zap.String("objtype", objtype), zap.String("id", id))
	return nil
}

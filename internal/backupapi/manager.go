package backupapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjacquet/backup_client/internal/apierrors"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/google/go-querystring/query"
)

// Manager operation names, used in span names and metric labels.
const (
	OpCreate = "create"
	OpGet    = "get"
	OpDelete = "delete"
	OpList   = "list"
	OpUpdate = "update"
)

// DefaultListLimit is the page size used when the caller does not choose one.
const DefaultListLimit = 100

// ListOptions are the pagination and filter parameters of a list call.
// Limit and Offset are sent as-is; Search travels as the JSON request body.
type ListOptions struct {
	Limit  int           `url:"limit"`
	Offset int           `url:"offset"`
	Search models.Search `url:"-"`
}

// DefaultListOptions returns limit 100, offset 0 and no filter.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: DefaultListLimit}
}

// Manager implements create, get, delete, list and update for one resource
// kind. Endpoint and token are fetched from the facade on every call, so a
// manager built before the endpoint is known still works later.
type Manager struct {
	client *Client
	kind   models.ResourceKind
}

func newManager(c *Client, kind models.ResourceKind) *Manager {
	return &Manager{client: c, kind: kind}
}

// Kind returns the resource kind served by the manager.
func (m *Manager) Kind() models.ResourceKind {
	return m.kind
}

// BaseURL returns "<endpoint>/v<version>/<resource>/".
func (m *Manager) BaseURL(ctx context.Context) (string, error) {
	endpoint, err := m.client.Endpoint(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/v%s/%s/", endpoint, m.client.Version(), m.kind.Path), nil
}

// resourceURL returns the base URL joined with the escaped id and optional
// sub-path segments.
func (m *Manager) resourceURL(ctx context.Context, id string, sub ...string) (string, error) {
	base, err := m.BaseURL(ctx)
	if err != nil {
		return "", err
	}
	u := base + url.PathEscape(id)
	for _, s := range sub {
		u += "/" + url.PathEscape(s)
	}
	return u, nil
}

// send issues one request with a fresh token and checks the status against
// the accepted ones. Any other status becomes an APIClientError.
func (m *Manager) send(ctx context.Context, method, target, operation string, q url.Values, body interface{}, accept ...int) (*resty.Response, error) {
	token, err := m.client.AuthToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.http.do(ctx, request{
		method:    method,
		url:       target,
		resource:  m.kind.Path,
		operation: operation,
		token:     token,
		query:     q,
		body:      body,
	})
	if err != nil {
		return nil, err
	}

	for _, code := range accept {
		if resp.StatusCode() == code {
			return resp, nil
		}
	}
	return resp, apierrors.NewAPIClientError(method, target, resp.StatusCode(), resp.Body())
}

// Create posts doc and returns the server-assigned id. Success is 201.
func (m *Manager) Create(ctx context.Context, doc models.Document) (string, error) {
	target, err := m.BaseURL(ctx)
	if err != nil {
		return "", err
	}
	resp, err := m.send(ctx, http.MethodPost, target, OpCreate, nil, doc, http.StatusCreated)
	if err != nil {
		return "", err
	}

	created, err := decodeDocument(resp)
	if err != nil {
		return "", err
	}
	id, ok := created[m.kind.IDField]
	if !ok || id == nil {
		return "", fmt.Errorf("create %s response has no %s field", m.kind.Name, m.kind.IDField)
	}
	if s, ok := id.(string); ok {
		return s, nil
	}
	return fmt.Sprint(id), nil
}

// Get returns the document with the given id. A 404 is not an error: it
// yields a nil document and a nil error.
func (m *Manager) Get(ctx context.Context, id string) (models.Document, error) {
	target, err := m.resourceURL(ctx, id)
	if err != nil {
		return nil, err
	}
	resp, err := m.send(ctx, http.MethodGet, target, OpGet, nil, nil, http.StatusOK, http.StatusNotFound)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	return decodeDocument(resp)
}

// Delete removes the document with the given id. Success is 204.
func (m *Manager) Delete(ctx context.Context, id string) error {
	target, err := m.resourceURL(ctx, id)
	if err != nil {
		return err
	}
	_, err = m.send(ctx, http.MethodDelete, target, OpDelete, nil, nil, http.StatusNoContent)
	return err
}

// List returns one page of documents found under the resource's envelope
// key. A missing or empty envelope yields an empty slice.
func (m *Manager) List(ctx context.Context, opts ListOptions) ([]models.Document, error) {
	target, err := m.BaseURL(ctx)
	if err != nil {
		return nil, err
	}
	q, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode list parameters: %w", err)
	}
	search := opts.Search
	if search == nil {
		search = models.Search{}
	}

	resp, err := m.send(ctx, http.MethodGet, target, OpList, q, search, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode %s list from %s: %w", m.kind.Name, target, err)
		}
	}

	docs := []models.Document{}
	raw, ok := envelope[m.kind.EnvelopeKey]
	if !ok || string(raw) == "null" {
		return docs, nil
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s list from %s: %w", m.kind.Name, target, err)
	}
	return docs, nil
}

// Update patches the document with a partial document and returns the new
// version. Success is 200.
func (m *Manager) Update(ctx context.Context, id string, patch models.Document) (int, error) {
	target, err := m.resourceURL(ctx, id)
	if err != nil {
		return 0, err
	}
	resp, err := m.send(ctx, http.MethodPatch, target, OpUpdate, nil, patch, http.StatusOK)
	if err != nil {
		return 0, err
	}

	var out models.UpdateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return 0, fmt.Errorf("failed to decode %s update response from %s: %w", m.kind.Name, target, err)
	}
	return out.Version, nil
}

// decodeDocument parses a JSON object body. An empty body yields nil.
func decodeDocument(resp *resty.Response) (models.Document, error) {
	if len(resp.Body()) == 0 {
		return nil, nil
	}
	var doc models.Document
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", resp.Request.URL, err)
	}
	return doc, nil
}

// PrepareSearch turns a free-text term into a search filter matching any
// field. An empty term means no constraint.
func PrepareSearch(term string) models.Search {
	if term == "" {
		return models.Search{}
	}
	return models.Search{"match": []interface{}{map[string]interface{}{"_all": term}}}
}

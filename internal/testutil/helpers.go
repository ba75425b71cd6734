// Package testutil provides shared test utilities and helper functions.
// This file contains the fluent mock server builder used by the identity,
// backup API and CLI tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

// RecordedRequest is a request received by a MockServer.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSON decodes the request body into a generic document.
func (r RecordedRequest) JSON(t *testing.T) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	if err := json.Unmarshal(r.Body, &doc); err != nil {
		t.Fatalf("Failed to decode body of %s %s: %v (body=%q)", r.Method, r.Path, err, r.Body)
	}
	return doc
}

type catalogEntry struct {
	serviceType string
	iface       string
	url         string
	region      string
}

// MockServerBuilder provides a fluent interface for creating mock HTTP servers.
// Handlers are keyed by method and path; unmatched requests get a 404 with
// a JSON error body.
//
// Example usage:
//
//	server := testutil.NewMockServer().
//	    WithIdentityV3(testutil.TestToken, testutil.TestProjectID).
//	    WithCatalogEndpoint("backup", "public", testutil.SelfURL).
//	    WithResponse(http.MethodDelete, "/v2/jobs/abc", http.StatusNoContent, nil).
//	    Build()
//	defer server.Close()
type MockServerBuilder struct {
	handlers map[string]http.HandlerFunc
	catalog  []catalogEntry
	tokenTTL time.Duration
	useTLS   bool
}

// NewMockServer creates a new MockServerBuilder.
func NewMockServer() *MockServerBuilder {
	return &MockServerBuilder{
		handlers: make(map[string]http.HandlerFunc),
		tokenTTL: time.Hour,
	}
}

func routeKey(method, path string) string {
	return method + " " + path
}

// WithTLS enables TLS for the mock server.
func (b *MockServerBuilder) WithTLS() *MockServerBuilder {
	b.useTLS = true
	return b
}

// WithTokenTTL sets how long issued identity tokens stay valid.
func (b *MockServerBuilder) WithTokenTTL(ttl time.Duration) *MockServerBuilder {
	b.tokenTTL = ttl
	return b
}

// WithCatalogEndpoint adds a service catalog entry returned by the identity
// handlers. A url of SelfURL points at the mock server itself.
func (b *MockServerBuilder) WithCatalogEndpoint(serviceType, iface, endpointURL string) *MockServerBuilder {
	return b.WithRegionalCatalogEndpoint(serviceType, iface, endpointURL, TestRegion)
}

// WithRegionalCatalogEndpoint is WithCatalogEndpoint with an explicit region.
func (b *MockServerBuilder) WithRegionalCatalogEndpoint(serviceType, iface, endpointURL, region string) *MockServerBuilder {
	b.catalog = append(b.catalog, catalogEntry{serviceType: serviceType, iface: iface, url: endpointURL, region: region})
	return b
}

// WithIdentityV3 serves POST /v3/auth/tokens, issuing token in the
// X-Subject-Token header, scoped to projectID.
func (b *MockServerBuilder) WithIdentityV3(token, projectID string) *MockServerBuilder {
	b.handlers[routeKey(http.MethodPost, PathIdentityV3Tokens)] = func(w http.ResponseWriter, r *http.Request) {
		catalog := make([]map[string]interface{}, 0, len(b.catalog))
		for _, e := range b.catalog {
			catalog = append(catalog, map[string]interface{}{
				"type": e.serviceType,
				"name": e.serviceType,
				"endpoints": []map[string]interface{}{{
					"interface": e.iface,
					"url":       b.resolveURL(r, e.url),
					"region":    e.region,
				}},
			})
		}
		w.Header().Set(SubjectTokenHeader, token)
		writeJSONStatus(w, http.StatusCreated, map[string]interface{}{
			"token": map[string]interface{}{
				"expires_at": time.Now().Add(b.tokenTTL).UTC().Format(time.RFC3339),
				"project":    map[string]interface{}{"id": projectID, "name": TestProjectName},
				"user":       map[string]interface{}{"id": TestUserID, "name": TestUsername},
				"catalog":    catalog,
			},
		})
	}
	return b
}

// WithIdentityV2 serves POST /v2.0/tokens, issuing token for tenantID.
func (b *MockServerBuilder) WithIdentityV2(token, tenantID string) *MockServerBuilder {
	b.handlers[routeKey(http.MethodPost, PathIdentityV2Tokens)] = func(w http.ResponseWriter, r *http.Request) {
		catalog := make([]map[string]interface{}, 0, len(b.catalog))
		for _, e := range b.catalog {
			key := strings.TrimSuffix(strings.ToLower(e.iface), "url") + "URL"
			catalog = append(catalog, map[string]interface{}{
				"type": e.serviceType,
				"name": e.serviceType,
				"endpoints": []map[string]interface{}{{
					key:      b.resolveURL(r, e.url),
					"region": e.region,
				}},
			})
		}
		writeJSONStatus(w, http.StatusOK, map[string]interface{}{
			"access": map[string]interface{}{
				"token": map[string]interface{}{
					"id":      token,
					"expires": time.Now().Add(b.tokenTTL).UTC().Format(time.RFC3339),
					"tenant":  map[string]interface{}{"id": tenantID, "name": TestProjectName},
				},
				"user":           map[string]interface{}{"id": TestUserID, "name": TestUsername},
				"serviceCatalog": catalog,
			},
		})
	}
	return b
}

// WithResponse answers method+path with status and, when body is non-nil,
// a JSON-encoded body.
func (b *MockServerBuilder) WithResponse(method, path string, status int, body interface{}) *MockServerBuilder {
	b.handlers[routeKey(method, path)] = func(w http.ResponseWriter, r *http.Request) {
		if body == nil {
			w.WriteHeader(status)
			return
		}
		writeJSONStatus(w, status, body)
	}
	return b
}

// WithRawResponse answers method+path with status and a raw body.
func (b *MockServerBuilder) WithRawResponse(method, path string, status int, body string) *MockServerBuilder {
	b.handlers[routeKey(method, path)] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
	return b
}

// WithErrorResponse answers method+path with status and an API error body
// carrying description.
func (b *MockServerBuilder) WithErrorResponse(method, path string, status int, description string) *MockServerBuilder {
	b.handlers[routeKey(method, path)] = func(w http.ResponseWriter, r *http.Request) {
		writeJSONStatus(w, status, map[string]string{
			"title":       http.StatusText(status),
			"description": description,
		})
	}
	return b
}

// WithCustomEndpoint adds a custom handler for method+path.
func (b *MockServerBuilder) WithCustomEndpoint(method, path string, handler http.HandlerFunc) *MockServerBuilder {
	b.handlers[routeKey(method, path)] = handler
	return b
}

func (b *MockServerBuilder) resolveURL(r *http.Request, endpointURL string) string {
	if !strings.Contains(endpointURL, SelfURL) {
		return endpointURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return strings.ReplaceAll(endpointURL, SelfURL, scheme+"://"+r.Host)
}

// MockServer is a running mock server that records every request.
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// Build creates and starts the configured HTTP test server.
func (b *MockServerBuilder) Build() *MockServer {
	ms := &MockServer{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ms.record(RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		if h, ok := b.handlers[routeKey(r.Method, r.URL.Path)]; ok {
			h(w, r)
			return
		}
		writeJSONStatus(w, http.StatusNotFound, map[string]string{
			"title":       "Not Found",
			"description": "The resource could not be found.",
		})
	})

	if b.useTLS {
		ms.Server = httptest.NewTLSServer(handler)
	} else {
		ms.Server = httptest.NewServer(handler)
	}
	return ms
}

func (ms *MockServer) record(r RecordedRequest) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = append(ms.requests, r)
}

// Requests returns a copy of every recorded request, in arrival order.
func (ms *MockServer) Requests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]RecordedRequest, len(ms.requests))
	copy(out, ms.requests)
	return out
}

// RequestsTo returns the recorded requests matching method and path.
func (ms *MockServer) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range ms.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// LastRequest returns the most recent request matching method and path.
func (ms *MockServer) LastRequest(t *testing.T, method, path string) RecordedRequest {
	t.Helper()
	reqs := ms.RequestsTo(method, path)
	if len(reqs) == 0 {
		t.Fatalf("No request recorded for %s %s", method, path)
	}
	return reqs[len(reqs)-1]
}

// AuthCount returns how many token requests the identity handlers received.
func (ms *MockServer) AuthCount() int {
	return len(ms.RequestsTo(http.MethodPost, PathIdentityV3Tokens)) +
		len(ms.RequestsTo(http.MethodPost, PathIdentityV2Tokens))
}

// IdentityV3URL returns the server's identity v3 auth URL.
func (ms *MockServer) IdentityV3URL() string {
	return ms.URL + PathIdentityV3
}

// IdentityV2URL returns the server's identity v2.0 auth URL.
func (ms *MockServer) IdentityV2URL() string {
	return ms.URL + PathIdentityV2
}

// writeJSONStatus writes a JSON response with the given status.
func writeJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Package apierrors defines the error taxonomy shared by the identity
// resolver and every backup API resource manager.
//
// Two error kinds exist:
//   - ConfigurationError: raised before any request is sent (missing auth
//     URL, unknown identity API version, no username or token).
//   - APIClientError: a request was sent and the server answered with a
//     status code the operation does not accept.
//
// "Not found" on a Get is not an error at all; managers return a nil
// document for it.
package apierrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// maxBodyPreview bounds the raw body text embedded in error messages.
const maxBodyPreview = 512

// ConfigurationError reports a credential or client setup problem detected
// before any network call.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// NewConfigurationError builds a ConfigurationError from a format string.
func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// APIClientError is returned when the backup API (or the identity service)
// answers with an unexpected status code. The raw body is kept so callers
// can inspect or log it.
type APIClientError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
	Message    string
}

func (e *APIClientError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unexpected response"
	}
	if e.URL == "" {
		return fmt.Sprintf("backup API error (status=%d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("backup API error: %s %s, status=%d: %s", e.Method, e.URL, e.StatusCode, msg)
}

// NewAPIClientError builds an APIClientError, extracting a readable message
// from the server body. The server reports failures as
// {"title": "...", "description": "..."}; description wins over title and
// the raw text is used when the body is not such a document.
func NewAPIClientError(method, url string, statusCode int, body []byte) *APIClientError {
	return &APIClientError{
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
		Body:       string(body),
		Message:    extractMessage(body),
	}
}

func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var doc struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &doc); err == nil {
		if doc.Description != "" {
			return doc.Description
		}
		if doc.Title != "" {
			return doc.Title
		}
	}

	if len(trimmed) > maxBodyPreview {
		return trimmed[:maxBodyPreview] + "..."
	}
	return trimmed
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsAPIClientError reports whether err wraps an APIClientError.
func IsAPIClientError(err error) bool {
	var target *APIClientError
	return errors.As(err, &target)
}

// StatusCode returns the HTTP status carried by an APIClientError in err's
// chain, or 0 when there is none.
func StatusCode(err error) int {
	var target *APIClientError
	if errors.As(err, &target) {
		return target.StatusCode
	}
	return 0
}

// BodyContains reports whether err is an APIClientError whose raw body
// contains substr. Used for narrowly scoped server defect workarounds.
func BodyContains(err error, substr string) bool {
	var target *APIClientError
	if !errors.As(err, &target) {
		return false
	}
	return strings.Contains(target.Body, substr)
}

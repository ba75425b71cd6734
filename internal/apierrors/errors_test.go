package apierrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAPIClientError_Message(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{
			name:        "description wins over title",
			body:        `{"title": "Not Found", "description": "No document found with ID abc"}`,
			wantMessage: "No document found with ID abc",
		},
		{
			name:        "title used when description missing",
			body:        `{"title": "Conflict"}`,
			wantMessage: "Conflict",
		},
		{
			name:        "raw text when body is not JSON",
			body:        "Internal Server Error",
			wantMessage: "Internal Server Error",
		},
		{
			name:        "empty body",
			body:        "",
			wantMessage: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIClientError("GET", "http://api/v1/jobs/abc", 404, []byte(tt.body))
			assert.Equal(t, tt.wantMessage, err.Message)
			assert.Equal(t, tt.body, err.Body)
			assert.Equal(t, 404, err.StatusCode)
		})
	}
}

func TestNewAPIClientError_TruncatesLongBody(t *testing.T) {
	body := strings.Repeat("x", maxBodyPreview+100)
	err := NewAPIClientError("GET", "http://api", 500, []byte(body))

	assert.True(t, strings.HasSuffix(err.Message, "..."))
	assert.Len(t, err.Message, maxBodyPreview+3)
	assert.Len(t, err.Body, len(body))
}

func TestAPIClientError_Error(t *testing.T) {
	err := NewAPIClientError("POST", "http://api/v1/jobs/", 500, []byte(`{"description":"boom"}`))
	assert.Equal(t, "backup API error: POST http://api/v1/jobs/, status=500: boom", err.Error())

	bare := &APIClientError{StatusCode: 400}
	assert.Equal(t, "backup API error (status=400): unexpected response", bare.Error())
}

func TestClassificationHelpers(t *testing.T) {
	apiErr := fmt.Errorf("listing jobs: %w", NewAPIClientError("GET", "u", 503, []byte("down")))
	cfgErr := fmt.Errorf("resolving session: %w", NewConfigurationError("no username or token supplied"))
	plain := errors.New("dial tcp: connection refused")

	assert.True(t, IsAPIClientError(apiErr))
	assert.False(t, IsAPIClientError(cfgErr))
	assert.False(t, IsAPIClientError(plain))

	assert.True(t, IsConfigurationError(cfgErr))
	assert.False(t, IsConfigurationError(apiErr))

	assert.Equal(t, 503, StatusCode(apiErr))
	assert.Equal(t, 0, StatusCode(plain))

	assert.True(t, BodyContains(apiErr, "down"))
	assert.False(t, BodyContains(apiErr, "up"))
	assert.False(t, BodyContains(plain, "connection"))

	assert.Equal(t, "configuration error: no username or token supplied", errors.Unwrap(cfgErr).Error())
}

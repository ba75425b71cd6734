package backupapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/fjacquet/backup_client/internal/telemetry"
	"github.com/fjacquet/backup_client/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNewTracerWrapperNilProvider(t *testing.T) {
	w := NewTracerWrapper(nil, "test")
	ctx, span := w.StartSpan(context.Background(), "op", trace.SpanKindInternal)
	defer span.End()

	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid(), "noop spans carry no context")
}

func TestManagerRecordsSpans(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodGet, "/v2/jobs/"+testutil.TestJobID, http.StatusOK, map[string]string{}).
		WithErrorResponse(http.MethodDelete, "/v2/jobs/"+testutil.TestJobID, http.StatusForbidden, "denied").
		Build()
	defer server.Close()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	c, _ := newTestClient(t, server, WithTracerProvider(tp))
	ctx := context.Background()

	_, err := c.Jobs.Get(ctx, testutil.TestJobID)
	require.NoError(t, err)
	err = c.Jobs.Delete(ctx, testutil.TestJobID)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	get := spans[0]
	assert.Equal(t, "backup.jobs.get", get.Name())
	assert.Equal(t, trace.SpanKindClient, get.SpanKind())
	assert.Equal(t, codes.Ok, get.Status().Code)
	status, ok := spanAttr(get, telemetry.AttrHTTPStatusCode)
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusOK), status.AsInt64())
	resource, ok := spanAttr(get, telemetry.AttrBackupResource)
	require.True(t, ok)
	assert.Equal(t, "jobs", resource.AsString())
	_, ok = spanAttr(get, telemetry.AttrBackupRequestID)
	assert.True(t, ok)

	del := spans[1]
	assert.Equal(t, "backup.jobs.delete", del.Name())
	assert.Equal(t, codes.Error, del.Status().Code)
}

func TestManagerPropagatesTraceContext(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodGet, "/v2/jobs/"+testutil.TestJobID, http.StatusOK, map[string]string{}).
		Build()
	defer server.Close()

	previous := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(previous)

	tp := sdktrace.NewTracerProvider()
	c, _ := newTestClient(t, server, WithTracerProvider(tp))

	_, err := c.Jobs.Get(context.Background(), testutil.TestJobID)
	require.NoError(t, err)

	req := server.LastRequest(t, http.MethodGet, "/v2/jobs/"+testutil.TestJobID)
	assert.NotEmpty(t, req.Header.Get("Traceparent"))
	assert.Equal(t, testutil.TestToken, req.Header.Get(HeaderAuthToken), "existing headers are kept")
}

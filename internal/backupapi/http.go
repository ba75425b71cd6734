package backupapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjacquet/backup_client/internal/telemetry"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HTTP header names used in backup API requests.
const (
	HeaderAuthToken   = "X-Auth-Token"
	HeaderContentType = "Content-Type"
	HeaderAccept      = "Accept"
	HeaderRequestID   = "X-Openstack-Request-Id"

	contentTypeJSON = "application/json"
)

var errClientClosed = errors.New("client is closed")

// request is one backup API call as issued by a manager.
type request struct {
	method    string
	url       string
	resource  string
	operation string
	token     string
	query     url.Values
	body      interface{}
}

// HTTPClient sends backup API requests. Each call is a single attempt: no
// retries are configured. Every request gets a span, a correlation id and
// a metrics observation.
type HTTPClient struct {
	client  *resty.Client
	tracing *TracerWrapper
	metrics *RequestMetrics

	// Connection tracking for graceful shutdown
	mu         sync.Mutex
	activeReqs int32
	closed     bool
	closeChan  chan struct{}
}

// NewHTTPClient wraps client. The search filter of list calls travels as a
// GET body, so GET payloads are enabled.
func NewHTTPClient(client *resty.Client, tracing *TracerWrapper, metrics *RequestMetrics) *HTTPClient {
	if tracing == nil {
		tracing = NewTracerWrapper(nil, tracerName)
	}
	client.SetAllowGetMethodPayload(true)
	return &HTTPClient{
		client:  client,
		tracing: tracing,
		metrics: metrics,
	}
}

// Resty returns the underlying resty client.
func (c *HTTPClient) Resty() *resty.Client {
	return c.client
}

func (c *HTTPClient) acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClientClosed
	}
	atomic.AddInt32(&c.activeReqs, 1)
	return nil
}

func (c *HTTPClient) release() {
	if atomic.AddInt32(&c.activeReqs, -1) == 0 {
		c.mu.Lock()
		if c.closed && c.closeChan != nil {
			close(c.closeChan)
			c.closeChan = nil
		}
		c.mu.Unlock()
	}
}

// do sends req and returns the raw response. An error is returned only when
// no response was received; status interpretation is left to the caller.
func (c *HTTPClient) do(ctx context.Context, req request) (*resty.Response, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.release()

	ctx, span := c.tracing.StartSpan(ctx, "backup."+req.resource+"."+req.operation, trace.SpanKindClient,
		attribute.String(telemetry.AttrBackupResource, req.resource),
		attribute.String(telemetry.AttrBackupOperation, req.operation),
	)
	defer span.End()

	requestID := uuid.NewString()
	span.SetAttributes(attribute.String(telemetry.AttrBackupRequestID, requestID))

	headers := injectTraceContext(ctx, map[string]string{
		HeaderAuthToken:   req.token,
		HeaderContentType: contentTypeJSON,
		HeaderAccept:      contentTypeJSON,
		HeaderRequestID:   requestID,
	})

	r := c.client.R().
		SetContext(ctx).
		SetHeaders(headers)
	if req.query != nil {
		r.SetQueryParamsFromValues(req.query)
	}

	var requestSize int64
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			recordError(span, err)
			return nil, fmt.Errorf("failed to encode %s %s request body: %w", req.resource, req.operation, err)
		}
		requestSize = int64(len(payload))
		r.SetBody(payload)
	}

	start := time.Now()
	resp, err := r.Execute(req.method, req.url)
	duration := time.Since(start)

	if err != nil {
		c.metrics.Observe(RequestKey{Resource: req.resource, Operation: req.operation}, duration)
		err = fmt.Errorf("%s request to %s failed: %w", req.method, req.url, err)
		recordError(span, err)
		return nil, err
	}

	c.metrics.Observe(RequestKey{Resource: req.resource, Operation: req.operation, Code: resp.StatusCode()}, duration)
	recordHTTPAttributes(span, req.method, req.url, resp.StatusCode(), requestSize, int64(len(resp.Body())), duration)
	if resp.IsError() {
		span.SetStatus(codes.Error, resp.Status())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	log.WithField("request_id", requestID).Debugf("%s %s -> %d (%s)", req.method, req.url, resp.StatusCode(), duration)
	return resp, nil
}

// Close waits for active requests to complete (up to 30 seconds) and then
// closes idle connections.
func (c *HTTPClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return c.CloseWithContext(ctx)
}

// CloseWithContext is Close with caller-controlled timeout.
func (c *HTTPClient) CloseWithContext(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("client already closed")
	}
	c.closed = true

	activeCount := atomic.LoadInt32(&c.activeReqs)
	if activeCount > 0 {
		c.closeChan = make(chan struct{})
		ch := c.closeChan
		c.mu.Unlock()

		select {
		case <-ch:
			log.Debug("All active requests completed during shutdown")
		case <-ctx.Done():
			log.Warnf("Timeout waiting for %d active requests during shutdown", activeCount)
			return ctx.Err()
		}
	} else {
		c.mu.Unlock()
	}

	c.client.GetClient().CloseIdleConnections()
	return nil
}

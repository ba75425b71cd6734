// Package backupapi is the client library for the backup API: a facade
// that resolves an identity session, the service endpoint and the client
// id once, and one resource manager per collection (jobs, backups, clients,
// sessions, actions) built on a single generic Manager.
package backupapi

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fjacquet/backup_client/internal/apierrors"
	"github.com/fjacquet/backup_client/internal/identity"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/fjacquet/backup_client/internal/transport"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "backup-client/http-client"

	// ServiceTypeBackup is the catalog service type of the backup API.
	ServiceTypeBackup = "backup"
)

// ClientOption configures optional Client settings.
type ClientOption func(*clientOptions)

type clientOptions struct {
	session        identity.Session
	endpoint       string
	tracerProvider trace.TracerProvider
	metrics        *RequestMetrics
	restyClient    *resty.Client
	hostname       func() (string, error)
}

func defaultClientOptions() clientOptions {
	return clientOptions{
		hostname: os.Hostname,
	}
}

// WithSession supplies a pre-built identity session. Credential resolution
// is skipped entirely and no auth URL is required.
func WithSession(s identity.Session) ClientOption {
	return func(o *clientOptions) {
		o.session = s
	}
}

// WithEndpoint overrides the backup API base URL. It wins over the
// BackupURL option and over the service catalog.
func WithEndpoint(endpoint string) ClientOption {
	return func(o *clientOptions) {
		o.endpoint = endpoint
	}
}

// WithTracerProvider sets the TracerProvider for distributed tracing.
// If not provided, tracing operations use a noop provider (no overhead).
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(o *clientOptions) {
		o.tracerProvider = tp
	}
}

// WithMetrics records every request in m.
func WithMetrics(m *RequestMetrics) ClientOption {
	return func(o *clientOptions) {
		o.metrics = m
	}
}

// WithRestyClient replaces the HTTP client built from the TLS options.
func WithRestyClient(c *resty.Client) ClientOption {
	return func(o *clientOptions) {
		o.restyClient = c
	}
}

// WithHostname replaces os.Hostname when deriving the client id.
func WithHostname(fn func() (string, error)) ClientOption {
	return func(o *clientOptions) {
		o.hostname = fn
	}
}

// Client is the backup API facade. It owns the identity session, the
// resolved endpoint and the derived client id, each computed at most once,
// and exposes one manager per resource kind.
//
// The token is not memoized here: AuthToken asks the session on every call.
type Client struct {
	opts     models.ImmutableOptions
	http     *HTTPClient
	hostname func() (string, error)

	endpointOverride string
	session          lazy[identity.Session]
	endpoint         lazy[string]
	clientID         lazy[string]

	Jobs     *JobManager
	Backups  *Manager
	Clients  *Manager
	Sessions *SessionManager
	Actions  *Manager
}

// NewClient builds the facade for the given backup API major version
// ("1" or "2"; empty means "2").
func NewClient(version string, opts models.Options, options ...ClientOption) (*Client, error) {
	switch version {
	case "", models.BackupAPIVersion2:
		return NewV2Client(opts, options...)
	case models.BackupAPIVersion1:
		return NewV1Client(opts, options...)
	}
	return nil, apierrors.NewConfigurationError("unsupported backup API version %q (must be 1 or 2)", version)
}

// NewV1Client builds a facade speaking /v1/ paths.
func NewV1Client(opts models.Options, options ...ClientOption) (*Client, error) {
	opts.BackupAPIVersion = models.BackupAPIVersion1
	return newClient(opts, options...)
}

// NewV2Client builds a facade speaking /v2/ paths.
func NewV2Client(opts models.Options, options ...ClientOption) (*Client, error) {
	opts.BackupAPIVersion = models.BackupAPIVersion2
	return newClient(opts, options...)
}

func newClient(opts models.Options, options ...ClientOption) (*Client, error) {
	o := defaultClientOptions()
	for _, opt := range options {
		opt(&o)
	}

	frozen, err := models.NewImmutableOptions(opts)
	if err != nil {
		return nil, &apierrors.ConfigurationError{Msg: err.Error()}
	}

	if o.session == nil && frozen.AuthURL() == "" {
		return nil, apierrors.NewConfigurationError("an auth URL is required when no session is supplied")
	}

	rc := o.restyClient
	if rc == nil {
		rc, err = transport.NewRestyClient(transport.TLSOptions{
			Insecure: frozen.Insecure(),
			CACert:   frozen.CACert(),
			Cert:     frozen.Cert(),
			Key:      frozen.Key(),
		}, frozen.Timeout())
		if err != nil {
			return nil, apierrors.NewConfigurationError("%v", err)
		}
	}

	c := &Client{
		opts:             frozen,
		http:             NewHTTPClient(rc, NewTracerWrapper(o.tracerProvider, tracerName), o.metrics),
		hostname:         o.hostname,
		endpointOverride: strings.TrimRight(o.endpoint, "/"),
	}
	if o.session != nil {
		c.session.Set(o.session)
	}

	c.Jobs = &JobManager{Manager: newManager(c, models.JobKind)}
	c.Backups = newManager(c, models.BackupKind)
	c.Clients = newManager(c, models.ClientKind)
	c.Sessions = &SessionManager{Manager: newManager(c, models.SessionKind)}
	c.Actions = newManager(c, models.ActionKind)

	log.Debugf("Backup client created: version=%s %s", frozen.BackupAPIVersion(), frozen.Options())
	return c, nil
}

// Version returns the backup API major version ("1" or "2").
func (c *Client) Version() string {
	return c.opts.BackupAPIVersion()
}

// Options returns the frozen options the client was built with.
func (c *Client) Options() models.ImmutableOptions {
	return c.opts
}

// Session returns the identity session, resolving credentials on first use.
func (c *Client) Session() (identity.Session, error) {
	return c.session.Get(func() (identity.Session, error) {
		sess, err := identity.NewSession(c.opts.Options(), c.http.Resty())
		if err != nil {
			return nil, err
		}
		return sess, nil
	})
}

// Endpoint returns the backup API base URL. An explicit endpoint (option or
// BackupURL) is returned verbatim; otherwise the catalog is consulted once
// for the "backup" service at the configured endpoint type.
func (c *Client) Endpoint(ctx context.Context) (string, error) {
	return c.endpoint.Get(func() (string, error) {
		if c.endpointOverride != "" {
			return c.endpointOverride, nil
		}
		if u := c.opts.BackupURL(); u != "" {
			return strings.TrimRight(u, "/"), nil
		}
		sess, err := c.Session()
		if err != nil {
			return "", err
		}
		u, err := sess.URLFor(ctx, ServiceTypeBackup, c.opts.EndpointType())
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup endpoint: %w", err)
		}
		log.Debugf("Resolved backup endpoint from catalog: %s", u)
		return u, nil
	})
}

// AuthToken returns a token from the session. It is never cached here.
func (c *Client) AuthToken(ctx context.Context) (string, error) {
	sess, err := c.Session()
	if err != nil {
		return "", err
	}
	return sess.GetToken(ctx)
}

// ClientID returns "<project id>_<hostname>", computed once.
func (c *Client) ClientID(ctx context.Context) (string, error) {
	return c.clientID.Get(func() (string, error) {
		sess, err := c.Session()
		if err != nil {
			return "", err
		}
		projectID, err := sess.GetProjectID(ctx)
		if err != nil {
			return "", err
		}
		host, err := c.hostname()
		if err != nil {
			return "", fmt.Errorf("failed to read hostname: %w", err)
		}
		return projectID + "_" + host, nil
	})
}

// Close releases the HTTP client.
func (c *Client) Close() error {
	return c.http.Close()
}

package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fjacquet/backup_client/internal/apierrors"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/fjacquet/backup_client/internal/telemetry"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HeaderSubjectToken carries the issued token in identity v3 responses.
const HeaderSubjectToken = "X-Subject-Token"

const tracerName = "backup-client/identity"

// Session is an authenticated handle: it mints bearer tokens, reports the
// scoped project id and resolves service endpoints from the catalog.
//
// Callers may supply their own implementation to the client facade, which
// then skips credential resolution entirely.
type Session interface {
	GetToken(ctx context.Context) (string, error)
	GetProjectID(ctx context.Context) (string, error)
	URLFor(ctx context.Context, serviceType, iface string) (string, error)
}

// KeystoneSession authenticates against a Keystone-compatible identity
// service with the selected Plugin. The token and catalog are cached until
// shortly before the token expires.
type KeystoneSession struct {
	plugin Plugin
	client *resty.Client
	region string
	cache  *TokenCache

	mu sync.Mutex // serializes authentication
}

// NewSession selects the auth plugin for opts and returns a session that
// authenticates lazily on first use. Configuration errors (unknown identity
// version, no username or token) are returned here, before any request.
func NewSession(opts models.Options, client *resty.Client) (*KeystoneSession, error) {
	plugin, err := GetAuthPlugin(opts)
	if err != nil {
		return nil, err
	}
	log.Debugf("Identity plugin selected: method=%s version=%s url=%s",
		plugin.Method(), plugin.AuthVersion(), plugin.TokenURL())
	return NewSessionFromPlugin(plugin, client, opts.RegionName), nil
}

// NewSessionFromPlugin builds a session around an explicit plugin.
func NewSessionFromPlugin(plugin Plugin, client *resty.Client, region string) *KeystoneSession {
	return &KeystoneSession{
		plugin: plugin,
		client: client,
		region: region,
		cache:  NewTokenCache(defaultExpiryMargin),
	}
}

// Plugin returns the authentication plugin in use.
func (s *KeystoneSession) Plugin() Plugin {
	return s.plugin
}

// GetToken returns a valid token, authenticating when none is cached.
func (s *KeystoneSession) GetToken(ctx context.Context) (string, error) {
	ref, err := s.authRef(ctx)
	if err != nil {
		return "", err
	}
	return ref.Token, nil
}

// GetProjectID returns the id of the project the token is scoped to.
func (s *KeystoneSession) GetProjectID(ctx context.Context) (string, error) {
	ref, err := s.authRef(ctx)
	if err != nil {
		return "", err
	}
	if ref.ProjectID == "" {
		return "", fmt.Errorf("identity token is not scoped to a project")
	}
	return ref.ProjectID, nil
}

// URLFor resolves serviceType at the given interface from the catalog,
// restricted to the session's region when one is configured.
func (s *KeystoneSession) URLFor(ctx context.Context, serviceType, iface string) (string, error) {
	ref, err := s.authRef(ctx)
	if err != nil {
		return "", err
	}
	return ref.Catalog.URLFor(serviceType, iface, s.region)
}

// Invalidate drops the cached token so the next call re-authenticates.
func (s *KeystoneSession) Invalidate() {
	s.cache.Flush()
}

func (s *KeystoneSession) authRef(ctx context.Context) (*AuthRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ref, ok := s.cache.Get(); ok {
		return ref, nil
	}

	ref, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ref)
	return ref, nil
}

func (s *KeystoneSession) authenticate(ctx context.Context) (*AuthRef, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "identity.authenticate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(telemetry.AttrIdentityMethod, s.plugin.Method()),
			attribute.String(telemetry.AttrIdentityVersion, s.plugin.AuthVersion()),
		))
	defer span.End()

	ref, err := s.requestToken(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	return ref, nil
}

func (s *KeystoneSession) requestToken(ctx context.Context) (*AuthRef, error) {
	url := s.plugin.TokenURL()
	start := time.Now()

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(s.plugin.RequestBody()).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("identity request to %s failed: %w", url, err)
	}

	log.Debugf("Identity %s authentication: url=%s status=%d duration=%s",
		s.plugin.Method(), url, resp.StatusCode(), time.Since(start))
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String(telemetry.AttrHTTPURL, url),
		attribute.Int(telemetry.AttrHTTPStatusCode, resp.StatusCode()),
	)

	switch s.plugin.AuthVersion() {
	case models.IdentityAPIVersion3:
		if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
			return nil, apierrors.NewAPIClientError(http.MethodPost, url, resp.StatusCode(), resp.Body())
		}
		var body v3TokenResponse
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return nil, fmt.Errorf("failed to decode identity v3 response from %s: %w", url, err)
		}
		token := resp.Header().Get(HeaderSubjectToken)
		if token == "" {
			return nil, fmt.Errorf("identity v3 response from %s has no %s header", url, HeaderSubjectToken)
		}
		return body.authRef(token), nil

	default:
		if resp.StatusCode() != http.StatusOK {
			return nil, apierrors.NewAPIClientError(http.MethodPost, url, resp.StatusCode(), resp.Body())
		}
		var body v2TokenResponse
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return nil, fmt.Errorf("failed to decode identity v2.0 response from %s: %w", url, err)
		}
		if body.Access.Token.ID == "" {
			return nil, fmt.Errorf("identity v2.0 response from %s has no token", url)
		}
		return body.authRef(), nil
	}
}

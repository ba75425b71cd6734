// Package transport builds the resty HTTP clients shared by the identity
// resolver and the backup API managers. It owns the TLS policy (verify,
// insecure, custom CA bundle, client certificate) and the connection pool
// settings.
package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 1 * time.Minute // Default timeout for HTTP requests

	// Connection pool configuration
	maxIdleConns        = 100              // Total idle connections across all hosts
	maxIdleConnsPerHost = 20               // Idle connections per host (default is 2, too low)
	idleConnTimeout     = 90 * time.Second // Timeout for idle connections
	tlsHandshakeTimeout = 10 * time.Second
)

// TLSOptions is the TLS verification policy of a client.
//
// Insecure disables certificate verification entirely. Otherwise the system
// roots are used, extended with CACert when set. Cert and Key present a
// client certificate.
type TLSOptions struct {
	Insecure bool
	CACert   string
	Cert     string
	Key      string
}

// NewTLSConfig builds a *tls.Config for the policy. TLS 1.2 is the minimum.
func NewTLSConfig(opts TLSOptions) (*tls.Config, error) {
	cfg := &tls.Config{
		InsecureSkipVerify: opts.Insecure, //nolint:gosec // explicit user choice
		MinVersion:         tls.VersionTLS12,
	}

	if opts.CACert != "" && !opts.Insecure {
		pem, err := os.ReadFile(opts.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle %s: %w", opts.CACert, err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in CA bundle %s", opts.CACert)
		}
		cfg.RootCAs = pool
	}

	if opts.Cert != "" {
		keyFile := opts.Key
		if keyFile == "" {
			// A combined PEM holds both certificate and key.
			keyFile = opts.Cert
		}
		pair, err := tls.LoadX509KeyPair(opts.Cert, keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate %s: %w", opts.Cert, err)
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	return cfg, nil
}

// NewRestyClient creates a resty client with the TLS policy applied and a
// pooled transport. No retry policy is configured: a failed call surfaces
// immediately and retrying is left to the caller.
func NewRestyClient(opts TLSOptions, timeout time.Duration) (*resty.Client, error) {
	tlsConfig, err := NewTLSConfig(opts)
	if err != nil {
		return nil, err
	}

	if opts.Insecure {
		log.Warn("SECURITY WARNING: TLS certificate verification disabled")
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().SetTimeout(timeout)

	httpClient := client.GetClient()
	httpClient.Transport = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
		TLSClientConfig:     tlsConfig,
	}

	return client, nil
}

// Package models defines the core data structures for the backup client.
package models

import (
	"time"
)

// ImmutableOptions holds the options a client facade was built with, frozen
// after merging and validation. Options are mutable only at construction
// time; the facade keeps this value-type snapshot so nothing downstream can
// change credentials or endpoints mid-session.
//
// All accessors return copies.
type ImmutableOptions struct {
	username          string
	password          string
	token             string
	tenantName        string
	tenantID          string
	projectName       string
	projectID         string
	userDomainName    string
	userDomainID      string
	projectDomainName string
	projectDomainID   string
	regionName        string

	authURL            string
	backupURL          string
	endpointType       string
	identityAPIVersion string
	backupAPIVersion   string

	caCert   string
	cert     string
	key      string
	insecure bool

	timeout time.Duration
}

// NewImmutableOptions applies defaults, validates opts and freezes them.
func NewImmutableOptions(opts Options) (ImmutableOptions, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return ImmutableOptions{}, err
	}

	return ImmutableOptions{
		username:          opts.Username,
		password:          opts.Password,
		token:             opts.Token,
		tenantName:        opts.TenantName,
		tenantID:          opts.TenantID,
		projectName:       opts.ProjectName,
		projectID:         opts.ProjectID,
		userDomainName:    opts.UserDomainName,
		userDomainID:      opts.UserDomainID,
		projectDomainName: opts.ProjectDomainName,
		projectDomainID:   opts.ProjectDomainID,
		regionName:        opts.RegionName,

		authURL:            opts.AuthURL,
		backupURL:          opts.BackupURL,
		endpointType:       opts.EndpointType,
		identityAPIVersion: opts.IdentityAPIVersion,
		backupAPIVersion:   opts.BackupAPIVersion,

		caCert:   opts.CACert,
		cert:     opts.Cert,
		key:      opts.Key,
		insecure: opts.Insecure,

		timeout: opts.GetTimeout(),
	}, nil
}

// Options returns a mutable copy, e.g. to hand to the identity resolver.
func (c ImmutableOptions) Options() Options {
	return Options{
		Username:           c.username,
		Password:           c.password,
		Token:              c.token,
		TenantName:         c.tenantName,
		TenantID:           c.tenantID,
		ProjectName:        c.projectName,
		ProjectID:          c.projectID,
		UserDomainName:     c.userDomainName,
		UserDomainID:       c.userDomainID,
		ProjectDomainName:  c.projectDomainName,
		ProjectDomainID:    c.projectDomainID,
		RegionName:         c.regionName,
		AuthURL:            c.authURL,
		BackupURL:          c.backupURL,
		EndpointType:       c.endpointType,
		IdentityAPIVersion: c.identityAPIVersion,
		BackupAPIVersion:   c.backupAPIVersion,
		CACert:             c.caCert,
		Cert:               c.cert,
		Key:                c.key,
		Insecure:           c.insecure,
		Timeout:            c.timeout.String(),
	}
}

// Username returns the identity user name.
func (c ImmutableOptions) Username() string { return c.username }

// Token returns the pre-issued identity token.
// SECURITY: Handle with care - do not log this value.
func (c ImmutableOptions) Token() string { return c.token }

// ProjectID returns the explicitly configured project id.
func (c ImmutableOptions) ProjectID() string { return c.projectID }

// ProjectName returns the project (tenant) name.
func (c ImmutableOptions) ProjectName() string { return c.projectName }

// RegionName returns the region used to filter catalog endpoints.
func (c ImmutableOptions) RegionName() string { return c.regionName }

// AuthURL returns the identity service URL.
func (c ImmutableOptions) AuthURL() string { return c.authURL }

// BackupURL returns the explicit backup API endpoint, if any.
func (c ImmutableOptions) BackupURL() string { return c.backupURL }

// EndpointType returns the catalog interface used for endpoint lookup.
func (c ImmutableOptions) EndpointType() string { return c.endpointType }

// BackupAPIVersion returns "1" or "2".
func (c ImmutableOptions) BackupAPIVersion() string { return c.backupAPIVersion }

// CACert returns the CA bundle path.
func (c ImmutableOptions) CACert() string { return c.caCert }

// Cert returns the client certificate path.
func (c ImmutableOptions) Cert() string { return c.cert }

// Key returns the client key path.
func (c ImmutableOptions) Key() string { return c.key }

// Insecure returns whether TLS verification is disabled.
func (c ImmutableOptions) Insecure() bool { return c.insecure }

// Timeout returns the per-request timeout.
func (c ImmutableOptions) Timeout() time.Duration { return c.timeout }

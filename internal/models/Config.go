// Package models defines the core data structures for the backup client:
// the credential/endpoint options record, its frozen runtime form, and the
// resource document types exchanged with the backup API.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Backup API major versions understood by the client facade.
const (
	BackupAPIVersion1 = "1"
	BackupAPIVersion2 = "2"

	DefaultBackupAPIVersion = BackupAPIVersion2
	DefaultEndpointType     = "public"
	DefaultTimeout          = 1 * time.Minute
)

// Identity API versions accepted by the session resolver.
const (
	IdentityAPIVersion2 = "2.0"
	IdentityAPIVersion3 = "3"
)

// Options holds every credential, endpoint and TLS setting a client facade
// may be constructed with. All fields are optional; the zero value means
// "unset" and lets a lower-precedence source fill it in.
type Options struct {
	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	Token             string `yaml:"token"`
	TenantName        string `yaml:"tenantName"`
	TenantID          string `yaml:"tenantId"`
	ProjectName       string `yaml:"projectName"`
	ProjectID         string `yaml:"projectId"`
	UserDomainName    string `yaml:"userDomainName"`
	UserDomainID      string `yaml:"userDomainId"`
	ProjectDomainName string `yaml:"projectDomainName"`
	ProjectDomainID   string `yaml:"projectDomainId"`
	RegionName        string `yaml:"regionName"`

	AuthURL            string `yaml:"authUrl"`
	BackupURL          string `yaml:"backupUrl"`
	EndpointType       string `yaml:"endpointType"`
	IdentityAPIVersion string `yaml:"identityApiVersion"`
	BackupAPIVersion   string `yaml:"backupApiVersion"`

	CACert   string `yaml:"cacert"`
	Cert     string `yaml:"cert"`
	Key      string `yaml:"key"`
	Insecure bool   `yaml:"insecure"`

	Timeout string `yaml:"timeout"`
}

// SetDefaults fills the fields that have a documented default when no
// source provided them.
func (o *Options) SetDefaults() {
	if o.EndpointType == "" {
		o.EndpointType = DefaultEndpointType
	}
	if o.BackupAPIVersion == "" {
		o.BackupAPIVersion = DefaultBackupAPIVersion
	}
}

// Validate checks the fields whose format can be verified without talking
// to any service. Presence rules (auth URL or session, username or token)
// are enforced by the facade and the session resolver.
func (o *Options) Validate() error {
	switch o.BackupAPIVersion {
	case "", BackupAPIVersion1, BackupAPIVersion2:
	default:
		return fmt.Errorf("unsupported backup API version: %s (must be 1 or 2)", o.BackupAPIVersion)
	}

	switch o.IdentityAPIVersion {
	case "", IdentityAPIVersion2, IdentityAPIVersion3:
	default:
		return fmt.Errorf("unsupported identity API version: %s (must be 2.0 or 3)", o.IdentityAPIVersion)
	}

	if o.Timeout != "" {
		d, err := time.ParseDuration(o.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid timeout: %s (must be positive)", o.Timeout)
		}
	}

	if o.Key != "" && o.Cert == "" {
		return fmt.Errorf("client key %s supplied without a client certificate", o.Key)
	}

	return nil
}

// Merge returns a copy of o where every non-empty field of override
// replaces the value in o. Insecure is sticky: once any source enables it,
// it stays enabled.
//
// The precedence chain env < file < explicit arguments is built by merging
// in that order:
//
//	opts := FromEnv(os.LookupEnv).Merge(fileOpts).Merge(flagOpts)
func (o Options) Merge(override Options) Options {
	out := o
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&out.Username, override.Username)
	set(&out.Password, override.Password)
	set(&out.Token, override.Token)
	set(&out.TenantName, override.TenantName)
	set(&out.TenantID, override.TenantID)
	set(&out.ProjectName, override.ProjectName)
	set(&out.ProjectID, override.ProjectID)
	set(&out.UserDomainName, override.UserDomainName)
	set(&out.UserDomainID, override.UserDomainID)
	set(&out.ProjectDomainName, override.ProjectDomainName)
	set(&out.ProjectDomainID, override.ProjectDomainID)
	set(&out.RegionName, override.RegionName)
	set(&out.AuthURL, override.AuthURL)
	set(&out.BackupURL, override.BackupURL)
	set(&out.EndpointType, override.EndpointType)
	set(&out.IdentityAPIVersion, override.IdentityAPIVersion)
	set(&out.BackupAPIVersion, override.BackupAPIVersion)
	set(&out.CACert, override.CACert)
	set(&out.Cert, override.Cert)
	set(&out.Key, override.Key)
	set(&out.Timeout, override.Timeout)

	if override.Insecure {
		out.Insecure = true
	}

	return out
}

// GetTimeout parses Timeout, falling back to DefaultTimeout when unset or
// unparsable.
func (o *Options) GetTimeout() time.Duration {
	if o.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(o.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// MaskSecret returns a masked version of a password or token for safe
// logging. Shows the first 4 and last 4 characters with asterisks in between.
//
// Example: "abcd1234efgh5678" -> "abcd****5678"
//
// For values of 8 characters or fewer, returns "****"; for empty values
// returns "".
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****" + secret[len(secret)-4:]
}

// String renders the options with secrets masked.
func (o Options) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "auth_url=%s backup_url=%s endpoint_type=%s", o.AuthURL, o.BackupURL, o.EndpointType)
	fmt.Fprintf(&b, " username=%s password=%s token=%s", o.Username, MaskSecret(o.Password), MaskSecret(o.Token))
	fmt.Fprintf(&b, " project=%s/%s tenant=%s", o.ProjectName, o.ProjectID, o.TenantName)
	fmt.Fprintf(&b, " identity_api_version=%s backup_api_version=%s insecure=%t",
		o.IdentityAPIVersion, o.BackupAPIVersion, o.Insecure)
	return b.String()
}

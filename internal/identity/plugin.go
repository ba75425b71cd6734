// Package identity turns raw credentials into an authenticated session
// against a Keystone-compatible identity service (API v2.0 or v3).
//
// A Session mints bearer tokens, reports the scoped project id and resolves
// service endpoints from the catalog returned with the token.
package identity

import (
	"strings"

	"github.com/fjacquet/backup_client/internal/apierrors"
	"github.com/fjacquet/backup_client/internal/models"
)

// Authentication methods.
const (
	MethodPassword = "password"
	MethodToken    = "token"
)

// Plugin describes one way of obtaining a token: the identity API version,
// the method, the token endpoint and the request body.
type Plugin interface {
	AuthVersion() string
	Method() string
	TokenURL() string
	RequestBody() interface{}
}

// GuessAuthVersion determines the identity API version. An explicit
// IdentityAPIVersion of "3" or "2.0" wins; otherwise the auth URL suffix
// decides ("v3" or "v2.0").
func GuessAuthVersion(opts models.Options) (string, error) {
	switch opts.IdentityAPIVersion {
	case models.IdentityAPIVersion3:
		return models.IdentityAPIVersion3, nil
	case models.IdentityAPIVersion2:
		return models.IdentityAPIVersion2, nil
	}

	authURL := strings.TrimRight(opts.AuthURL, "/")
	switch {
	case strings.HasSuffix(authURL, "v3"):
		return models.IdentityAPIVersion3, nil
	case strings.HasSuffix(authURL, "v2.0"):
		return models.IdentityAPIVersion2, nil
	}

	return "", apierrors.NewConfigurationError(
		"cannot determine identity API version from auth URL %q; set the identity API version to 3 or 2.0", opts.AuthURL)
}

// GetAuthPlugin selects the authentication plugin for opts. A username
// selects password authentication and takes precedence over a token.
func GetAuthPlugin(opts models.Options) (Plugin, error) {
	version, err := GuessAuthVersion(opts)
	if err != nil {
		return nil, err
	}

	authURL := strings.TrimRight(opts.AuthURL, "/")

	switch {
	case opts.Username != "" && version == models.IdentityAPIVersion3:
		return &PasswordV3{
			AuthURL:        authURL,
			Username:       opts.Username,
			Password:       opts.Password,
			UserDomainName: opts.UserDomainName,
			UserDomainID:   opts.UserDomainID,
			Scope:          scopeFrom(opts),
		}, nil
	case opts.Username != "":
		return &PasswordV2{
			AuthURL:    authURL,
			Username:   opts.Username,
			Password:   opts.Password,
			TenantName: tenantName(opts),
			TenantID:   tenantID(opts),
		}, nil
	case opts.Token != "" && version == models.IdentityAPIVersion3:
		return &TokenV3{
			AuthURL: authURL,
			Token:   opts.Token,
			Scope:   scopeFrom(opts),
		}, nil
	case opts.Token != "":
		return &TokenV2{
			AuthURL:    authURL,
			Token:      opts.Token,
			TenantName: tenantName(opts),
			TenantID:   tenantID(opts),
		}, nil
	}

	return nil, apierrors.NewConfigurationError("no username or token supplied; cannot determine authentication method")
}

func tenantName(opts models.Options) string {
	if opts.TenantName != "" {
		return opts.TenantName
	}
	return opts.ProjectName
}

func tenantID(opts models.Options) string {
	if opts.TenantID != "" {
		return opts.TenantID
	}
	return opts.ProjectID
}

// ProjectScope is the v3 project scope. ID wins over Name when both are set.
type ProjectScope struct {
	ID         string
	Name       string
	DomainName string
	DomainID   string
}

func scopeFrom(opts models.Options) ProjectScope {
	return ProjectScope{
		ID:         opts.ProjectID,
		Name:       opts.ProjectName,
		DomainName: opts.ProjectDomainName,
		DomainID:   opts.ProjectDomainID,
	}
}

func (s ProjectScope) body() map[string]interface{} {
	switch {
	case s.ID != "":
		return map[string]interface{}{"project": map[string]interface{}{"id": s.ID}}
	case s.Name != "":
		return map[string]interface{}{"project": map[string]interface{}{
			"name":   s.Name,
			"domain": domainRef(s.DomainName, s.DomainID),
		}}
	}
	return nil
}

func domainRef(name, id string) map[string]interface{} {
	if id != "" {
		return map[string]interface{}{"id": id}
	}
	if name == "" {
		name = "Default"
	}
	return map[string]interface{}{"name": name}
}

// PasswordV3 authenticates a user by password against identity v3.
type PasswordV3 struct {
	AuthURL        string
	Username       string
	Password       string
	UserDomainName string
	UserDomainID   string
	Scope          ProjectScope
}

func (p *PasswordV3) AuthVersion() string { return models.IdentityAPIVersion3 }
func (p *PasswordV3) Method() string      { return MethodPassword }
func (p *PasswordV3) TokenURL() string    { return p.AuthURL + "/auth/tokens" }

func (p *PasswordV3) RequestBody() interface{} {
	auth := map[string]interface{}{
		"identity": map[string]interface{}{
			"methods": []string{MethodPassword},
			"password": map[string]interface{}{
				"user": map[string]interface{}{
					"name":     p.Username,
					"password": p.Password,
					"domain":   domainRef(p.UserDomainName, p.UserDomainID),
				},
			},
		},
	}
	if scope := p.Scope.body(); scope != nil {
		auth["scope"] = scope
	}
	return map[string]interface{}{"auth": auth}
}

// TokenV3 rescopes an existing token against identity v3.
type TokenV3 struct {
	AuthURL string
	Token   string
	Scope   ProjectScope
}

func (p *TokenV3) AuthVersion() string { return models.IdentityAPIVersion3 }
func (p *TokenV3) Method() string      { return MethodToken }
func (p *TokenV3) TokenURL() string    { return p.AuthURL + "/auth/tokens" }

func (p *TokenV3) RequestBody() interface{} {
	auth := map[string]interface{}{
		"identity": map[string]interface{}{
			"methods": []string{MethodToken},
			"token":   map[string]interface{}{"id": p.Token},
		},
	}
	if scope := p.Scope.body(); scope != nil {
		auth["scope"] = scope
	}
	return map[string]interface{}{"auth": auth}
}

// PasswordV2 authenticates a user by password against identity v2.0.
type PasswordV2 struct {
	AuthURL    string
	Username   string
	Password   string
	TenantName string
	TenantID   string
}

func (p *PasswordV2) AuthVersion() string { return models.IdentityAPIVersion2 }
func (p *PasswordV2) Method() string      { return MethodPassword }
func (p *PasswordV2) TokenURL() string    { return p.AuthURL + "/tokens" }

func (p *PasswordV2) RequestBody() interface{} {
	auth := map[string]interface{}{
		"passwordCredentials": map[string]interface{}{
			"username": p.Username,
			"password": p.Password,
		},
	}
	addTenant(auth, p.TenantName, p.TenantID)
	return map[string]interface{}{"auth": auth}
}

// TokenV2 rescopes an existing token against identity v2.0.
type TokenV2 struct {
	AuthURL    string
	Token      string
	TenantName string
	TenantID   string
}

func (p *TokenV2) AuthVersion() string { return models.IdentityAPIVersion2 }
func (p *TokenV2) Method() string      { return MethodToken }
func (p *TokenV2) TokenURL() string    { return p.AuthURL + "/tokens" }

func (p *TokenV2) RequestBody() interface{} {
	auth := map[string]interface{}{
		"token": map[string]interface{}{"id": p.Token},
	}
	addTenant(auth, p.TenantName, p.TenantID)
	return map[string]interface{}{"auth": auth}
}

func addTenant(auth map[string]interface{}, name, id string) {
	if id != "" {
		auth["tenantId"] = id
		return
	}
	if name != "" {
		auth["tenantName"] = name
	}
}

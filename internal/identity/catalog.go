package identity

import (
	"fmt"
	"strings"
	"time"
)

// Endpoint is one catalog entry for a service.
type Endpoint struct {
	Interface string
	URL       string
	Region    string
}

// Service is a catalog service with its endpoints.
type Service struct {
	Type      string
	Name      string
	Endpoints []Endpoint
}

// ServiceCatalog maps (service type, interface) pairs to base URLs.
type ServiceCatalog []Service

// EndpointNotFoundError is returned when the catalog has no matching entry.
type EndpointNotFoundError struct {
	ServiceType string
	Interface   string
	Region      string
}

func (e *EndpointNotFoundError) Error() string {
	msg := fmt.Sprintf("no %s endpoint found for service type %q in the service catalog", e.Interface, e.ServiceType)
	if e.Region != "" {
		msg += fmt.Sprintf(" (region %s)", e.Region)
	}
	return msg
}

// NormalizeInterface maps the v2.0 names ("publicURL") and the v3 names
// ("public") onto the v3 form. Empty means public.
func NormalizeInterface(iface string) string {
	iface = strings.TrimSuffix(strings.ToLower(iface), "url")
	if iface == "" {
		return "public"
	}
	return iface
}

// URLFor returns the base URL of the first endpoint of serviceType at the
// given interface. When region is set only endpoints of that region match.
func (c ServiceCatalog) URLFor(serviceType, iface, region string) (string, error) {
	want := NormalizeInterface(iface)
	for _, svc := range c {
		if svc.Type != serviceType {
			continue
		}
		for _, ep := range svc.Endpoints {
			if NormalizeInterface(ep.Interface) != want {
				continue
			}
			if region != "" && ep.Region != region {
				continue
			}
			return strings.TrimRight(ep.URL, "/"), nil
		}
	}
	return "", &EndpointNotFoundError{ServiceType: serviceType, Interface: want, Region: region}
}

// AuthRef is the result of a successful token request.
type AuthRef struct {
	Token     string
	ExpiresAt time.Time
	ProjectID string
	UserID    string
	Catalog   ServiceCatalog
}

// v3 wire format of POST /v3/auth/tokens (token id is in X-Subject-Token).
type v3TokenResponse struct {
	Token struct {
		ExpiresAt time.Time `json:"expires_at"`
		Project   struct {
			ID string `json:"id"`
		} `json:"project"`
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Catalog []struct {
			Type      string `json:"type"`
			Name      string `json:"name"`
			Endpoints []struct {
				Interface string `json:"interface"`
				URL       string `json:"url"`
				Region    string `json:"region"`
				RegionID  string `json:"region_id"`
			} `json:"endpoints"`
		} `json:"catalog"`
	} `json:"token"`
}

func (r *v3TokenResponse) authRef(token string) *AuthRef {
	ref := &AuthRef{
		Token:     token,
		ExpiresAt: r.Token.ExpiresAt,
		ProjectID: r.Token.Project.ID,
		UserID:    r.Token.User.ID,
	}
	for _, svc := range r.Token.Catalog {
		s := Service{Type: svc.Type, Name: svc.Name}
		for _, ep := range svc.Endpoints {
			region := ep.Region
			if region == "" {
				region = ep.RegionID
			}
			s.Endpoints = append(s.Endpoints, Endpoint{Interface: ep.Interface, URL: ep.URL, Region: region})
		}
		ref.Catalog = append(ref.Catalog, s)
	}
	return ref
}

// v2.0 wire format of POST /v2.0/tokens.
type v2TokenResponse struct {
	Access struct {
		Token struct {
			ID      string    `json:"id"`
			Expires time.Time `json:"expires"`
			Tenant  struct {
				ID string `json:"id"`
			} `json:"tenant"`
		} `json:"token"`
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		ServiceCatalog []struct {
			Type      string `json:"type"`
			Name      string `json:"name"`
			Endpoints []struct {
				PublicURL   string `json:"publicURL"`
				InternalURL string `json:"internalURL"`
				AdminURL    string `json:"adminURL"`
				Region      string `json:"region"`
			} `json:"endpoints"`
		} `json:"serviceCatalog"`
	} `json:"access"`
}

func (r *v2TokenResponse) authRef() *AuthRef {
	ref := &AuthRef{
		Token:     r.Access.Token.ID,
		ExpiresAt: r.Access.Token.Expires,
		ProjectID: r.Access.Token.Tenant.ID,
		UserID:    r.Access.User.ID,
	}
	for _, svc := range r.Access.ServiceCatalog {
		s := Service{Type: svc.Type, Name: svc.Name}
		for _, ep := range svc.Endpoints {
			for iface, url := range map[string]string{
				"public":   ep.PublicURL,
				"internal": ep.InternalURL,
				"admin":    ep.AdminURL,
			} {
				if url != "" {
					s.Endpoints = append(s.Endpoints, Endpoint{Interface: iface, URL: url, Region: ep.Region})
				}
			}
		}
		ref.Catalog = append(ref.Catalog, s)
	}
	return ref
}

package models

import (
	"fmt"
	"strconv"

	"github.com/joho/godotenv"
)

// LookupFunc matches os.LookupEnv so tests can inject a fake environment.
type LookupFunc func(key string) (string, bool)

// Environment variable names read by FromEnv.
const (
	EnvUsername           = "OS_USERNAME"
	EnvPassword           = "OS_PASSWORD"
	EnvToken              = "OS_TOKEN"
	EnvTenantName         = "OS_TENANT_NAME"
	EnvTenantID           = "OS_TENANT_ID"
	EnvProjectName        = "OS_PROJECT_NAME"
	EnvProjectID          = "OS_PROJECT_ID"
	EnvUserDomainName     = "OS_USER_DOMAIN_NAME"
	EnvUserDomainID       = "OS_USER_DOMAIN_ID"
	EnvProjectDomainName  = "OS_PROJECT_DOMAIN_NAME"
	EnvProjectDomainID    = "OS_PROJECT_DOMAIN_ID"
	EnvRegionName         = "OS_REGION_NAME"
	EnvAuthURL            = "OS_AUTH_URL"
	EnvBackupURL          = "OS_BACKUP_URL"
	EnvEndpointType       = "OS_ENDPOINT_TYPE"
	EnvIdentityAPIVersion = "OS_IDENTITY_API_VERSION"
	EnvBackupAPIVersion   = "OS_BACKUP_API_VERSION"
	EnvCACert             = "OS_CACERT"
	EnvCert               = "OS_CERT"
	EnvKey                = "OS_KEY"
	EnvInsecure           = "OS_INSECURE"
)

// FromEnv builds the lowest-precedence Options layer from environment
// variables. Unset variables leave the field empty.
func FromEnv(lookup LookupFunc) Options {
	get := func(key string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		return ""
	}

	opts := Options{
		Username:           get(EnvUsername),
		Password:           get(EnvPassword),
		Token:              get(EnvToken),
		TenantName:         get(EnvTenantName),
		TenantID:           get(EnvTenantID),
		ProjectName:        get(EnvProjectName),
		ProjectID:          get(EnvProjectID),
		UserDomainName:     get(EnvUserDomainName),
		UserDomainID:       get(EnvUserDomainID),
		ProjectDomainName:  get(EnvProjectDomainName),
		ProjectDomainID:    get(EnvProjectDomainID),
		RegionName:         get(EnvRegionName),
		AuthURL:            get(EnvAuthURL),
		BackupURL:          get(EnvBackupURL),
		EndpointType:       get(EnvEndpointType),
		IdentityAPIVersion: get(EnvIdentityAPIVersion),
		BackupAPIVersion:   get(EnvBackupAPIVersion),
		CACert:             get(EnvCACert),
		Cert:               get(EnvCert),
		Key:                get(EnvKey),
	}

	if v := get(EnvInsecure); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Insecure = b
		}
	}

	return opts
}

// ReadEnvFile parses an env file without touching the process environment
// and returns a LookupFunc over its contents.
func ReadEnvFile(path string) (LookupFunc, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}, nil
}

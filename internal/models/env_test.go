package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestFromEnv(t *testing.T) {
	opts := FromEnv(fakeEnv(map[string]string{
		EnvUsername:           "alice",
		EnvPassword:           "wonderland",
		EnvProjectName:        "demo",
		EnvProjectID:          "p-123",
		EnvUserDomainName:     "Default",
		EnvProjectDomainName:  "Default",
		EnvAuthURL:            "http://keystone:5000/v3",
		EnvBackupURL:          "http://backup:9090",
		EnvEndpointType:       "admin",
		EnvIdentityAPIVersion: "3",
		EnvBackupAPIVersion:   "1",
		EnvCACert:             "/etc/ssl/ca.pem",
		EnvInsecure:           "true",
	}))

	assert.Equal(t, "alice", opts.Username)
	assert.Equal(t, "wonderland", opts.Password)
	assert.Equal(t, "demo", opts.ProjectName)
	assert.Equal(t, "p-123", opts.ProjectID)
	assert.Equal(t, "Default", opts.UserDomainName)
	assert.Equal(t, "Default", opts.ProjectDomainName)
	assert.Equal(t, "http://keystone:5000/v3", opts.AuthURL)
	assert.Equal(t, "http://backup:9090", opts.BackupURL)
	assert.Equal(t, "admin", opts.EndpointType)
	assert.Equal(t, "3", opts.IdentityAPIVersion)
	assert.Equal(t, "1", opts.BackupAPIVersion)
	assert.Equal(t, "/etc/ssl/ca.pem", opts.CACert)
	assert.True(t, opts.Insecure)
	assert.Empty(t, opts.Token)
}

func TestFromEnv_InvalidInsecureIgnored(t *testing.T) {
	opts := FromEnv(fakeEnv(map[string]string{EnvInsecure: "maybe"}))
	assert.False(t, opts.Insecure)
}

func TestReadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "openrc.env")
	content := "OS_USERNAME=bob\nOS_PASSWORD=\"s3cret\"\nOS_AUTH_URL=http://keystone:5000/v2.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	lookup, err := ReadEnvFile(path)
	require.NoError(t, err)

	opts := FromEnv(lookup)
	assert.Equal(t, "bob", opts.Username)
	assert.Equal(t, "s3cret", opts.Password)
	assert.Equal(t, "http://keystone:5000/v2.0", opts.AuthURL)
}

func TestReadEnvFile_Missing(t *testing.T) {
	_, err := ReadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read env file")
}

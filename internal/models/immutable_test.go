package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImmutableOptions(t *testing.T) {
	opts := Options{
		Username:    "admin",
		Password:    "secret",
		ProjectID:   "p1",
		ProjectName: "demo",
		RegionName:  "RegionOne",
		AuthURL:     "http://keystone:5000/v3",
		BackupURL:   "http://backup:9090",
		CACert:      "ca.pem",
		Cert:        "c.pem",
		Key:         "k.pem",
		Insecure:    true,
		Timeout:     "10s",
	}

	imm, err := NewImmutableOptions(opts)
	require.NoError(t, err)

	assert.Equal(t, "admin", imm.Username())
	assert.Equal(t, "p1", imm.ProjectID())
	assert.Equal(t, "demo", imm.ProjectName())
	assert.Equal(t, "RegionOne", imm.RegionName())
	assert.Equal(t, "http://keystone:5000/v3", imm.AuthURL())
	assert.Equal(t, "http://backup:9090", imm.BackupURL())
	assert.Equal(t, DefaultEndpointType, imm.EndpointType())
	assert.Equal(t, DefaultBackupAPIVersion, imm.BackupAPIVersion())
	assert.Equal(t, "ca.pem", imm.CACert())
	assert.Equal(t, "c.pem", imm.Cert())
	assert.Equal(t, "k.pem", imm.Key())
	assert.True(t, imm.Insecure())
	assert.Equal(t, 10*time.Second, imm.Timeout())
}

func TestNewImmutableOptions_InvalidRejected(t *testing.T) {
	_, err := NewImmutableOptions(Options{BackupAPIVersion: "9"})
	require.Error(t, err)
}

func TestImmutableOptions_OptionsReturnsCopy(t *testing.T) {
	imm, err := NewImmutableOptions(Options{Username: "admin", Token: "tok"})
	require.NoError(t, err)

	copied := imm.Options()
	copied.Username = "mallory"

	assert.Equal(t, "admin", imm.Username())
	assert.Equal(t, "tok", imm.Token())
	assert.Equal(t, "tok", imm.Options().Token)
}

func TestJobEventBody(t *testing.T) {
	assert.Equal(t, Document{"start": nil}, JobEventStart.Body())
	assert.Equal(t, Document{"stop": nil}, JobEventStop.Body())
	assert.Equal(t, Document{"abort": nil}, JobEventAbort.Body())
}

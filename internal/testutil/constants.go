// Package testutil provides shared testing utilities and constants for the
// backup client.
//
// This package centralizes common test constants, helper functions, and mock
// builders to reduce duplication across test files.
//
// # Key Components
//
// Constants: Shared test values (tokens, project ids, paths) defined in constants.go
//
// MockServerBuilder: Fluent interface for creating a mock backup API and a
// mock identity service in one httptest server, with request recording
//
// # Usage Examples
//
// Creating a mock server:
//
//	server := testutil.NewMockServer().
//	    WithIdentityV3(testutil.TestToken, testutil.TestProjectID).
//	    WithCatalogEndpoint("backup", "public", testutil.SelfURL).
//	    WithResponse(http.MethodGet, "/v2/jobs/abc", http.StatusOK, job).
//	    Build()
//	defer server.Close()
//
//	reqs := server.RequestsTo(http.MethodGet, "/v2/jobs/abc")
package testutil

// HTTP headers
const (
	ContentTypeHeader  = "Content-Type"
	AcceptHeader       = "Accept"
	AuthTokenHeader    = "X-Auth-Token"
	SubjectTokenHeader = "X-Subject-Token"
	RequestIDHeader    = "X-Openstack-Request-Id"
)

// Common test values
const (
	ContentTypeJSON = "application/json"
	TestToken       = "gAAAAAB-test-token-0123456789"
	TestProjectID   = "8f3a1c2d4e5b"
	TestUserID      = "u-42"
	TestUsername    = "backup-admin"
	TestPassword    = "s3cr3t-password"
	TestProjectName = "backup-project"
	TestDomainName  = "Default"
	TestHostname    = "parmenide"
	TestRegion      = "RegionOne"
)

// Identity paths
const (
	PathIdentityV3       = "/v3"
	PathIdentityV2       = "/v2.0"
	PathIdentityV3Tokens = "/v3/auth/tokens"
	PathIdentityV2Tokens = "/v2.0/tokens"
)

// Backup API identifiers
const (
	TestJobID     = "d454beec-1f3c-4d11-aa1a-404116a40502"
	TestSessionID = "a1b2c3d4-session"
	TestBackupID  = "b-0001"
	TestClientID  = "c-0001"
	TestActionID  = "act-0001"
	TestJobTag    = "7"
)

// Catalog
const (
	ServiceTypeBackup = "backup"
	// SelfURL in a catalog entry is replaced by the mock server's own URL.
	SelfURL = "{self}"
)

// Test error messages
const (
	TestErrorUnexpected              = "Unexpected error: %v"
	TestErrorExpectedError           = "Expected error, got nil"
	TestErrorExpectedErrorContaining = "Expected error containing %q, got %q"
)

// Telemetry
const (
	TestOTELEndpoint   = "localhost:4317"
	TestServiceName    = "backup-client-test"
	TestServiceVersion = "1.0.0-test"
	TestLogName        = "test.log"
)

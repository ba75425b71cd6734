package telemetry

// Error message templates for the CLI. Each names the likely causes and
// what to check.
const (
	// ErrNotFoundTemplate is printed when a get-before-act finds nothing.
	// Arguments: resource name (capitalized), id.
	ErrNotFoundTemplate = `%s not found: %s`

	// ErrEndpointTemplate is printed when no backup endpoint can be resolved.
	ErrEndpointTemplate = `Unable to determine the backup API endpoint: %v

This usually indicates:
1. The service catalog has no "backup" service at the requested interface
2. The wrong region or endpoint type is configured (--os-region-name, --os-endpoint-type)

Set --os-backup-url (or OS_BACKUP_URL) to bypass the catalog lookup.`

	// ErrAuthTemplate is printed when the identity service rejects the
	// credentials.
	ErrAuthTemplate = `Authentication against %s failed: %v

Troubleshooting steps:
1. Check OS_USERNAME/OS_PASSWORD or OS_TOKEN
2. Check the identity API version (OS_IDENTITY_API_VERSION=3 or 2.0)
3. Check the project and domain names or ids`
)

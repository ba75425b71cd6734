package telemetry

// HTTP semantic convention attributes
const (
	AttrHTTPMethod                = "http.method"
	AttrHTTPURL                   = "http.url"
	AttrHTTPStatusCode            = "http.status_code"
	AttrHTTPRequestContentLength  = "http.request_content_length"
	AttrHTTPResponseContentLength = "http.response_content_length"
	AttrHTTPDurationMS            = "http.duration_ms"
)

// Backup API attributes
const (
	AttrBackupResource   = "backup.resource"
	AttrBackupOperation  = "backup.operation"
	AttrBackupRequestID  = "backup.request_id"
	AttrBackupAPIVersion = "backup.api_version"
	AttrBackupEndpoint   = "backup.endpoint"
)

// Identity attributes
const (
	AttrIdentityMethod  = "identity.method"
	AttrIdentityVersion = "identity.version"
)

// Error attributes
const (
	AttrError = "error"
)

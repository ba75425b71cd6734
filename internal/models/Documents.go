package models

// Document is an opaque JSON resource document as exchanged with the backup
// API. The client imposes no schema beyond the identification, pagination
// and version fields named below.
type Document = map[string]interface{}

// Search is a JSON filter object sent with list requests. An empty Search
// means "no constraint".
type Search = map[string]interface{}

// Resource path segments.
const (
	ResourceJobs     = "jobs"
	ResourceBackups  = "backups"
	ResourceClients  = "clients"
	ResourceSessions = "sessions"
	ResourceActions  = "actions"
)

// Identifier fields assigned by the server.
const (
	FieldJobID     = "job_id"
	FieldBackupID  = "backup_id"
	FieldClientID  = "client_id"
	FieldSessionID = "session_id"
	FieldActionID  = "action_id"
	FieldVersion   = "version"
)

// ResourceKind describes how one resource collection is addressed on the
// wire: its path segment, the envelope key of list responses and the id
// field returned on creation.
type ResourceKind struct {
	Name        string // singular, for messages ("job")
	Path        string // "jobs"
	EnvelopeKey string // "jobs"
	IDField     string // "job_id"
}

// Well-known resource kinds.
var (
	JobKind     = ResourceKind{Name: "job", Path: ResourceJobs, EnvelopeKey: ResourceJobs, IDField: FieldJobID}
	BackupKind  = ResourceKind{Name: "backup", Path: ResourceBackups, EnvelopeKey: ResourceBackups, IDField: FieldBackupID}
	ClientKind  = ResourceKind{Name: "client", Path: ResourceClients, EnvelopeKey: ResourceClients, IDField: FieldClientID}
	SessionKind = ResourceKind{Name: "session", Path: ResourceSessions, EnvelopeKey: ResourceSessions, IDField: FieldSessionID}
	ActionKind  = ResourceKind{Name: "action", Path: ResourceActions, EnvelopeKey: ResourceActions, IDField: FieldActionID}
)

// UpdateResponse is the envelope returned by a successful PATCH.
type UpdateResponse struct {
	Patch   Document `json:"patch"`
	Version int      `json:"version"`
}

// JobEvent is the body posted to a job's event endpoint. Exactly one field
// is present and its value is JSON null, e.g. {"start": null}.
type JobEvent string

// Job events.
const (
	JobEventStart JobEvent = "start"
	JobEventStop  JobEvent = "stop"
	JobEventAbort JobEvent = "abort"
)

// Body returns the event document.
func (e JobEvent) Body() Document {
	return Document{string(e): nil}
}

// SessionStart is the "start" action of a session run.
type SessionStart struct {
	JobID      string `json:"job_id"`
	CurrentTag string `json:"current_tag"`
}

// SessionEnd is the "end" action of a session run.
type SessionEnd struct {
	JobID      string `json:"job_id"`
	CurrentTag string `json:"current_tag"`
	Result     string `json:"result"`
}

// SessionAction is the body posted to a session's action endpoint.
type SessionAction struct {
	Start *SessionStart `json:"start,omitempty"`
	End   *SessionEnd   `json:"end,omitempty"`
}

package backupapi

import (
	"context"
	"net/http"

	"github.com/fjacquet/backup_client/internal/models"
)

// JobManager adds client scoping and job events to the generic Manager.
type JobManager struct {
	*Manager
}

// Create posts a job. When doc has no client_id the facade's client id is
// added to a copy of doc; a caller-supplied client_id is never replaced.
func (m *JobManager) Create(ctx context.Context, doc models.Document) (string, error) {
	if _, ok := doc[models.FieldClientID]; !ok {
		clientID, err := m.client.ClientID(ctx)
		if err != nil {
			return "", err
		}
		withClient := make(models.Document, len(doc)+1)
		for k, v := range doc {
			withClient[k] = v
		}
		withClient[models.FieldClientID] = clientID
		doc = withClient
	}
	return m.Manager.Create(ctx, doc)
}

// List returns the jobs of one client: clientID, or the facade's client id
// when empty. The client constraint is appended to the "match" clauses of
// opts.Search.
func (m *JobManager) List(ctx context.Context, opts ListOptions, clientID string) ([]models.Document, error) {
	if clientID == "" {
		var err error
		if clientID, err = m.client.ClientID(ctx); err != nil {
			return nil, err
		}
	}
	opts.Search = withMatch(opts.Search, map[string]interface{}{models.FieldClientID: clientID})
	return m.Manager.List(ctx, opts)
}

// ListAll returns the jobs of every client visible to the caller; the
// filter is sent unchanged.
func (m *JobManager) ListAll(ctx context.Context, opts ListOptions) ([]models.Document, error) {
	return m.Manager.List(ctx, opts)
}

// StartJob posts {"start": null} to the job's event endpoint.
func (m *JobManager) StartJob(ctx context.Context, id string) (models.Document, error) {
	return m.event(ctx, id, models.JobEventStart)
}

// StopJob posts {"stop": null} to the job's event endpoint.
func (m *JobManager) StopJob(ctx context.Context, id string) (models.Document, error) {
	return m.event(ctx, id, models.JobEventStop)
}

// AbortJob posts {"abort": null} to the job's event endpoint.
func (m *JobManager) AbortJob(ctx context.Context, id string) (models.Document, error) {
	return m.event(ctx, id, models.JobEventAbort)
}

func (m *JobManager) event(ctx context.Context, id string, ev models.JobEvent) (models.Document, error) {
	target, err := m.resourceURL(ctx, id, "event")
	if err != nil {
		return nil, err
	}
	resp, err := m.send(ctx, http.MethodPost, target, string(ev), nil, ev.Body(), http.StatusAccepted)
	if err != nil {
		return nil, err
	}
	return decodeDocument(resp)
}

// withMatch returns a copy of search with clause appended to its "match"
// list.
func withMatch(search models.Search, clause map[string]interface{}) models.Search {
	out := make(models.Search, len(search)+1)
	for k, v := range search {
		out[k] = v
	}

	var matches []interface{}
	switch existing := search["match"].(type) {
	case nil:
	case []interface{}:
		matches = append(matches, existing...)
	case []map[string]interface{}:
		for _, c := range existing {
			matches = append(matches, c)
		}
	default:
		matches = append(matches, existing)
	}
	out["match"] = append(matches, clause)
	return out
}

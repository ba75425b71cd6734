package backupapi

import (
	"context"
	"net/http"

	"github.com/fjacquet/backup_client/internal/apierrors"
	"github.com/fjacquet/backup_client/internal/models"
	log "github.com/sirupsen/logrus"
)

// Session operation names.
const (
	OpAddJob       = "add_job"
	OpRemoveJob    = "remove_job"
	OpStartSession = "start_session"
	OpEndSession   = "end_session"
)

// removeJobQuirk is the error text the server returns after a job has in
// fact been removed from a session ("Additional properties are not allowed
// ('job_event' was unexpected)").
const removeJobQuirk = "Additional properties are not allowed"

// SessionManager adds job membership and session runs to the generic
// Manager.
type SessionManager struct {
	*Manager
}

// AddJob attaches a job to a session. Success is 204.
func (m *SessionManager) AddJob(ctx context.Context, sessionID, jobID string) error {
	target, err := m.resourceURL(ctx, sessionID, "jobs", jobID)
	if err != nil {
		return err
	}
	_, err = m.send(ctx, http.MethodPut, target, OpAddJob, nil, nil, http.StatusNoContent)
	return err
}

// RemoveJob detaches a job from a session. Success is 204.
//
// The server answers a successful removal with an "Additional properties
// are not allowed" validation error; that one error is reported as success.
func (m *SessionManager) RemoveJob(ctx context.Context, sessionID, jobID string) error {
	target, err := m.resourceURL(ctx, sessionID, "jobs", jobID)
	if err != nil {
		return err
	}
	_, err = m.send(ctx, http.MethodDelete, target, OpRemoveJob, nil, nil, http.StatusNoContent)
	if err != nil && apierrors.BodyContains(err, removeJobQuirk) {
		log.Debugf("Ignoring server error after removing job %s from session %s: %v", jobID, sessionID, err)
		return nil
	}
	return err
}

// StartSession asks the server to start a session run for jobID at the
// given tag. Success is 202 and the response body is returned.
func (m *SessionManager) StartSession(ctx context.Context, sessionID, jobID, jobTag string) (models.Document, error) {
	return m.action(ctx, sessionID, OpStartSession, models.SessionAction{
		Start: &models.SessionStart{JobID: jobID, CurrentTag: jobTag},
	})
}

// EndSession reports the result of a session run for jobID.
func (m *SessionManager) EndSession(ctx context.Context, sessionID, jobID, jobTag, result string) (models.Document, error) {
	return m.action(ctx, sessionID, OpEndSession, models.SessionAction{
		End: &models.SessionEnd{JobID: jobID, CurrentTag: jobTag, Result: result},
	})
}

func (m *SessionManager) action(ctx context.Context, sessionID, operation string, body models.SessionAction) (models.Document, error) {
	target, err := m.resourceURL(ctx, sessionID, "action")
	if err != nil {
		return nil, err
	}
	resp, err := m.send(ctx, http.MethodPost, target, operation, nil, body, http.StatusAccepted)
	if err != nil {
		return nil, err
	}
	return decodeDocument(resp)
}

package backupapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/fjacquet/backup_client/internal/apierrors"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/fjacquet/backup_client/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// managers returns every resource manager of c as a generic *Manager.
func managers(c *Client) []*Manager {
	return []*Manager{c.Jobs.Manager, c.Backups, c.Clients, c.Sessions.Manager, c.Actions}
}

func TestManagerKinds(t *testing.T) {
	server := testutil.NewMockServer().Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	want := []models.ResourceKind{models.JobKind, models.BackupKind, models.ClientKind, models.SessionKind, models.ActionKind}
	for i, m := range managers(c) {
		assert.Equal(t, want[i], m.Kind())
	}
}

func TestManagerCreate(t *testing.T) {
	for _, kind := range []models.ResourceKind{models.BackupKind, models.ClientKind, models.SessionKind, models.ActionKind} {
		t.Run(kind.Path, func(t *testing.T) {
			path := "/v2/" + kind.Path + "/"
			server := testutil.NewMockServer().
				WithResponse(http.MethodPost, path, http.StatusCreated, map[string]string{kind.IDField: "abc123"}).
				Build()
			defer server.Close()
			c, _ := newTestClient(t, server)

			m := c.Backups
			for _, candidate := range managers(c) {
				if candidate.Kind() == kind {
					m = candidate
				}
			}

			id, err := m.Create(context.Background(), models.Document{"description": "d"})
			require.NoError(t, err)
			assert.Equal(t, "abc123", id)

			req := server.LastRequest(t, http.MethodPost, path)
			assert.Equal(t, map[string]interface{}{"description": "d"}, req.JSON(t))
		})
	}
}

func TestManagerCreateServerError(t *testing.T) {
	server := testutil.NewMockServer().
		WithErrorResponse(http.MethodPost, "/v2/backups/", http.StatusInternalServerError, "database down").
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	_, err := c.Backups.Create(context.Background(), models.Document{"a": 1})
	require.Error(t, err)
	assert.True(t, apierrors.IsAPIClientError(err))
	assert.Equal(t, http.StatusInternalServerError, apierrors.StatusCode(err))
	assert.Contains(t, err.Error(), "database down")
	assert.True(t, apierrors.BodyContains(err, "database down"))
}

func TestManagerCreateRequires201(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodPost, "/v2/actions/", http.StatusOK, map[string]string{"action_id": "a"}).
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	_, err := c.Actions.Create(context.Background(), models.Document{})
	require.Error(t, err)
	assert.Equal(t, http.StatusOK, apierrors.StatusCode(err))
}

func TestManagerCreateMissingID(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodPost, "/v2/clients/", http.StatusCreated, map[string]string{"other": "x"}).
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	_, err := c.Clients.Create(context.Background(), models.Document{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id")
}

func TestManagerGet(t *testing.T) {
	body := map[string]interface{}{
		"backup_id":       testutil.TestBackupID,
		"backup_metadata": map[string]interface{}{"hostname": "h", "curr_backup_level": float64(0)},
	}
	server := testutil.NewMockServer().
		WithResponse(http.MethodGet, "/v2/backups/"+testutil.TestBackupID, http.StatusOK, body).
		WithErrorResponse(http.MethodGet, "/v2/backups/broken", http.StatusInternalServerError, "boom").
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)
	ctx := context.Background()

	got, err := c.Backups.Get(ctx, testutil.TestBackupID)
	require.NoError(t, err)
	assert.Equal(t, models.Document(body), got)

	got, err = c.Backups.Get(ctx, "missing")
	require.NoError(t, err, "not found is not an error")
	assert.Nil(t, got)

	_, err = c.Backups.Get(ctx, "broken")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apierrors.StatusCode(err))
}

func TestManagerDelete(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodDelete, "/v2/sessions/"+testutil.TestSessionID, http.StatusNoContent, nil).
		WithErrorResponse(http.MethodDelete, "/v2/sessions/broken", http.StatusInternalServerError, "boom").
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)
	ctx := context.Background()

	require.NoError(t, c.Sessions.Delete(ctx, testutil.TestSessionID))

	err := c.Sessions.Delete(ctx, "broken")
	require.Error(t, err)
	assert.True(t, apierrors.IsAPIClientError(err))

	err = c.Sessions.Delete(ctx, "unknown")
	assert.Equal(t, http.StatusNotFound, apierrors.StatusCode(err), "delete has no not-found exemption")
}

func TestManagerList(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodGet, "/v2/jobs/", http.StatusOK, map[string]interface{}{
			"jobs": []map[string]string{{"job_id": "a"}, {"job_id": "b"}},
		}).
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	docs, err := c.Jobs.ListAll(context.Background(), DefaultListOptions())
	require.NoError(t, err)
	assert.Equal(t, []models.Document{{"job_id": "a"}, {"job_id": "b"}}, docs)

	req := server.LastRequest(t, http.MethodGet, "/v2/jobs/")
	assert.Equal(t, "100", req.Query.Get("limit"))
	assert.Equal(t, "0", req.Query.Get("offset"))
	assert.JSONEq(t, `{}`, string(req.Body))
}

func TestManagerListPassesParametersThrough(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodGet, "/v2/actions/", http.StatusOK, map[string]interface{}{"actions": []interface{}{}}).
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	_, err := c.Actions.List(context.Background(), ListOptions{
		Limit:  0,
		Offset: 250,
		Search: PrepareSearch("nightly"),
	})
	require.NoError(t, err)

	req := server.LastRequest(t, http.MethodGet, "/v2/actions/")
	assert.Equal(t, "0", req.Query.Get("limit"))
	assert.Equal(t, "250", req.Query.Get("offset"))
	assert.JSONEq(t, `{"match":[{"_all":"nightly"}]}`, string(req.Body))
}

func TestManagerListEmptyEnvelope(t *testing.T) {
	tests := map[string]interface{}{
		"missing key": map[string]interface{}{"other": []interface{}{}},
		"null list":   map[string]interface{}{"clients": nil},
		"empty list":  map[string]interface{}{"clients": []interface{}{}},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			server := testutil.NewMockServer().
				WithResponse(http.MethodGet, "/v2/clients/", http.StatusOK, body).
				Build()
			defer server.Close()
			c, _ := newTestClient(t, server)

			docs, err := c.Clients.List(context.Background(), DefaultListOptions())
			require.NoError(t, err)
			assert.NotNil(t, docs)
			assert.Empty(t, docs)
		})
	}
}

func TestManagerListError(t *testing.T) {
	server := testutil.NewMockServer().
		WithErrorResponse(http.MethodGet, "/v2/backups/", http.StatusUnauthorized, "token expired").
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	_, err := c.Backups.List(context.Background(), DefaultListOptions())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apierrors.StatusCode(err))
}

func TestManagerUpdate(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodPatch, "/v2/actions/"+testutil.TestActionID, http.StatusOK, map[string]interface{}{
			"patch":     map[string]string{"description": "new"},
			"version":   12,
			"action_id": testutil.TestActionID,
		}).
		WithErrorResponse(http.MethodPatch, "/v2/actions/conflict", http.StatusConflict, "version mismatch").
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)
	ctx := context.Background()

	version, err := c.Actions.Update(ctx, testutil.TestActionID, models.Document{"description": "new"})
	require.NoError(t, err)
	assert.Equal(t, 12, version)

	req := server.LastRequest(t, http.MethodPatch, "/v2/actions/"+testutil.TestActionID)
	assert.JSONEq(t, `{"description":"new"}`, string(req.Body))

	_, err = c.Actions.Update(ctx, "conflict", models.Document{})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierrors.StatusCode(err))
}

func TestManagerHeaders(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodGet, "/v2/clients/"+testutil.TestClientID, http.StatusOK, map[string]string{}).
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	_, err := c.Clients.Get(context.Background(), testutil.TestClientID)
	require.NoError(t, err)

	req := server.LastRequest(t, http.MethodGet, "/v2/clients/"+testutil.TestClientID)
	assert.Equal(t, testutil.TestToken, req.Header.Get(testutil.AuthTokenHeader))
	assert.Equal(t, testutil.ContentTypeJSON, req.Header.Get(testutil.ContentTypeHeader))
	assert.Equal(t, testutil.ContentTypeJSON, req.Header.Get(testutil.AcceptHeader))

	_, err = uuid.Parse(req.Header.Get(testutil.RequestIDHeader))
	assert.NoError(t, err, "each request carries a UUID correlation id")
}

func TestManagerFetchesTokenPerCall(t *testing.T) {
	path := "/v2/jobs/" + testutil.TestJobID
	server := testutil.NewMockServer().
		WithResponse(http.MethodGet, path, http.StatusOK, map[string]string{}).
		Build()
	defer server.Close()
	c, sess := newTestClient(t, server)
	sess.tokens = []string{"first", "second"}

	ctx := context.Background()
	_, err := c.Jobs.Get(ctx, testutil.TestJobID)
	require.NoError(t, err)
	_, err = c.Jobs.Get(ctx, testutil.TestJobID)
	require.NoError(t, err)

	reqs := server.RequestsTo(http.MethodGet, path)
	require.Len(t, reqs, 2)
	assert.Equal(t, "first", reqs[0].Header.Get(HeaderAuthToken))
	assert.Equal(t, "second", reqs[1].Header.Get(HeaderAuthToken))
}

func TestManagerV1Paths(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodGet, "/v1/backups/", http.StatusOK, map[string]interface{}{
			"backups": []map[string]string{{"backup_id": "b1"}},
		}).
		Build()
	defer server.Close()
	c, _ := newVersionedTestClient(t, models.BackupAPIVersion1, server)

	docs, err := c.Backups.List(context.Background(), DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b1", docs[0]["backup_id"])
}

func TestManagerEscapesIDs(t *testing.T) {
	server := testutil.NewMockServer().Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	got, err := c.Jobs.Get(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Nil(t, got)

	reqs := server.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/v2/jobs/a/b", reqs[0].Path, "the escaped slash is decoded by the server")
}

func TestManagerTransportError(t *testing.T) {
	server := testutil.NewMockServer().Build()
	c, _ := newTestClient(t, server)
	server.Close()

	_, err := c.Backups.Get(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, apierrors.IsAPIClientError(err), "no response means no API error")
}

func TestManagerClosedClient(t *testing.T) {
	server := testutil.NewMockServer().Build()
	defer server.Close()
	c, _ := newTestClient(t, server)
	require.NoError(t, c.http.Close())

	_, err := c.Backups.Get(context.Background(), "x")
	assert.ErrorIs(t, err, errClientClosed)
}

func TestPrepareSearch(t *testing.T) {
	assert.Equal(t, models.Search{}, PrepareSearch(""))
	assert.Equal(t, models.Search{"match": []interface{}{map[string]interface{}{"_all": "x"}}}, PrepareSearch("x"))
}

package backupapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/fjacquet/backup_client/internal/apierrors"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/fjacquet/backup_client/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobCreateInjectsClientID(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodPost, "/v2/jobs/", http.StatusCreated, map[string]string{"job_id": testutil.TestJobID}).
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	doc := models.Document{"job": "x"}
	id, err := c.Jobs.Create(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, testutil.TestJobID, id)

	req := server.LastRequest(t, http.MethodPost, "/v2/jobs/")
	assert.JSONEq(t, `{"job":"x","client_id":"`+testClientID+`"}`, string(req.Body))
	assert.Equal(t, models.Document{"job": "x"}, doc, "the caller's document is not modified")
}

func TestJobCreateKeepsCallerClientID(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodPost, "/v2/jobs/", http.StatusCreated, map[string]string{"job_id": testutil.TestJobID}).
		Build()
	defer server.Close()
	c, sess := newTestClient(t, server)

	_, err := c.Jobs.Create(context.Background(), models.Document{"job": "x", "client_id": "custom"})
	require.NoError(t, err)

	req := server.LastRequest(t, http.MethodPost, "/v2/jobs/")
	assert.JSONEq(t, `{"job":"x","client_id":"custom"}`, string(req.Body))

	_, projectCalls, _ := sess.counts()
	assert.Equal(t, 0, projectCalls, "client id is not resolved when supplied")
}

func TestJobListScopesToClient(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodGet, "/v2/jobs/", http.StatusOK, map[string]interface{}{"jobs": []interface{}{}}).
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)
	ctx := context.Background()

	_, err := c.Jobs.List(ctx, DefaultListOptions(), "c1")
	require.NoError(t, err)
	req := server.LastRequest(t, http.MethodGet, "/v2/jobs/")
	assert.JSONEq(t, `{"match":[{"client_id":"c1"}]}`, string(req.Body))

	_, err = c.Jobs.List(ctx, DefaultListOptions(), "")
	require.NoError(t, err)
	req = server.LastRequest(t, http.MethodGet, "/v2/jobs/")
	assert.JSONEq(t, `{"match":[{"client_id":"`+testClientID+`"}]}`, string(req.Body))
}

func TestJobListAppendsToExistingMatch(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodGet, "/v2/jobs/", http.StatusOK, map[string]interface{}{"jobs": []interface{}{}}).
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	search := PrepareSearch("nightly")
	opts := DefaultListOptions()
	opts.Search = search

	_, err := c.Jobs.List(context.Background(), opts, "c1")
	require.NoError(t, err)

	req := server.LastRequest(t, http.MethodGet, "/v2/jobs/")
	assert.JSONEq(t, `{"match":[{"_all":"nightly"},{"client_id":"c1"}]}`, string(req.Body))
	assert.Equal(t, PrepareSearch("nightly"), search, "the caller's filter is not modified")
}

func TestJobListAllSendsFilterUnchanged(t *testing.T) {
	server := testutil.NewMockServer().
		WithResponse(http.MethodGet, "/v2/jobs/", http.StatusOK, map[string]interface{}{
			"jobs": []map[string]string{{"job_id": "a"}},
		}).
		Build()
	defer server.Close()
	c, sess := newTestClient(t, server)

	opts := DefaultListOptions()
	opts.Search = models.Search{"match_not": []interface{}{map[string]interface{}{"status": "completed"}}}
	docs, err := c.Jobs.ListAll(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	req := server.LastRequest(t, http.MethodGet, "/v2/jobs/")
	assert.JSONEq(t, `{"match_not":[{"status":"completed"}]}`, string(req.Body))

	_, projectCalls, _ := sess.counts()
	assert.Equal(t, 0, projectCalls)
}

func TestJobEvents(t *testing.T) {
	path := "/v2/jobs/" + testutil.TestJobID + "/event"
	reply := map[string]string{"result": "success"}
	server := testutil.NewMockServer().
		WithResponse(http.MethodPost, path, http.StatusAccepted, reply).
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)
	ctx := context.Background()

	tests := []struct {
		name string
		call func(context.Context, string) (models.Document, error)
		body string
	}{
		{name: "start", call: c.Jobs.StartJob, body: `{"start":null}`},
		{name: "stop", call: c.Jobs.StopJob, body: `{"stop":null}`},
		{name: "abort", call: c.Jobs.AbortJob, body: `{"abort":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.call(ctx, testutil.TestJobID)
			require.NoError(t, err)
			assert.Equal(t, models.Document{"result": "success"}, got)

			req := server.LastRequest(t, http.MethodPost, path)
			assert.JSONEq(t, tt.body, string(req.Body))
		})
	}
}

func TestJobEventRequires202(t *testing.T) {
	path := "/v2/jobs/" + testutil.TestJobID + "/event"
	server := testutil.NewMockServer().
		WithResponse(http.MethodPost, path, http.StatusOK, map[string]string{}).
		Build()
	defer server.Close()
	c, _ := newTestClient(t, server)

	_, err := c.Jobs.StartJob(context.Background(), testutil.TestJobID)
	require.Error(t, err)
	assert.True(t, apierrors.IsAPIClientError(err))
	assert.Equal(t, http.StatusOK, apierrors.StatusCode(err))
}

func TestWithMatch(t *testing.T) {
	clause := map[string]interface{}{"client_id": "c"}

	got := withMatch(nil, clause)
	assert.Equal(t, models.Search{"match": []interface{}{clause}}, got)

	typed := models.Search{"match": []map[string]interface{}{{"a": 1}}, "other": true}
	got = withMatch(typed, clause)
	assert.Equal(t, models.Search{
		"match": []interface{}{map[string]interface{}{"a": 1}, clause},
		"other": true,
	}, got)
}

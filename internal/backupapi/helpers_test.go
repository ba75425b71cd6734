package backupapi

import (
	"context"
	"sync"
	"testing"

	"github.com/fjacquet/backup_client/internal/models"
	"github.com/fjacquet/backup_client/internal/testutil"
	"github.com/stretchr/testify/require"
)

const (
	testHost     = testutil.TestHostname
	testProject  = "proj"
	testClientID = "proj_" + testutil.TestHostname
)

// fakeSession is an identity.Session with call counters.
type fakeSession struct {
	mu sync.Mutex

	tokens    []string // returned in turn; the last one repeats
	projectID string
	endpoint  string
	err       error

	tokenCalls   int
	projectCalls int
	urlCalls     int
}

func newFakeSession(endpoint string) *fakeSession {
	return &fakeSession{
		tokens:    []string{testutil.TestToken},
		projectID: testProject,
		endpoint:  endpoint,
	}
}

func (s *fakeSession) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenCalls++
	if s.err != nil {
		return "", s.err
	}
	i := s.tokenCalls - 1
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	return s.tokens[i], nil
}

func (s *fakeSession) GetProjectID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectCalls++
	if s.err != nil {
		return "", s.err
	}
	return s.projectID, nil
}

func (s *fakeSession) URLFor(ctx context.Context, serviceType, iface string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urlCalls++
	if s.err != nil {
		return "", s.err
	}
	return s.endpoint, nil
}

func (s *fakeSession) counts() (token, project, url int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCalls, s.projectCalls, s.urlCalls
}

func fixedHostname() (string, error) {
	return testHost, nil
}

// newTestClient builds a v2 facade whose session resolves the mock server
// as backup endpoint.
func newTestClient(t *testing.T, server *testutil.MockServer, options ...ClientOption) (*Client, *fakeSession) {
	t.Helper()
	return newVersionedTestClient(t, models.BackupAPIVersion2, server, options...)
}

func newVersionedTestClient(t *testing.T, version string, server *testutil.MockServer, options ...ClientOption) (*Client, *fakeSession) {
	t.Helper()
	sess := newFakeSession(server.URL)
	opts := append([]ClientOption{WithSession(sess), WithHostname(fixedHostname)}, options...)
	c, err := NewClient(version, models.Options{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, sess
}

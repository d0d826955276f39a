package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbyilmir/incidents-manager/internal/incident"
	"github.com/devbyilmir/incidents-manager/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv, err := New(st, Options{JWTSecret: "test-secret", Logger: logger})
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, srv *Server) string {
	t.Helper()
	w := doJSON(t, srv, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "operator@plant.local", "password": "secret1", "name": "Duty Operator",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "operator@plant.local", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func TestRegisterLoginMe(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	w := doJSON(t, srv, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user incident.UserSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "Duty Operator", user.Name)
	assert.Equal(t, "operator", user.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "operator@plant.local", "password": "secret1", "name": "Someone Else",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "detail")
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "operator@plant.local", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid credentials", body.Detail)
}

// Every /incidents route requires a session.
func TestIncidentsRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/incidents/"},
		{http.MethodPost, "/incidents/"},
		{http.MethodPatch, "/incidents/1"},
		{http.MethodDelete, "/incidents/1"},
	} {
		w := doJSON(t, srv, route.method, route.path, "", nil)
		assert.Equalf(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
		assert.Contains(t, w.Body.String(), "detail")
	}
}

func TestIncidentCRUD(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	// Empty collection decodes as [], not null.
	w := doJSON(t, srv, http.MethodGet, "/incidents/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	// Create.
	w = doJSON(t, srv, http.MethodPost, "/incidents/", token, incident.Draft{
		Title:       "Gas odor near compressor station",
		Description: "Rising concentration",
		Type:        incident.TypeGasBuildup,
		Priority:    incident.PriorityCritical,
		Location:    "Compressor station 2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created incident.Incident
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, incident.StatusOpen, created.Status)
	require.NotNil(t, created.Creator)
	assert.Equal(t, "Duty Operator", created.Creator.Name)

	// Field update.
	w = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/incidents/%d", created.ID), token, incident.Draft{
		Title:    "Gas odor confirmed",
		Type:     incident.TypeGasBuildup,
		Priority: incident.PriorityCritical,
		Location: "Compressor station 2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated incident.Incident
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Gas odor confirmed", updated.Title)

	// Status update via query parameter.
	w = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/incidents/%d?status=closed", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, incident.StatusClosed, updated.Status)
	assert.Equal(t, "Gas odor confirmed", updated.Title)

	// Delete.
	w = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/incidents/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/incidents/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateIncidentValidation(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	// Missing title.
	w := doJSON(t, srv, http.MethodPost, "/incidents/", token, incident.Draft{
		Type: incident.TypeLeak, Priority: incident.PriorityLow, Location: "Pump house",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Unknown type.
	w = doJSON(t, srv, http.MethodPost, "/incidents/", token, incident.Draft{
		Title: "x", Type: "flood", Priority: incident.PriorityLow, Location: "y",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Unknown priority.
	w = doJSON(t, srv, http.MethodPost, "/incidents/", token, incident.Draft{
		Title: "x", Type: incident.TypeLeak, Priority: "urgent", Location: "y",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPatchUnknownStatus(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/incidents/", token, incident.Draft{
		Title: "Leak", Type: incident.TypeLeak, Priority: incident.PriorityLow, Location: "Pit",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created incident.Incident
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/incidents/%d?status=pending", created.ID), token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPatchMissingIncident(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	w := doJSON(t, srv, http.MethodPatch, "/incidents/9999?status=closed", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "incident not found", body.Detail)
}

// Bearer tokens work as an alternative to the cookie.
func TestBearerAuth(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvalidToken(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/incidents/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)
	w := doJSON(t, srv, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbyilmir/incidents-manager/internal/incident"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func createTestUser(t *testing.T, st *Store) *User {
	t.Helper()
	ctx := context.Background()
	id, err := st.CreateUser(ctx, "operator@plant.local", "Duty Operator", "operator", "hashed")
	require.NoError(t, err)
	user, err := st.GetUserByID(ctx, id)
	require.NoError(t, err)
	return user
}

func TestUserRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, st)
	assert.Equal(t, "operator@plant.local", user.Email)
	assert.Equal(t, "operator", user.Role)

	byEmail, err := st.GetUserByEmail(ctx, "operator@plant.local")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = st.GetUserByEmail(ctx, "nobody@plant.local")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAndListIncidents(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, st)

	first, err := st.CreateIncident(ctx, incident.Draft{
		Title:    "Leak at valve pit",
		Type:     incident.TypeLeak,
		Priority: incident.PriorityHigh,
		Location: "Valve pit",
	}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, incident.StatusOpen, first.Status)
	require.NotNil(t, first.Creator)
	assert.Equal(t, "Duty Operator", first.Creator.Name)

	_, err = st.CreateIncident(ctx, incident.Draft{
		Title:    "Rust on bracket",
		Type:     incident.TypeCorrosion,
		Priority: incident.PriorityLow,
		Location: "Pipeline km 14",
	}, user.ID)
	require.NoError(t, err)

	incidents, err := st.ListIncidents(ctx)
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	// Newest first.
	assert.Equal(t, "Rust on bracket", incidents[0].Title)
}

func TestUpdateIncidentFields(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, st)

	created, err := st.CreateIncident(ctx, incident.Draft{
		Title:    "Pump vibration",
		Type:     incident.TypeEquipmentFailure,
		Priority: incident.PriorityMedium,
		Location: "Pump house",
	}, user.ID)
	require.NoError(t, err)

	updated, err := st.UpdateIncidentFields(ctx, created.ID, incident.Draft{
		Title:       "Pump vibration above limit",
		Description: "Bearing wear suspected",
		Type:        incident.TypeEquipmentFailure,
		Priority:    incident.PriorityHigh,
		Location:    "Pump house",
	})
	require.NoError(t, err)
	assert.Equal(t, "Pump vibration above limit", updated.Title)
	assert.Equal(t, incident.PriorityHigh, updated.Priority)
	// Status is untouched by a field update.
	assert.Equal(t, incident.StatusOpen, updated.Status)

	_, err = st.UpdateIncidentFields(ctx, 9999, incident.Draft{Title: "x", Location: "y"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateIncidentStatus(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, st)

	created, err := st.CreateIncident(ctx, incident.Draft{
		Title: "PLC link loss", Type: incident.TypeAutomationFault,
		Priority: incident.PriorityMedium, Location: "Metering skid",
	}, user.ID)
	require.NoError(t, err)

	updated, err := st.UpdateIncidentStatus(ctx, created.ID, incident.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, incident.StatusClosed, updated.Status)
	// Other fields survive the status flip.
	assert.Equal(t, created.Title, updated.Title)

	_, err = st.UpdateIncidentStatus(ctx, 9999, incident.StatusOpen)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIncident(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, st)

	created, err := st.CreateIncident(ctx, incident.Draft{
		Title: "Gas odor", Type: incident.TypeGasBuildup,
		Priority: incident.PriorityCritical, Location: "Compressor station 2",
	}, user.ID)
	require.NoError(t, err)

	require.NoError(t, st.DeleteIncident(ctx, created.ID))

	_, err = st.GetIncident(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, st.DeleteIncident(ctx, created.ID), ErrNotFound)
}

func TestAuditLog(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.LogAction(ctx, AuditEntry{
		IncidentID: 1, Action: "create", Actor: "operator@plant.local",
		Details: map[string]any{"title": "Leak"},
	}))
	require.NoError(t, st.LogAction(ctx, AuditEntry{
		IncidentID: 1, Action: "delete", Actor: "operator@plant.local",
	}))

	entries, err := st.ListActions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, "delete", entries[0].Action)
	assert.Equal(t, "create", entries[1].Action)
	assert.Equal(t, "Leak", entries[1].Details["title"])
}

// Package store is the SQLite persistence layer for the companion
// incident service. The console client never touches it; all client state
// is rebuilt from the service on each load.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devbyilmir/incidents-manager/internal/incident"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// User is a registered operator account.
type User struct {
	ID             int       `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewStore opens (creating if needed) the database at dbPath and runs
// migrations.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open(sqliteDriver, dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'operator',
			hashed_password TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS incidents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			type TEXT NOT NULL,
			priority TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open',
			location TEXT NOT NULL,
			creator_id INTEGER,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (creator_id) REFERENCES users(id) ON DELETE SET NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_incidents_status ON incidents(status)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_priority ON incidents(priority)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return s.migrateAudit()
}

// CreateUser registers a new account and returns its ID.
func (s *Store) CreateUser(ctx context.Context, email, name, role, hashedPassword string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, name, role, hashed_password, created_at) VALUES (?, ?, ?, ?, ?)`,
		email, name, role, hashedPassword, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	return int(id), nil
}

// GetUserByEmail looks up an account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, hashed_password, created_at FROM users WHERE email = ?`, email))
}

// GetUserByID looks up an account by ID.
func (s *Store) GetUserByID(ctx context.Context, id int) (*User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, role, hashed_password, created_at FROM users WHERE id = ?`, id))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAt int64
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.HashedPassword, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.CreatedAt = time.Unix(createdAt, 0)
	return &u, nil
}

const incidentColumns = `i.id, i.title, i.description, i.type, i.priority, i.status,
	i.location, i.created_at, u.id, u.name, u.role`

// ListIncidents returns the full collection, newest first, with creator
// summaries joined on.
func (s *Store) ListIncidents(ctx context.Context) ([]incident.Incident, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+incidentColumns+`
		FROM incidents i LEFT JOIN users u ON u.id = i.creator_id
		ORDER BY i.created_at DESC, i.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []incident.Incident
	for rows.Next() {
		inc, err := scanIncident(rows.Scan)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

// GetIncident returns one record by ID.
func (s *Store) GetIncident(ctx context.Context, id int) (*incident.Incident, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+incidentColumns+`
		FROM incidents i LEFT JOIN users u ON u.id = i.creator_id WHERE i.id = ?`, id)
	inc, err := scanIncident(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

func scanIncident(scan func(dest ...any) error) (incident.Incident, error) {
	var inc incident.Incident
	var description sql.NullString
	var createdAt int64
	var creatorID sql.NullInt64
	var creatorName, creatorRole sql.NullString

	err := scan(&inc.ID, &inc.Title, &description, &inc.Type, &inc.Priority,
		&inc.Status, &inc.Location, &createdAt, &creatorID, &creatorName, &creatorRole)
	if err != nil {
		return incident.Incident{}, err
	}

	inc.Description = description.String
	inc.CreatedAt = time.Unix(createdAt, 0).UTC()
	if creatorID.Valid {
		inc.Creator = &incident.UserSummary{
			ID:   int(creatorID.Int64),
			Name: creatorName.String,
			Role: creatorRole.String,
		}
	}
	return inc, nil
}

// CreateIncident inserts a new record with status open and returns it.
func (s *Store) CreateIncident(ctx context.Context, draft incident.Draft, creatorID int) (*incident.Incident, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO incidents (title, description, type, priority, status, location, creator_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.Title, draft.Description, draft.Type, draft.Priority,
		incident.StatusOpen, draft.Location, creatorID, time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read incident id: %w", err)
	}
	return s.GetIncident(ctx, int(id))
}

// UpdateIncidentFields applies a partial update of the editable fields and
// returns the updated record.
func (s *Store) UpdateIncidentFields(ctx context.Context, id int, draft incident.Draft) (*incident.Incident, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE incidents SET title = ?, description = ?, type = ?, priority = ?, location = ? WHERE id = ?`,
		draft.Title, draft.Description, draft.Type, draft.Priority, draft.Location, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update incident: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetIncident(ctx, id)
}

// UpdateIncidentStatus sets only the status and returns the updated record.
func (s *Store) UpdateIncidentStatus(ctx context.Context, id int, status incident.Status) (*incident.Incident, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE incidents SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetIncident(ctx, id)
}

// DeleteIncident removes a record.
func (s *Store) DeleteIncident(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM incidents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

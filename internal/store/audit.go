package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// AuditEntry records one mutation against the incident collection.
type AuditEntry struct {
	ID         string         `json:"id"`
	IncidentID int            `json:"incident_id"`
	Action     string         `json:"action"` // "create", "update_fields", "update_status", "delete"
	Actor      string         `json:"actor"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (s *Store) migrateAudit() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS audit_entries (
			id TEXT PRIMARY KEY,
			incident_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			actor TEXT NOT NULL,
			details TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_incident_id ON audit_entries(incident_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_entries(action)`,
	}
	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute audit migration: %w", err)
		}
	}
	return nil
}

// LogAction appends an audit entry. Audit failures are reported but never
// block the mutation they describe; callers decide whether to ignore them.
func (s *Store) LogAction(ctx context.Context, entry AuditEntry) error {
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("audit_%d", time.Now().UnixNano())
	}
	details := "{}"
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
		details = string(raw)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_entries (id, incident_id, action, actor, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.IncidentID, entry.Action, entry.Actor, details, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to log action: %w", err)
	}
	return nil
}

// ListActions returns the most recent audit entries, newest first.
func (s *Store) ListActions(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, incident_id, action, actor, details, created_at
		 FROM audit_entries ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		var details string
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.IncidentID, &entry.Action,
			&entry.Actor, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if details != "" {
			_ = json.Unmarshal([]byte(details), &entry.Details)
		}
		entry.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

package models

import "time"

// AuditLog is a row of the append-only audit_logs table. Before and After are JSONB.
type AuditLog struct {
	AuditID    string         `db:"audit_id"`
	ActorID    string         `db:"actor_id"`
	Action     string         `db:"action"`
	EntityType string         `db:"entity_type"`
	EntityID   string         `db:"entity_id"`
	Before     map[string]any `db:"before_state"`
	After      map[string]any `db:"after_state"`
	At         time.Time      `db:"at"`
	Comment    string         `db:"comment"`
}

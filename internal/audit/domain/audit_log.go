package domain

import "time"

// AuditLog records one membership event. Metadata is a flat string map
// (invited email, new role, invitation id) rather than free text.
type AuditLog struct {
	ID        string
	OrgID     string
	UserID    string
	Action    string
	Resource  string
	Metadata  map[string]string
	CreatedAt time.Time
}

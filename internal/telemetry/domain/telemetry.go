package domain

import "time"

// Event is a membership or session event exported to the telemetry pipeline.
// Attributes carries event-specific fields such as the invited email or new role.
type Event struct {
	Type       string
	OrgID      string
	UserID     string
	Attributes map[string]string
	OccurredAt time.Time
}

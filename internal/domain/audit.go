package domain

// AuditEntry is one row of the append-only action log.
type AuditEntry struct {
	UserID     int64
	Action     string
	EntityType string
	EntityID   int64
	Details    map[string]any
}

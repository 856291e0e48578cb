package domain

import "time"

// AuditLog records every API request handled by the server.
type AuditLog struct {
	ID         string    `json:"id"          db:"id"`
	RequestID  string    `json:"request_id"  db:"request_id"`
	Action     string    `json:"action"      db:"action"`
	Resource   string    `json:"resource"    db:"resource"`
	ResourceID string    `json:"resource_id" db:"resource_id"`
	Details    string    `json:"details"     db:"details"` // JSON blob
	IP         string    `json:"ip"          db:"ip"`
	UserAgent  string    `json:"user_agent"  db:"user_agent"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// Audit action constants.
const (
	AuditActionRequest      = "http_request"
	AuditActionProcessVideo = "process_video"
	AuditActionChat         = "chat"
)

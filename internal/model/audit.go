package model

import "time"

// Audit actions recorded for document operations.
const (
	AuditActionUpload = "upload"
	AuditActionDelete = "delete"
)

// AuditEvent is one append-only entry in the admin audit trail. Events
// describe who did what to which document; they never hold document state.
type AuditEvent struct {
	ID           string    `json:"id"`
	Actor        string    `json:"actor"`
	Action       string    `json:"action"`
	DocumentName string    `json:"document_name"`
	Size         int64     `json:"size"`
	RequestID    string    `json:"request_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

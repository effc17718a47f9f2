package entities

import "time"

type AuditEventType string

const (
	AuditEventAuth    AuditEventType = "auth"
	AuditEventLibrary AuditEventType = "library"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one entry in a user's account activity trail.
type AuditEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	EventType AuditEventType `gorm:"index;size:20" json:"event_type"`
	Action    string         `gorm:"size:50" json:"action"` // e.g. "login", "library_add"
	BookID    *int           `gorm:"index" json:"book_id,omitempty"`
	IPAddress string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent string         `gorm:"size:255" json:"user_agent,omitempty"`
	Status    AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg  string         `gorm:"size:255" json:"error_msg,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

package models

import "time"

// WebhookEvent logs every inbound gateway delivery before processing.
//
// The unique index on EventID is the sole deduplication mechanism: the
// handler inserts first and treats a duplicate-key error as "already seen".
// Rows are never deleted; this table doubles as the audit trail.
type WebhookEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EventID      string    `gorm:"size:255;uniqueIndex;not null" json:"event_id"`
	EventType    string    `gorm:"size:255;index" json:"event_type"`
	Payload      string    `gorm:"type:text" json:"payload"`
	Processed    bool      `gorm:"default:false" json:"processed"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}

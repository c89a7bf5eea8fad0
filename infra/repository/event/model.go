package event

import "time"

// ProcessedEvent is one row per gateway event identifier; the primary key
// on EventID is the idempotency mechanism.
type ProcessedEvent struct {
	EventID    string `gorm:"type:varchar(255);primaryKey"`
	EventType  string `gorm:"type:varchar(64);not null"`
	ReceivedAt time.Time
}

// TableName specifies the table name for the ProcessedEvent model.
func (ProcessedEvent) TableName() string { return "processed_events" }

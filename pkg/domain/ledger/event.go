package ledger

import "time"

// ProcessedEvent is the idempotency marker for an externally issued gateway
// event. One row per event identifier, created once, never updated, kept
// indefinitely for audit. The store enforces uniqueness of EventID; a
// duplicate insert is the dedup signal, not an application-level check.
type ProcessedEvent struct {
	EventID    string
	EventType  string
	ReceivedAt time.Time
}

package dto

import "github.com/google/uuid"

// MemberRead is the read-optimized projection of a member.
type MemberRead struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Active          bool      `json:"active"`
	FinancialStatus string    `json:"financial_status"`
}

// EventCreate records a processed gateway event identifier.
type EventCreate struct {
	EventID   string
	EventType string
}

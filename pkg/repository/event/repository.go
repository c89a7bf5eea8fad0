// Package event defines data access for processed gateway event markers.
package event

import (
	"context"

	"github.com/chaptertools/treasury/pkg/dto"
)

// Repository is the idempotency gate's store contract.
type Repository interface {
	// Create inserts the event identifier. The store enforces uniqueness;
	// a duplicate returns ledger.ErrEventAlreadyProcessed, which is the
	// signal that the delivery was already applied.
	Create(ctx context.Context, create dto.EventCreate) error

	// Exists reports whether an event identifier has been recorded.
	Exists(ctx context.Context, eventID string) (bool, error)
}

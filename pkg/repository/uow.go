// Package repository defines the transactional boundary of the ledger store.
package repository

import (
	"context"

	"github.com/chaptertools/treasury/pkg/repository/donation"
	"github.com/chaptertools/treasury/pkg/repository/event"
	"github.com/chaptertools/treasury/pkg/repository/member"
	"github.com/chaptertools/treasury/pkg/repository/payment"
	"github.com/chaptertools/treasury/pkg/repository/plan"
)

// UnitOfWork provides transaction boundaries and repository access in one
// abstraction. All repositories obtained inside Do share the same DB
// session, so a payment insert, its idempotency marker, and the plan
// reconciliation commit or roll back together.
type UnitOfWork interface {
	// Do executes fn within a transaction. The UnitOfWork passed to fn is
	// bound to that transaction; returning an error rolls it back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	Payments() payment.Repository
	Plans() plan.Repository
	Events() event.Repository
	Donations() donation.Repository
	Members() member.Repository
}

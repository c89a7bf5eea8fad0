// Package repository provides the GORM-backed unit of work binding all
// ledger repositories to one transaction.
package repository

import (
	"context"

	"github.com/chaptertools/treasury/infra/repository/donation"
	"github.com/chaptertools/treasury/infra/repository/event"
	"github.com/chaptertools/treasury/infra/repository/member"
	"github.com/chaptertools/treasury/infra/repository/payment"
	"github.com/chaptertools/treasury/infra/repository/plan"
	repo "github.com/chaptertools/treasury/pkg/repository"
	donationrepo "github.com/chaptertools/treasury/pkg/repository/donation"
	eventrepo "github.com/chaptertools/treasury/pkg/repository/event"
	memberrepo "github.com/chaptertools/treasury/pkg/repository/member"
	paymentrepo "github.com/chaptertools/treasury/pkg/repository/payment"
	planrepo "github.com/chaptertools/treasury/pkg/repository/plan"
	"gorm.io/gorm"
)

// UoW binds repositories to a shared *gorm.DB session so work inside Do is
// atomic. Outside Do, repositories run on the base connection.
type UoW struct {
	db *gorm.DB
}

// NewUoW creates a UoW over the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside a transaction; the UoW passed to fn hands out
// repositories bound to that transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repo.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: tx})
	})
}

// Payments implements repository.UnitOfWork.
func (u *UoW) Payments() paymentrepo.Repository { return payment.New(u.db) }

// Plans implements repository.UnitOfWork.
func (u *UoW) Plans() planrepo.Repository { return plan.New(u.db) }

// Events implements repository.UnitOfWork.
func (u *UoW) Events() eventrepo.Repository { return event.New(u.db) }

// Donations implements repository.UnitOfWork.
func (u *UoW) Donations() donationrepo.Repository { return donation.New(u.db) }

// Members implements repository.UnitOfWork.
func (u *UoW) Members() memberrepo.Repository { return member.New(u.db) }

var _ repo.UnitOfWork = (*UoW)(nil)

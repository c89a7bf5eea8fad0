// Package fixtures provides shared test helpers: an in-memory SQLite
// database migrated to the production schema, a unit of work bound to it,
// seed functions, and a recording cache invalidator.
package fixtures

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	infrarepo "github.com/chaptertools/treasury/infra/repository"
	"github.com/chaptertools/treasury/infra/repository/donation"
	"github.com/chaptertools/treasury/infra/repository/event"
	"github.com/chaptertools/treasury/infra/repository/member"
	"github.com/chaptertools/treasury/infra/repository/payment"
	"github.com/chaptertools/treasury/infra/repository/plan"
	repo "github.com/chaptertools/treasury/pkg/repository"
)

// NewTestDB opens a private in-memory SQLite database migrated to the
// production schema. Each call gets its own database, so tests can run in
// parallel without sharing state.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive and
	// serializes writers the way SQLite does in production mode.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&member.Member{},
		&plan.Plan{},
		&payment.Payment{},
		&donation.Donation{},
		&event.ProcessedEvent{},
	))
	// AutoMigrate cannot express the partial index guarding the
	// one-active-plan-per-member invariant.
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_plans_one_active_per_member
		 ON plans (member_id) WHERE active`,
	).Error)
	return db
}

// NewTestUoW returns a unit of work over a fresh in-memory database.
func NewTestUoW(t *testing.T) (repo.UnitOfWork, *gorm.DB) {
	t.Helper()
	db := NewTestDB(t)
	return infrarepo.NewUoW(db), db
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SeedMember inserts an active member and returns its ID.
func SeedMember(t *testing.T, db *gorm.DB, name, email string) uuid.UUID {
	t.Helper()
	m := member.Member{
		ID:              uuid.New(),
		Name:            name,
		Email:           email,
		Active:          true,
		FinancialStatus: "not financial",
	}
	require.NoError(t, db.Create(&m).Error)
	return m.ID
}

// SeedPayment inserts a payment row directly, bypassing the service layer.
func SeedPayment(
	t *testing.T,
	db *gorm.DB,
	memberID uuid.UUID,
	amount decimal.Decimal,
	method string,
	planID *uuid.UUID,
	occurredAt time.Time,
) uuid.UUID {
	t.Helper()
	paymentType := "one-time"
	if planID != nil {
		paymentType = "installment"
	}
	p := payment.Payment{
		ID:         uuid.New(),
		MemberID:   memberID,
		Amount:     amount,
		Method:     method,
		Type:       paymentType,
		PlanID:     planID,
		OccurredAt: occurredAt,
	}
	require.NoError(t, db.Create(&p).Error)
	return p.ID
}

// RecorderInvalidator records invalidation calls so tests can assert that
// writes invalidate the right scopes.
type RecorderInvalidator struct {
	mu      sync.Mutex
	Members []uuid.UUID
	Globals int
}

// InvalidateMember implements cache.Invalidator.
func (r *RecorderInvalidator) InvalidateMember(
	_ context.Context,
	memberID uuid.UUID,
	_ time.Time,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Members = append(r.Members, memberID)
}

// InvalidateGlobal implements cache.Invalidator.
func (r *RecorderInvalidator) InvalidateGlobal(context.Context, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Globals++
}

// MemberCalls returns how many member-scoped invalidations were recorded.
func (r *RecorderInvalidator) MemberCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Members)
}

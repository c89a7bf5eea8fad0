package webhook_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"

	"github.com/chaptertools/treasury/internal/fixtures"
	"github.com/chaptertools/treasury/pkg/domain/ledger"
	"github.com/chaptertools/treasury/pkg/repository"
	ledgersvc "github.com/chaptertools/treasury/pkg/service/ledger"
	websvc "github.com/chaptertools/treasury/pkg/service/webhook"
)

const signingSecret = "whsec_test_secret"

// signedEvent builds a gateway event envelope and a valid signature header
// for it, the same scheme the gateway uses: t=<unix>,v1=<hmac-sha256>.
func signedEvent(t *testing.T, eventID, eventType string, object map[string]any) ([]byte, string) {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	payload, err := json.Marshal(map[string]any{
		"id":   eventID,
		"type": eventType,
		"data": map[string]any{"object": json.RawMessage(raw)},
	})
	require.NoError(t, err)

	now := time.Now()
	sig := stripewebhook.ComputeSignature(now, payload, signingSecret)
	header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
	return payload, header
}

func checkoutSession(memberID uuid.UUID, amountCents int64) map[string]any {
	return map[string]any{
		"id":                  "cs_test_001",
		"amount_total":        amountCents,
		"client_reference_id": memberID.String(),
	}
}

type testEnv struct {
	UoW         repository.UnitOfWork
	DB          *gorm.DB
	Invalidator *fixtures.RecorderInvalidator
	Ledger      *ledgersvc.Service
}

func newServices(t *testing.T) (*websvc.Service, *testEnv) {
	t.Helper()
	uow, db := fixtures.NewTestUoW(t)
	inv := &fixtures.RecorderInvalidator{}
	lsvc := ledgersvc.New(uow, inv, fixtures.Logger())
	svc := websvc.New(uow, lsvc, inv, signingSecret, fixtures.Logger())
	return svc, &testEnv{UoW: uow, DB: db, Invalidator: inv, Ledger: lsvc}
}

func TestProcessAppliesCompletedCheckout(t *testing.T) {
	ctx := context.Background()
	svc, env := newServices(t)
	memberID := fixtures.SeedMember(t, env.DB, "Ada", "ada@example.com")

	payload, header := signedEvent(t, "evt_001",
		"checkout.session.completed", checkoutSession(memberID, 20000))

	result, err := svc.Process(ctx, payload, header)
	require.NoError(t, err)
	assert.Equal(t, websvc.OutcomeApplied, result.Outcome)

	// Cents become a fixed-point amount.
	total, err := env.UoW.Payments().SumByMember(ctx, memberID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(200)), "got %s", total)

	p, err := env.UoW.Payments().Get(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, string(ledger.MethodStripe), p.Method)
	assert.Equal(t, 1, env.Invalidator.MemberCalls())
}

func TestProcessDuplicateDelivery(t *testing.T) {
	ctx := context.Background()
	svc, env := newServices(t)
	memberID := fixtures.SeedMember(t, env.DB, "Ada", "ada@example.com")

	payload, header := signedEvent(t, "evt_dup",
		"checkout.session.completed", checkoutSession(memberID, 20000))

	first, err := svc.Process(ctx, payload, header)
	require.NoError(t, err)
	require.Equal(t, websvc.OutcomeApplied, first.Outcome)

	// The gateway retries with the same event ID; the effect must not
	// double.
	second, err := svc.Process(ctx, payload, header)
	require.NoError(t, err)
	assert.Equal(t, websvc.OutcomeDuplicate, second.Outcome)

	total, err := env.UoW.Payments().SumByMember(ctx, memberID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(200)), "duplicate applied twice: %s", total)
	assert.Equal(t, 1, env.Invalidator.MemberCalls())
}

func TestProcessRejectsBadSignature(t *testing.T) {
	ctx := context.Background()
	svc, env := newServices(t)
	memberID := fixtures.SeedMember(t, env.DB, "Ada", "ada@example.com")

	payload, _ := signedEvent(t, "evt_bad",
		"checkout.session.completed", checkoutSession(memberID, 20000))

	_, err := svc.Process(ctx, payload, "t=0,v1=deadbeef")
	assert.ErrorIs(t, err, ledger.ErrSignatureVerification)

	// Nothing was recorded.
	total, err := env.UoW.Payments().SumAll(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	exists, err := env.UoW.Events().Exists(ctx, "evt_bad")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProcessIgnoresOtherEventTypes(t *testing.T) {
	ctx := context.Background()
	svc, env := newServices(t)

	payload, header := signedEvent(t, "evt_other",
		"invoice.paid", map[string]any{"id": "in_001"})

	result, err := svc.Process(ctx, payload, header)
	require.NoError(t, err)
	assert.Equal(t, websvc.OutcomeIgnored, result.Outcome)

	total, err := env.UoW.Payments().SumAll(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestProcessOrphanPayload(t *testing.T) {
	ctx := context.Background()
	svc, env := newServices(t)

	t.Run("unknown member reference is acknowledged", func(t *testing.T) {
		payload, header := signedEvent(t, "evt_orphan",
			"checkout.session.completed", checkoutSession(uuid.New(), 20000))

		result, err := svc.Process(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, websvc.OutcomeOrphan, result.Outcome)
	})

	t.Run("no member reference at all is acknowledged", func(t *testing.T) {
		payload, header := signedEvent(t, "evt_orphan2",
			"checkout.session.completed", map[string]any{
				"id":           "cs_test_002",
				"amount_total": int64(5000),
			})

		result, err := svc.Process(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, websvc.OutcomeOrphan, result.Outcome)
	})

	total, err := env.UoW.Payments().SumAll(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestProcessMalformedSession(t *testing.T) {
	ctx := context.Background()
	svc, env := newServices(t)
	memberID := fixtures.SeedMember(t, env.DB, "Dee", "dee@example.com")

	t.Run("zero amount is acknowledged, not retried", func(t *testing.T) {
		payload, header := signedEvent(t, "evt_zero",
			"checkout.session.completed", checkoutSession(memberID, 0))
		result, err := svc.Process(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, websvc.OutcomeMalformed, result.Outcome)
	})

	t.Run("negative amount is acknowledged", func(t *testing.T) {
		payload, header := signedEvent(t, "evt_negative",
			"checkout.session.completed", checkoutSession(memberID, -500))
		result, err := svc.Process(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, websvc.OutcomeMalformed, result.Outcome)
	})

	t.Run("undecodable session object is acknowledged", func(t *testing.T) {
		payload, err := json.Marshal(map[string]any{
			"id":   "evt_garbled",
			"type": "checkout.session.completed",
			"data": map[string]any{"object": "not a session"},
		})
		require.NoError(t, err)
		now := time.Now()
		sig := stripewebhook.ComputeSignature(now, payload, signingSecret)
		header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))

		result, err := svc.Process(ctx, payload, header)
		require.NoError(t, err)
		assert.Equal(t, websvc.OutcomeMalformed, result.Outcome)
	})

	// Malformed deliveries leave no trace: no payment, no processed marker,
	// so a later corrected delivery with the same ID still applies.
	total, err := env.UoW.Payments().SumAll(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	for _, id := range []string{"evt_zero", "evt_negative", "evt_garbled"} {
		exists, err := env.UoW.Events().Exists(ctx, id)
		require.NoError(t, err)
		assert.False(t, exists, "event %s was marked processed", id)
	}
	assert.Zero(t, env.Invalidator.MemberCalls())
}

func TestProcessResolvesMemberByEmail(t *testing.T) {
	ctx := context.Background()
	svc, env := newServices(t)
	memberID := fixtures.SeedMember(t, env.DB, "Bea", "bea@example.com")

	payload, header := signedEvent(t, "evt_email",
		"checkout.session.completed", map[string]any{
			"id":               "cs_test_003",
			"amount_total":     int64(20000),
			"customer_details": map[string]any{"email": "bea@example.com"},
		})

	result, err := svc.Process(ctx, payload, header)
	require.NoError(t, err)
	require.Equal(t, websvc.OutcomeApplied, result.Outcome)

	p, err := env.UoW.Payments().Get(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, memberID, p.MemberID)
}

func TestProcessInstallmentReconcilesPlan(t *testing.T) {
	ctx := context.Background()
	svc, env := newServices(t)
	memberID := fixtures.SeedMember(t, env.DB, "Cal", "cal@example.com")

	plan, err := env.Ledger.CreatePlan(ctx, ledgersvc.CreatePlanCommand{
		MemberID:  memberID,
		Total:     decimal.NewFromInt(200),
		Frequency: ledger.Weekly,
	})
	require.NoError(t, err)

	session := checkoutSession(memberID, 2000)
	session["metadata"] = map[string]any{"plan_id": plan.ID.String()}
	payload, header := signedEvent(t, "evt_inst", "checkout.session.completed", session)

	result, err := svc.Process(ctx, payload, header)
	require.NoError(t, err)
	require.Equal(t, websvc.OutcomeApplied, result.Outcome)

	p, err := env.UoW.Payments().Get(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, string(ledger.TypeInstallment), p.Type)

	got, err := env.UoW.Plans().Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(180)), "got %s", got.Balance)
}

func TestProcessConcurrentInstallments(t *testing.T) {
	ctx := context.Background()
	svc, env := newServices(t)
	memberID := fixtures.SeedMember(t, env.DB, "Fay", "fay@example.com")

	plan, err := env.Ledger.CreatePlan(ctx, ledgersvc.CreatePlanCommand{
		MemberID:  memberID,
		Total:     decimal.NewFromInt(200),
		Frequency: ledger.Weekly,
	})
	require.NoError(t, err)

	// Six distinct $20 installments plus one replay of the first event ID,
	// all delivered at once.
	const events = 6
	installment := func(n int) ([]byte, string) {
		session := map[string]any{
			"id":                  fmt.Sprintf("cs_conc_%03d", n),
			"amount_total":        int64(2000),
			"client_reference_id": memberID.String(),
			"metadata":            map[string]any{"plan_id": plan.ID.String()},
		}
		return signedEvent(t, fmt.Sprintf("evt_conc_%03d", n),
			"checkout.session.completed", session)
	}

	type delivery struct {
		payload []byte
		header  string
	}
	deliveries := make([]delivery, 0, events+1)
	for i := 0; i < events; i++ {
		payload, header := installment(i)
		deliveries = append(deliveries, delivery{payload, header})
	}
	payload, header := installment(0)
	deliveries = append(deliveries, delivery{payload, header})

	results := make([]*websvc.Result, len(deliveries))
	errs := make([]error, len(deliveries))
	var wg sync.WaitGroup
	for i, d := range deliveries {
		wg.Add(1)
		go func(i int, d delivery) {
			defer wg.Done()
			results[i], errs[i] = svc.Process(ctx, d.payload, d.header)
		}(i, d)
	}
	wg.Wait()

	applied, duplicate := 0, 0
	for i := range deliveries {
		require.NoError(t, errs[i])
		switch results[i].Outcome {
		case websvc.OutcomeApplied:
			applied++
		case websvc.OutcomeDuplicate:
			duplicate++
		}
	}
	assert.Equal(t, events, applied, "every distinct event applies exactly once")
	assert.Equal(t, 1, duplicate, "the replayed event ID is deduplicated")

	// One payment per event ID, and the derived balance is exact.
	payments, err := env.UoW.Payments().ListByMember(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, payments, events)
	seen := make(map[string]bool, events)
	for _, p := range payments {
		assert.False(t, seen[p.Note], "payment recorded twice for %s", p.Note)
		seen[p.Note] = true
	}

	total, err := env.UoW.Payments().SumByMember(ctx, memberID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(120)), "got %s", total)

	got, err := env.UoW.Plans().Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(80)), "got %s", got.Balance)
	assert.True(t, got.Active)
}

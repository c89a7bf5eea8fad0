package ledger

import "errors"

var (
	// ErrEventAlreadyProcessed marks a gateway event whose identifier was
	// already recorded; the delivery is acknowledged without effect.
	ErrEventAlreadyProcessed = errors.New("event already processed")

	// ErrSignatureVerification marks a webhook payload that failed
	// signature verification. Permanent; never retried.
	ErrSignatureVerification = errors.New("webhook signature verification failed")

	// ErrActivePlanExists rejects a second active plan for the same member.
	ErrActivePlanExists = errors.New("member already has an active installment plan")

	ErrPlanNotFound     = errors.New("installment plan not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrInvalidAmount    = errors.New("amount must be a positive decimal")
	ErrInvalidMethod    = errors.New("unknown payment method")
	ErrInvalidFrequency = errors.New("unknown plan frequency")
)

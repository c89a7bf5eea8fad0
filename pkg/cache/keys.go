package cache

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Statistic keys. Every key a financial write can affect must appear in
// GlobalKeys or be derivable from the write's member/month scope, so the
// write path can delete it synchronously after commit.
const (
	KeyTotalCollected = "stats:total_collected"
	KeyDonationsTotal = "stats:donations_total"
	KeyUnpaidRoster   = "stats:unpaid_roster"
	KeyTypeSummary    = "stats:summary_types"
	KeyMethodSummary  = "stats:summary_methods"

	trendPrefix  = "stats:trend:"
	memberPrefix = "stats:member:"
)

// TrendWindows lists the trailing-window sizes the trend cache stores.
// Other window sizes are computed directly, so every cached variant is
// enumerable here for invalidation.
var TrendWindows = []int{3, 6, 12}

// MemberKey scopes a member's cached summary and plan progress.
func MemberKey(memberID uuid.UUID) string {
	return memberPrefix + memberID.String()
}

// TrendKey scopes one trend view: the month containing the given instant
// plus the requested window size. The window is part of the key so a
// request for one window is never served another window's rows.
func TrendKey(month time.Time, months int) string {
	return fmt.Sprintf("%s%s:%d", trendPrefix, month.UTC().Format("2006-01"), months)
}

// TrendKeys lists every cached trend variant for the month.
func TrendKeys(month time.Time) []string {
	keys := make([]string, 0, len(TrendWindows))
	for _, w := range TrendWindows {
		keys = append(keys, TrendKey(month, w))
	}
	return keys
}

// GlobalKeys lists every key that depends on the whole ledger.
func GlobalKeys() []string {
	return []string{
		KeyTotalCollected,
		KeyDonationsTotal,
		KeyUnpaidRoster,
		KeyTypeSummary,
		KeyMethodSummary,
	}
}

// KeysForMember lists everything a member-scoped financial write
// invalidates: the member key, all global keys, and every cached trend
// variant covering the affected month.
func KeysForMember(memberID uuid.UUID, month time.Time) []string {
	keys := append(GlobalKeys(), MemberKey(memberID))
	return append(keys, TrendKeys(month)...)
}

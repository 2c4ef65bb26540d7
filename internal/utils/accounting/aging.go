package accounting

import (
	"time"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Aging bucket labels, in display order.
const (
	Bucket0To30  = "0-30"
	Bucket31To60 = "31-60"
	Bucket61To90 = "61-90"
	BucketOver90 = "90+"
)

// AgingBuckets lists bucket labels in order.
var AgingBuckets = []string{Bucket0To30, Bucket31To60, Bucket61To90, BucketOver90}

// DaysOutstanding counts calendar days since the advance was disbursed, falling
// back to creation time. Never negative.
func DaysOutstanding(a domain.Advance, now time.Time) int {
	since := a.CreatedAt
	if a.DisbursedAt != nil {
		since = *a.DisbursedAt
	}
	days := int(calendarDay(now).Sub(calendarDay(since)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// BucketFor maps a day count onto its aging bucket label.
func BucketFor(days int) string {
	switch {
	case days <= 30:
		return Bucket0To30
	case days <= 60:
		return Bucket31To60
	case days <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// AgeAdvances groups outstanding advances into aging buckets. Every bucket is
// present in the result even when empty.
func AgeAdvances(advances []domain.Advance, now time.Time) []domain.AgingBucketTotal {
	idx := make(map[string]int, len(AgingBuckets))
	out := make([]domain.AgingBucketTotal, len(AgingBuckets))
	for i, b := range AgingBuckets {
		idx[b] = i
		out[i] = domain.AgingBucketTotal{Bucket: b, Amount: decimal.Zero}
	}
	for _, a := range advances {
		if !a.Status.IsOutstanding() {
			continue
		}
		i := idx[BucketFor(DaysOutstanding(a, now))]
		out[i].Amount = out[i].Amount.Add(a.AmountRequested)
		out[i].Count++
	}
	return out
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

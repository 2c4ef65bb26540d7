// Package policy checks retirement line items against the active spending policy.
package policy

import (
	"time"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
)

const (
	msgOverPerDiem    = "Amount exceeds per diem limit"
	msgMissingReceipt = "Receipt required above threshold"
	msgPastDeadline   = "Submitted past retirement deadline"
)

// Evaluate returns the flags item trips under p, in a fixed order:
// OVER_PER_DIEM, MISSING_RECEIPT, PAST_DEADLINE. A nil policy yields no flags.
func Evaluate(item domain.AdvanceItem, advance domain.Advance, p *domain.Policy) []domain.PolicyFlag {
	flags := []domain.PolicyFlag{}
	if p == nil {
		return flags
	}

	rule := p.RuleFor(item.Category)
	if rule != nil && rule.PerDiem != nil && item.Amount.GreaterThan(*rule.PerDiem) {
		flags = append(flags, domain.PolicyFlag{
			Code:     domain.FlagOverPerDiem,
			Message:  msgOverPerDiem,
			Severity: domain.SeverityError,
		})
	}

	if threshold := p.ReceiptThresholdFor(item.Category); threshold != nil &&
		item.Amount.GreaterThan(*threshold) && item.AttachmentURL == "" {
		flags = append(flags, domain.PolicyFlag{
			Code:     domain.FlagMissingReceipt,
			Message:  msgMissingReceipt,
			Severity: domain.SeverityError,
		})
	}

	if deadline, ok := Deadline(advance, p); ok && calendarDay(item.Date).After(deadline) {
		flags = append(flags, domain.PolicyFlag{
			Code:     domain.FlagPastDeadline,
			Message:  msgPastDeadline,
			Severity: domain.SeverityWarn,
		})
	}

	return flags
}

// EvaluateAll returns a copy of items with PolicyFlags replaced by fresh evaluation.
func EvaluateAll(items []domain.AdvanceItem, advance domain.Advance, p *domain.Policy) []domain.AdvanceItem {
	out := make([]domain.AdvanceItem, len(items))
	for i, it := range items {
		it.PolicyFlags = Evaluate(it, advance, p)
		out[i] = it
	}
	return out
}

// Deadline is expectedEndDate plus the policy's retirement window in calendar days.
// ok is false when the advance has no expected end date.
func Deadline(advance domain.Advance, p *domain.Policy) (time.Time, bool) {
	if p == nil || advance.ExpectedEndDate == nil {
		return time.Time{}, false
	}
	return calendarDay(*advance.ExpectedEndDate).AddDate(0, 0, p.RetirementDeadlineDays), true
}

// HasErrors reports whether any flag across items is ERROR severity.
func HasErrors(items []domain.AdvanceItem) bool {
	for _, it := range items {
		for _, f := range it.PolicyFlags {
			if f.Severity == domain.SeverityError {
				return true
			}
		}
	}
	return false
}

// calendarDay truncates t to midnight UTC of its own calendar date.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

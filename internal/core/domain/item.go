package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType distinguishes planning lines from actual spend.
type ItemType string

const (
	ItemTypeRequest    ItemType = "REQUEST"
	ItemTypeRetirement ItemType = "RETIREMENT"
)

// FlagCode identifies a policy rule that an item tripped.
type FlagCode string

const (
	FlagMissingReceipt FlagCode = "MISSING_RECEIPT"
	FlagOverPerDiem    FlagCode = "OVER_PER_DIEM"
	FlagPastDeadline   FlagCode = "PAST_DEADLINE"
	FlagCustom         FlagCode = "CUSTOM"
)

// Severity of a policy flag.
type Severity string

const (
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// PolicyFlag is evaluator output attached to a persisted item.
type PolicyFlag struct {
	Code     FlagCode `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// AdvanceItem is a single spend or planning line.
type AdvanceItem struct {
	ItemID        string          `json:"id"`
	AdvanceID     string          `json:"advanceId"`
	Type          ItemType        `json:"type"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Date          time.Time       `json:"date"`
	AttachmentURL string          `json:"attachmentUrl,omitempty"`
	OCRText       string          `json:"ocrText,omitempty"`
	PolicyFlags   []PolicyFlag    `json:"policyFlags,omitempty"`
}

// HasFlag reports whether the item carries a flag with the given code.
func (i AdvanceItem) HasFlag(code FlagCode) bool {
	for _, f := range i.PolicyFlags {
		if f.Code == code {
			return true
		}
	}
	return false
}

// FilterItems returns the items of the given type, preserving order.
func FilterItems(items []AdvanceItem, itemType ItemType) []AdvanceItem {
	out := make([]AdvanceItem, 0, len(items))
	for _, it := range items {
		if it.Type == itemType {
			out = append(out, it)
		}
	}
	return out
}

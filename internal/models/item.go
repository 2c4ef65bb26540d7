package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PolicyFlag is stored inside advance_items.policy_flags (JSONB).
type PolicyFlag struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// AdvanceItem is a row of advance_items.
type AdvanceItem struct {
	ItemID        string          `db:"item_id"`
	AdvanceID     string          `db:"advance_id"`
	ItemType      string          `db:"item_type"`
	Position      int             `db:"position"`
	Category      string          `db:"category"`
	Description   string          `db:"description"`
	Amount        decimal.Decimal `db:"amount"`
	Currency      string          `db:"currency"`
	ItemDate      time.Time       `db:"item_date"`
	AttachmentURL string          `db:"attachment_url"`
	OCRText       string          `db:"ocr_text"`
	PolicyFlags   []PolicyFlag    `db:"policy_flags"`
}

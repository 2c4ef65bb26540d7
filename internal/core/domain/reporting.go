package domain

import "github.com/shopspring/decimal"

// AgingBucketTotal aggregates outstanding advances by days since disbursement.
type AgingBucketTotal struct {
	Bucket string          `json:"bucket"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// GroupTotal aggregates outstanding advances under one key (cost center, employee).
type GroupTotal struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// ExposureSummary is the finance view of outstanding advance funds.
type ExposureSummary struct {
	Outstanding  decimal.Decimal    `json:"outstanding"`
	Overdue      decimal.Decimal    `json:"overdue"`
	Aging        []AgingBucketTotal `json:"aging"`
	ByCostCenter []GroupTotal       `json:"byCostCenter"`
	ByEmployee   []GroupTotal       `json:"byEmployee"`
}

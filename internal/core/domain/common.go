package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"` // UserID Reference
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"` // UserID Reference
}

// Touch advances UpdatedAt without ever moving it before CreatedAt or backwards.
func (a *AuditFields) Touch(at time.Time, by string) {
	if at.Before(a.UpdatedAt) {
		at = a.UpdatedAt
	}
	if at.Before(a.CreatedAt) {
		at = a.CreatedAt
	}
	a.UpdatedAt = at
	a.UpdatedBy = by
}

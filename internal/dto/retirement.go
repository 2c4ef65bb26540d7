package dto

import "github.com/SscSPs/cash_advance_app/internal/core/domain"

// SubmitRetirementRequest carries the actual spend for a disbursed advance.
type SubmitRetirementRequest struct {
	Items          []AdvanceItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes          string               `json:"notes" binding:"max=2000"`
	OverrideReason string               `json:"overrideReason" binding:"max=1000"`
}

// VerifyRetirementRequest is the finance decision on a submitted retirement.
type VerifyRetirementRequest struct {
	Approve *bool  `json:"approve" binding:"required"`
	Notes   string `json:"notes" binding:"max=2000"`
}

// RetirementResponse is returned by retirement operations.
type RetirementResponse struct {
	Advance AdvanceResponse          `json:"advance"`
	Summary domain.RetirementSummary `json:"summary"`
	Items   []domain.AdvanceItem     `json:"items"`
}

// ToRetirementResponse converts a domain.RetirementDetail.
func ToRetirementResponse(d *domain.RetirementDetail) RetirementResponse {
	items := d.Items
	if items == nil {
		items = []domain.AdvanceItem{}
	}
	return RetirementResponse{
		Advance: ToAdvanceResponse(&d.Advance),
		Summary: d.Summary,
		Items:   items,
	}
}

package dto

import (
	"time"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/SscSPs/cash_advance_app/internal/core/workflow"
	"github.com/SscSPs/cash_advance_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// AdvanceItemRequest is one planning or retirement line as submitted by a client.
type AdvanceItemRequest struct {
	Category      string          `json:"category" binding:"required,max=64"`
	Description   string          `json:"description" binding:"required,min=2,max=500"`
	Amount        decimal.Decimal `json:"amount"` // validated in the service: must be positive
	Currency      string          `json:"currency" binding:"omitempty,len=3"`
	Date          string          `json:"date" binding:"required,datetime=2006-01-02"`
	AttachmentURL string          `json:"attachmentUrl" binding:"max=2048"`
	OCRText       string          `json:"ocrText"`
}

// CreateAdvanceRequest defines the data needed to create a new advance.
type CreateAdvanceRequest struct {
	EmployeeID        string               `json:"employeeId"` // Optional, ADMIN may file on behalf of an employee
	Purpose           string               `json:"purpose" binding:"required,min=3,max=500"`
	Project           string               `json:"project" binding:"required,min=2,max=200"`
	CostCenterID      string               `json:"costCenterId" binding:"required"`
	GLCodeID          string               `json:"glCodeId" binding:"required"`
	AmountRequested   decimal.Decimal      `json:"amountRequested"`
	Currency          string               `json:"currency" binding:"required,len=3"`
	ExpectedStartDate string               `json:"expectedStartDate" binding:"omitempty,datetime=2006-01-02"`
	ExpectedEndDate   string               `json:"expectedEndDate" binding:"omitempty,datetime=2006-01-02"`
	Items             []AdvanceItemRequest `json:"items" binding:"omitempty,dive"`
}

// ApprovalDecisionRequest records one approval step outcome.
type ApprovalDecisionRequest struct {
	Role    domain.Role `json:"role" binding:"omitempty,oneof=MANAGER FINANCE"` // Optional, defaults from the caller or the pending step
	Approve *bool       `json:"approve" binding:"required"`
	Comment string      `json:"comment" binding:"max=1000"`
}

// DisbursementRequest records the payout of an approved advance.
type DisbursementRequest struct {
	Ref    string               `json:"ref" binding:"required,max=128"`
	Method domain.PaymentMethod `json:"method" binding:"omitempty,oneof=CASH TRANSFER"`
	Amount decimal.Decimal      `json:"amount"` // Optional, zero means the requested amount
	Date   string               `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// TransitionCommentRequest carries the optional comment of a simple transition.
type TransitionCommentRequest struct {
	Comment string `json:"comment" binding:"max=1000"`
}

// ListAdvancesParams holds query parameters for listing advances.
type ListAdvancesParams struct {
	Status     domain.AdvanceStatus `form:"status"`
	EmployeeID string               `form:"employeeId"`
	Search     string               `form:"q"`
	Limit      int                  `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset     int                  `form:"offset" binding:"omitempty,min=0"`
	NextToken  string               `form:"nextToken"` // from a previous page; replaces offset
}

// ToFilter converts query parameters to a domain filter. It fails only on a
// malformed NextToken.
func (p ListAdvancesParams) ToFilter() (domain.AdvanceFilter, error) {
	filter := domain.AdvanceFilter{
		Status:     p.Status,
		EmployeeID: p.EmployeeID,
		Search:     p.Search,
		Limit:      p.Limit,
		Offset:     p.Offset,
	}
	if p.NextToken != "" {
		createdAt, advanceID, err := pagination.DecodeCursor(p.NextToken)
		if err != nil {
			return domain.AdvanceFilter{}, err
		}
		filter.After = &domain.AdvanceCursor{CreatedAt: createdAt, AdvanceID: advanceID}
		filter.Offset = 0
	}
	return filter, nil
}

// ApprovalStepResponse mirrors domain.ApprovalStep.
type ApprovalStepResponse struct {
	Role    domain.Role       `json:"role"`
	Status  domain.StepStatus `json:"status"`
	ActorID string            `json:"actorId,omitempty"`
	ActedAt *time.Time        `json:"actedAt,omitempty"`
	Comment string            `json:"comment,omitempty"`
}

// AdvanceResponse defines the data returned for an advance.
type AdvanceResponse struct {
	AdvanceID         string                 `json:"id"`
	EmployeeID        string                 `json:"employeeId"`
	Purpose           string                 `json:"purpose"`
	Project           string                 `json:"project"`
	CostCenterID      string                 `json:"costCenterId"`
	GLCodeID          string                 `json:"glCodeId"`
	AmountRequested   decimal.Decimal        `json:"amountRequested"`
	Currency          string                 `json:"currency"`
	Status            domain.AdvanceStatus   `json:"status"`
	Approvals         []ApprovalStepResponse `json:"approvals"`
	ExpectedStartDate string                 `json:"expectedStartDate,omitempty"`
	ExpectedEndDate   string                 `json:"expectedEndDate,omitempty"`
	DisbursedAt       *time.Time             `json:"disbursedAt,omitempty"`
	DisbursementRef   string                 `json:"disbursementRef,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// AdvanceWithItemsResponse is the single-advance view. Items is always present.
type AdvanceWithItemsResponse struct {
	AdvanceResponse
	Items []domain.AdvanceItem `json:"items"`
}

// ListAdvancesResponse wraps a page of advances.
type ListAdvancesResponse struct {
	Advances  []AdvanceResponse `json:"advances"`
	NextToken string            `json:"nextToken,omitempty"`
}

// TransitionResponse describes one action the caller may take next.
type TransitionResponse struct {
	Action workflow.Action      `json:"action"`
	To     domain.AdvanceStatus `json:"to"`
}

// ToAdvanceResponse converts a domain.Advance to AdvanceResponse DTO
func ToAdvanceResponse(a *domain.Advance) AdvanceResponse {
	resp := AdvanceResponse{
		AdvanceID:       a.AdvanceID,
		EmployeeID:      a.EmployeeID,
		Purpose:         a.Purpose,
		Project:         a.Project,
		CostCenterID:    a.CostCenterID,
		GLCodeID:        a.GLCodeID,
		AmountRequested: a.AmountRequested,
		Currency:        a.Currency,
		Status:          a.Status,
		Approvals:       make([]ApprovalStepResponse, 0, len(a.Approvals)),
		DisbursedAt:     a.DisbursedAt,
		DisbursementRef: a.DisbursementRef,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.ExpectedStartDate != nil {
		resp.ExpectedStartDate = a.ExpectedStartDate.Format(DateLayout)
	}
	if a.ExpectedEndDate != nil {
		resp.ExpectedEndDate = a.ExpectedEndDate.Format(DateLayout)
	}
	for _, s := range a.Approvals {
		resp.Approvals = append(resp.Approvals, ApprovalStepResponse(s))
	}
	return resp
}

// ToAdvanceWithItemsResponse includes the line items.
func ToAdvanceWithItemsResponse(a *domain.AdvanceWithItems) AdvanceWithItemsResponse {
	items := a.Items
	if items == nil {
		items = []domain.AdvanceItem{}
	}
	return AdvanceWithItemsResponse{AdvanceResponse: ToAdvanceResponse(&a.Advance), Items: items}
}

// ToListAdvancesResponse converts a slice of advances. A full page of size
// limit carries a token for the next one.
func ToListAdvancesResponse(advances []domain.Advance, limit int) ListAdvancesResponse {
	out := ListAdvancesResponse{Advances: make([]AdvanceResponse, 0, len(advances))}
	for i := range advances {
		out.Advances = append(out.Advances, ToAdvanceResponse(&advances[i]))
	}
	if limit > 0 && len(advances) == limit {
		last := advances[len(advances)-1]
		out.NextToken = pagination.EncodeCursor(last.CreatedAt, last.AdvanceID)
	}
	return out
}

// ToTransitionResponses converts workflow rows to their wire form.
func ToTransitionResponses(ts []workflow.Transition) []TransitionResponse {
	out := make([]TransitionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, TransitionResponse{Action: t.Action, To: t.To})
	}
	return out
}

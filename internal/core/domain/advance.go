package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdvanceStatus is the lifecycle state of an advance.
type AdvanceStatus string

const (
	StatusDraft              AdvanceStatus = "DRAFT"
	StatusPendingManager     AdvanceStatus = "PENDING_MANAGER"
	StatusPendingFinance     AdvanceStatus = "PENDING_FINANCE"
	StatusApproved           AdvanceStatus = "APPROVED"
	StatusDisbursed          AdvanceStatus = "DISBURSED"
	StatusAwaitingRetirement AdvanceStatus = "AWAITING_RETIREMENT"
	StatusUnderReview        AdvanceStatus = "UNDER_REVIEW"
	StatusSettled            AdvanceStatus = "SETTLED"
	StatusRejected           AdvanceStatus = "REJECTED"
	StatusOverdue            AdvanceStatus = "OVERDUE"
)

// AllStatuses lists every advance status in lifecycle order.
var AllStatuses = []AdvanceStatus{
	StatusDraft,
	StatusPendingManager,
	StatusPendingFinance,
	StatusApproved,
	StatusDisbursed,
	StatusAwaitingRetirement,
	StatusUnderReview,
	StatusSettled,
	StatusRejected,
	StatusOverdue,
}

// OutstandingStatuses are the statuses in which disbursed funds are not yet reconciled.
var OutstandingStatuses = []AdvanceStatus{
	StatusDisbursed,
	StatusAwaitingRetirement,
	StatusUnderReview,
	StatusOverdue,
}

// IsValid reports whether s is a known status.
func (s AdvanceStatus) IsValid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// IsOutstanding reports whether the advance still carries unreconciled funds.
func (s AdvanceStatus) IsOutstanding() bool {
	for _, st := range OutstandingStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func (s AdvanceStatus) String() string {
	return string(s)
}

// StepStatus is the outcome of one approval checkpoint.
type StepStatus string

const (
	StepPending  StepStatus = "PENDING"
	StepApproved StepStatus = "APPROVED"
	StepRejected StepStatus = "REJECTED"
)

// ApprovalStep is one role's approval checkpoint. Once decided it never changes.
type ApprovalStep struct {
	Role    Role       `json:"role"`
	Status  StepStatus `json:"status"`
	ActorID string     `json:"actorId,omitempty"`
	ActedAt *time.Time `json:"actedAt,omitempty"`
	Comment string     `json:"comment,omitempty"`
}

// IsDecided reports whether the step has left PENDING.
func (s ApprovalStep) IsDecided() bool {
	return s.Status != StepPending
}

// RequiredApprovalRoles are the steps created for every advance, in order.
var RequiredApprovalRoles = []Role{RoleManager, RoleFinance}

// Advance is one cash-advance request.
type Advance struct {
	AdvanceID         string          `json:"id"`
	EmployeeID        string          `json:"employeeId"`
	Purpose           string          `json:"purpose"`
	Project           string          `json:"project"`
	CostCenterID      string          `json:"costCenterId"`
	GLCodeID          string          `json:"glCodeId"`
	AmountRequested   decimal.Decimal `json:"amountRequested"`
	Currency          string          `json:"currency"`
	Status            AdvanceStatus   `json:"status"`
	Approvals         []ApprovalStep  `json:"approvals"`
	ExpectedStartDate *time.Time      `json:"expectedStartDate,omitempty"`
	ExpectedEndDate   *time.Time      `json:"expectedEndDate,omitempty"`
	DisbursedAt       *time.Time      `json:"disbursedAt,omitempty"`
	DisbursementRef   string          `json:"disbursementRef,omitempty"`
	AuditFields
}

// ApprovalStepIndex returns the index of the step for role, or -1.
func (a *Advance) ApprovalStepIndex(role Role) int {
	for i := range a.Approvals {
		if a.Approvals[i].Role == role {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (a Advance) Clone() Advance {
	c := a
	c.Approvals = make([]ApprovalStep, len(a.Approvals))
	for i, step := range a.Approvals {
		c.Approvals[i] = step
		c.Approvals[i].ActedAt = cloneTime(step.ActedAt)
	}
	c.ExpectedStartDate = cloneTime(a.ExpectedStartDate)
	c.ExpectedEndDate = cloneTime(a.ExpectedEndDate)
	c.DisbursedAt = cloneTime(a.DisbursedAt)
	return c
}

// AdvanceWithItems is an advance together with its line items.
type AdvanceWithItems struct {
	Advance
	Items []AdvanceItem `json:"items"`
}

// AdvanceFilter narrows ListAdvances.
type AdvanceFilter struct {
	Status     AdvanceStatus
	EmployeeID string
	Search     string // matched case-insensitively against purpose and project
	Limit      int
	Offset     int
	After      *AdvanceCursor // keyset position; rows strictly after it in list order
}

// AdvanceCursor identifies a row in the created_at DESC, advance_id DESC order.
type AdvanceCursor struct {
	CreatedAt time.Time
	AdvanceID string
}

// Admits reports whether a comes after the cursor in list order.
func (c AdvanceCursor) Admits(a Advance) bool {
	if a.CreatedAt.Equal(c.CreatedAt) {
		return a.AdvanceID < c.AdvanceID
	}
	return a.CreatedAt.Before(c.CreatedAt)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

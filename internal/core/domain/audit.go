package domain

import "time"

// EntityType names the kind of entity an audit entry refers to.
type EntityType string

const (
	EntityAdvance    EntityType = "ADVANCE"
	EntityRetirement EntityType = "RETIREMENT"
	EntityPolicy     EntityType = "POLICY"
	EntityPayment    EntityType = "PAYMENT"
)

// Audit actions recorded by the lifecycle service.
const (
	ActionAdvanceCreated      = "ADVANCE_CREATED"
	ActionSubmitted           = "SUBMITTED"
	ActionApprovalUpdated     = "APPROVAL_UPDATED"
	ActionDisbursed           = "DISBURSED"
	ActionRetirementRequested = "RETIREMENT_REQUESTED"
	ActionRetirementSubmitted = "RETIREMENT_SUBMITTED"
	ActionRetirementVerified  = "RETIREMENT_VERIFIED"
	ActionChangesRequested    = "CHANGES_REQUESTED"
	ActionMarkedOverdue       = "MARKED_OVERDUE"
	ActionPaymentRecorded     = "PAYMENT_RECORDED"
)

// AuditLogEntry is an append-only record of one mutation.
// EntityID is always the advance id; EntityType says which part of it changed.
// Before and After hold only the fields that materially changed.
type AuditLogEntry struct {
	AuditID    string         `json:"id"`
	ActorID    string         `json:"actorId"`
	Action     string         `json:"action"`
	EntityType EntityType     `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	At         time.Time      `json:"at"`
	Comment    string         `json:"comment,omitempty"`
}

// Package workflow holds the advance lifecycle transition table and the
// predicates built on it. Everything here is pure and safe for concurrent use.
package workflow

import (
	"github.com/SscSPs/cash_advance_app/internal/apperrors"
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
)

// Action labels a row of the transition table.
type Action string

const (
	ActionSubmit            Action = "SUBMIT"
	ActionApprove           Action = "APPROVE"
	ActionReject            Action = "REJECT"
	ActionDisburse          Action = "DISBURSE"
	ActionRequestRetirement Action = "REQUEST_RETIREMENT"
	ActionSubmitRetirement  Action = "SUBMIT_RETIREMENT"
	ActionSettle            Action = "SETTLE"
	ActionRequestChanges    Action = "REQUEST_CHANGES"
	ActionMarkOverdue       Action = "MARK_OVERDUE"
)

// Transition is one legal (from, to) edge and the roles allowed to take it.
type Transition struct {
	From   domain.AdvanceStatus `json:"from"`
	To     domain.AdvanceStatus `json:"to"`
	Roles  []domain.Role        `json:"roles"`
	Action Action               `json:"action"`
}

// Allows reports whether role may take this edge.
func (t Transition) Allows(role domain.Role) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	employeeOrAdmin = []domain.Role{domain.RoleEmployee, domain.RoleAdmin}
	managerOrAdmin  = []domain.Role{domain.RoleManager, domain.RoleAdmin}
	financeOrAdmin  = []domain.Role{domain.RoleFinance, domain.RoleAdmin}
)

// transitions is the single source of truth. Order matters for NextStatuses.
var transitions = []Transition{
	{domain.StatusDraft, domain.StatusPendingManager, employeeOrAdmin, ActionSubmit},
	{domain.StatusPendingManager, domain.StatusPendingFinance, managerOrAdmin, ActionApprove},
	{domain.StatusPendingManager, domain.StatusRejected, managerOrAdmin, ActionReject},
	{domain.StatusPendingFinance, domain.StatusApproved, financeOrAdmin, ActionApprove},
	{domain.StatusPendingFinance, domain.StatusRejected, financeOrAdmin, ActionReject},
	{domain.StatusApproved, domain.StatusDisbursed, financeOrAdmin, ActionDisburse},
	{domain.StatusDisbursed, domain.StatusAwaitingRetirement, financeOrAdmin, ActionRequestRetirement},
	{domain.StatusAwaitingRetirement, domain.StatusUnderReview, employeeOrAdmin, ActionSubmitRetirement},
	{domain.StatusUnderReview, domain.StatusSettled, financeOrAdmin, ActionSettle},
	{domain.StatusUnderReview, domain.StatusAwaitingRetirement, financeOrAdmin, ActionRequestChanges},
	{domain.StatusDisbursed, domain.StatusOverdue, financeOrAdmin, ActionMarkOverdue},
}

// Transitions returns a copy of the full table.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	for i, t := range transitions {
		out[i] = t
		out[i].Roles = append([]domain.Role(nil), t.Roles...)
	}
	return out
}

func find(from, to domain.AdvanceStatus) (Transition, bool) {
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}

// IsAllowed reports whether role may move an advance from one status to another.
func IsAllowed(from, to domain.AdvanceStatus, role domain.Role) bool {
	t, ok := find(from, to)
	return ok && t.Allows(role)
}

// NextStatuses lists every status reachable from the given one, ignoring role.
func NextStatuses(from domain.AdvanceStatus) []domain.AdvanceStatus {
	var out []domain.AdvanceStatus
	for _, t := range transitions {
		if t.From == from {
			out = append(out, t.To)
		}
	}
	return out
}

// AssertTransition returns an IllegalTransitionError when IsAllowed is false.
func AssertTransition(from, to domain.AdvanceStatus, role domain.Role) error {
	if !IsAllowed(from, to, role) {
		return apperrors.NewIllegalTransition(string(from), string(to), string(role))
	}
	return nil
}

// AvailableTransitions returns the rows leaving status that role may take.
func AvailableTransitions(from domain.AdvanceStatus, role domain.Role) []Transition {
	out := []Transition{}
	for _, t := range transitions {
		if t.From == from && t.Allows(role) {
			out = append(out, t)
		}
	}
	return out
}

// RolesFor returns the roles granted an action on any edge.
func RolesFor(action Action) []domain.Role {
	seen := map[domain.Role]bool{}
	var out []domain.Role
	for _, t := range transitions {
		if t.Action != action {
			continue
		}
		for _, r := range t.Roles {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// CanPerform reports whether role holds action on at least one edge.
func CanPerform(action Action, role domain.Role) bool {
	for _, r := range RolesFor(action) {
		if r == role {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no edge leaves status.
func IsTerminal(status domain.AdvanceStatus) bool {
	return len(NextStatuses(status)) == 0
}

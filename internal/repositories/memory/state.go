package memory

import (
	"maps"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
)

type state struct {
	advances    map[string]domain.Advance
	order       []string
	items       map[string][]domain.AdvanceItem
	retirements map[string]domain.RetirementSummary
	payments    map[string][]domain.Payment
	audit       []domain.AuditLogEntry
	policies    []domain.Policy
}

func newState() *state {
	return &state{
		advances:    map[string]domain.Advance{},
		items:       map[string][]domain.AdvanceItem{},
		retirements: map[string]domain.RetirementSummary{},
		payments:    map[string][]domain.Payment{},
	}
}

// clone copies everything a unit of work could mutate.
func (s *state) clone() *state {
	c := newState()
	for id, a := range s.advances {
		c.advances[id] = a.Clone()
	}
	c.order = append([]string(nil), s.order...)
	for id, items := range s.items {
		c.items[id] = cloneItems(items)
	}
	maps.Copy(c.retirements, s.retirements)
	for id, ps := range s.payments {
		c.payments[id] = append([]domain.Payment(nil), ps...)
	}
	// audit entries are never mutated after append
	c.audit = append([]domain.AuditLogEntry(nil), s.audit...)
	for _, p := range s.policies {
		c.policies = append(c.policies, clonePolicy(p))
	}
	return c
}

func (s *state) savePolicy(p domain.Policy) {
	for i := range s.policies {
		if s.policies[i].PolicyID == p.PolicyID {
			s.policies[i] = clonePolicy(p)
			return
		}
	}
	s.policies = append(s.policies, clonePolicy(p))
}

func cloneItems(items []domain.AdvanceItem) []domain.AdvanceItem {
	out := make([]domain.AdvanceItem, len(items))
	for i, it := range items {
		out[i] = it
		if it.PolicyFlags != nil {
			out[i].PolicyFlags = append([]domain.PolicyFlag(nil), it.PolicyFlags...)
		}
	}
	return out
}

func cloneAudit(e domain.AuditLogEntry) domain.AuditLogEntry {
	e.Before = maps.Clone(e.Before)
	e.After = maps.Clone(e.After)
	return e
}

func clonePolicy(p domain.Policy) domain.Policy {
	p.Categories = append([]domain.PolicyCategoryRule(nil), p.Categories...)
	return p
}

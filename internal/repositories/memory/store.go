// Package memory keeps advances in process memory. It backs local development
// and the service tests only: every transaction clones the whole store, so a
// write costs time proportional to everything stored.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/SscSPs/cash_advance_app/internal/apperrors"
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/cash_advance_app/internal/core/ports/repositories"
	"github.com/google/uuid"
)

// Store is an in-memory AdvanceRepositoryWithTx. Units of work are serialized
// and operate on a private copy that replaces the live state on commit.
type Store struct {
	txMu sync.Mutex   // one writer at a time
	mu   sync.RWMutex // guards st
	st   *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

var (
	_ portsrepo.AdvanceRepositoryWithTx = (*Store)(nil)
	_ portsrepo.ReportingRepository     = (*Store)(nil)
	_ portsrepo.AdvanceRepositoryFacade = (*txRepo)(nil)
)

// RunInTx runs fn against a snapshot and publishes it only if fn succeeds.
func (s *Store) RunInTx(ctx context.Context, fn portsrepo.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &txRepo{st: snapshot}); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = snapshot
	s.mu.Unlock()
	return nil
}

func (s *Store) read() *txRepo {
	return &txRepo{st: s.st}
}

func (s *Store) write(ctx context.Context, fn func(r *txRepo) error) error {
	return s.RunInTx(ctx, func(_ context.Context, repo portsrepo.AdvanceRepositoryFacade) error {
		return fn(repo.(*txRepo))
	})
}

func (s *Store) FindAdvanceByID(ctx context.Context, advanceID string) (*domain.Advance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().FindAdvanceByID(ctx, advanceID)
}

// FindAdvanceByIDForUpdate outside RunInTx holds nothing; it behaves like FindAdvanceByID.
func (s *Store) FindAdvanceByIDForUpdate(ctx context.Context, advanceID string) (*domain.Advance, error) {
	return s.FindAdvanceByID(ctx, advanceID)
}

func (s *Store) ListAdvances(ctx context.Context, filter domain.AdvanceFilter) ([]domain.Advance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListAdvances(ctx, filter)
}

func (s *Store) SaveAdvance(ctx context.Context, advance domain.Advance) error {
	return s.write(ctx, func(r *txRepo) error { return r.SaveAdvance(ctx, advance) })
}

func (s *Store) ListItems(ctx context.Context, advanceID string) ([]domain.AdvanceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListItems(ctx, advanceID)
}

func (s *Store) ReplaceItems(ctx context.Context, advanceID string, itemType domain.ItemType, items []domain.AdvanceItem) error {
	return s.write(ctx, func(r *txRepo) error { return r.ReplaceItems(ctx, advanceID, itemType, items) })
}

func (s *Store) FindRetirementByAdvanceID(ctx context.Context, advanceID string) (*domain.RetirementSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().FindRetirementByAdvanceID(ctx, advanceID)
}

func (s *Store) SaveRetirement(ctx context.Context, summary domain.RetirementSummary) error {
	return s.write(ctx, func(r *txRepo) error { return r.SaveRetirement(ctx, summary) })
}

func (s *Store) AppendPayment(ctx context.Context, payment domain.Payment) error {
	return s.write(ctx, func(r *txRepo) error { return r.AppendPayment(ctx, payment) })
}

func (s *Store) ListPayments(ctx context.Context, advanceID string) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListPayments(ctx, advanceID)
}

func (s *Store) AppendAudit(ctx context.Context, entry domain.AuditLogEntry) error {
	return s.write(ctx, func(r *txRepo) error { return r.AppendAudit(ctx, entry) })
}

func (s *Store) ListAuditLogs(ctx context.Context, entityID string, entityType domain.EntityType) ([]domain.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListAuditLogs(ctx, entityID, entityType)
}

func (s *Store) GetActivePolicy(ctx context.Context) (*domain.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetActivePolicy(ctx)
}

// SavePolicy adds a policy or replaces the one with the same id.
func (s *Store) SavePolicy(ctx context.Context, p domain.Policy) error {
	return s.write(ctx, func(r *txRepo) error {
		r.st.savePolicy(p)
		return nil
	})
}

// ListOutstandingAdvances returns advances in an outstanding status.
func (s *Store) ListOutstandingAdvances(ctx context.Context) ([]domain.Advance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Advance{}
	for _, id := range s.st.order {
		a := s.st.advances[id]
		if a.Status.IsOutstanding() {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

// txRepo works directly on one state value. The caller owns synchronization.
type txRepo struct {
	st *state
}

func (r *txRepo) FindAdvanceByID(_ context.Context, advanceID string) (*domain.Advance, error) {
	a, ok := r.st.advances[advanceID]
	if !ok {
		return nil, apperrors.NewNotFoundError("advance", advanceID)
	}
	c := a.Clone()
	return &c, nil
}

func (r *txRepo) FindAdvanceByIDForUpdate(ctx context.Context, advanceID string) (*domain.Advance, error) {
	return r.FindAdvanceByID(ctx, advanceID)
}

func (r *txRepo) ListAdvances(_ context.Context, filter domain.AdvanceFilter) ([]domain.Advance, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := []domain.Advance{}
	for _, id := range r.st.order {
		a := r.st.advances[id]
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.EmployeeID != "" && a.EmployeeID != filter.EmployeeID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Purpose), search) &&
			!strings.Contains(strings.ToLower(a.Project), search) {
			continue
		}
		if filter.After != nil && !filter.After.Admits(a) {
			continue
		}
		matched = append(matched, a.Clone())
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].AdvanceID > matched[j].AdvanceID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []domain.Advance{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *txRepo) SaveAdvance(_ context.Context, advance domain.Advance) error {
	if _, exists := r.st.advances[advance.AdvanceID]; !exists {
		r.st.order = append(r.st.order, advance.AdvanceID)
	}
	r.st.advances[advance.AdvanceID] = advance.Clone()
	return nil
}

func (r *txRepo) ListItems(_ context.Context, advanceID string) ([]domain.AdvanceItem, error) {
	items := cloneItems(r.st.items[advanceID])
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Type == domain.ItemTypeRequest && items[j].Type != domain.ItemTypeRequest
	})
	return items, nil
}

func (r *txRepo) ReplaceItems(_ context.Context, advanceID string, itemType domain.ItemType, items []domain.AdvanceItem) error {
	kept := []domain.AdvanceItem{}
	for _, it := range r.st.items[advanceID] {
		if it.Type != itemType {
			kept = append(kept, it)
		}
	}
	for _, it := range cloneItems(items) {
		if it.ItemID == "" {
			it.ItemID = uuid.NewString()
		}
		it.AdvanceID = advanceID
		it.Type = itemType
		kept = append(kept, it)
	}
	r.st.items[advanceID] = kept
	return nil
}

func (r *txRepo) FindRetirementByAdvanceID(_ context.Context, advanceID string) (*domain.RetirementSummary, error) {
	ret, ok := r.st.retirements[advanceID]
	if !ok {
		return nil, apperrors.NewNotFoundError("retirement for advance", advanceID)
	}
	return &ret, nil
}

func (r *txRepo) SaveRetirement(_ context.Context, summary domain.RetirementSummary) error {
	r.st.retirements[summary.AdvanceID] = summary
	return nil
}

func (r *txRepo) AppendPayment(_ context.Context, payment domain.Payment) error {
	r.st.payments[payment.AdvanceID] = append(r.st.payments[payment.AdvanceID], payment)
	return nil
}

func (r *txRepo) ListPayments(_ context.Context, advanceID string) ([]domain.Payment, error) {
	return append([]domain.Payment{}, r.st.payments[advanceID]...), nil
}

func (r *txRepo) AppendAudit(_ context.Context, entry domain.AuditLogEntry) error {
	r.st.audit = append(r.st.audit, cloneAudit(entry))
	return nil
}

func (r *txRepo) ListAuditLogs(_ context.Context, entityID string, entityType domain.EntityType) ([]domain.AuditLogEntry, error) {
	out := []domain.AuditLogEntry{}
	for _, e := range r.st.audit {
		if e.EntityID == entityID && (entityType == "" || e.EntityType == entityType) {
			out = append(out, cloneAudit(e))
		}
	}
	return out, nil
}

func (r *txRepo) GetActivePolicy(_ context.Context) (*domain.Policy, error) {
	if len(r.st.policies) == 0 {
		return nil, apperrors.NewNotFoundError("policy", "active")
	}
	p := clonePolicy(r.st.policies[0])
	return &p, nil
}

// NewRepositoryProvider exposes one Store as every repository.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{AdvanceRepo: s, ReportingRepo: s}
}

package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/cash_advance_app/internal/apperrors"
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/cash_advance_app/internal/core/ports/repositories"
	"github.com/SscSPs/cash_advance_app/internal/models"
	"github.com/SscSPs/cash_advance_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const advanceColumns = `
	advance_id, employee_id, purpose, project, cost_center_id, gl_code_id,
	amount_requested, currency, status, expected_start_date, expected_end_date,
	disbursed_at, disbursement_ref, created_at, created_by, last_updated_at, last_updated_by`

// PgxAdvanceRepository stores advances and everything hanging off them. The
// same type serves the pool and, inside RunInTx, a single transaction.
type PgxAdvanceRepository struct {
	BaseRepository
	db   querier
	inTx bool
}

func newPgxAdvanceRepository(pool *pgxpool.Pool) *PgxAdvanceRepository {
	return &PgxAdvanceRepository{
		BaseRepository: BaseRepository{Pool: pool},
		db:             pool,
	}
}

// Ensure PgxAdvanceRepository implements portsrepo.AdvanceRepositoryWithTx
var _ portsrepo.AdvanceRepositoryWithTx = (*PgxAdvanceRepository)(nil)

// RunInTx runs fn in one database transaction. Nested calls join the outer one.
func (r *PgxAdvanceRepository) RunInTx(ctx context.Context, fn portsrepo.TxFunc) error {
	if r.inTx {
		return fn(ctx, r)
	}
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // no-op once committed

	txRepo := &PgxAdvanceRepository{BaseRepository: r.BaseRepository, db: tx, inTx: true}
	if err := fn(ctx, txRepo); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FindAdvanceByID retrieves an advance with its approval steps.
func (r *PgxAdvanceRepository) FindAdvanceByID(ctx context.Context, advanceID string) (*domain.Advance, error) {
	return r.findAdvance(ctx, advanceID, "")
}

// FindAdvanceByIDForUpdate locks the advance row until the transaction ends.
func (r *PgxAdvanceRepository) FindAdvanceByIDForUpdate(ctx context.Context, advanceID string) (*domain.Advance, error) {
	return r.findAdvance(ctx, advanceID, " FOR UPDATE")
}

func (r *PgxAdvanceRepository) findAdvance(ctx context.Context, advanceID, lock string) (*domain.Advance, error) {
	query := `SELECT ` + advanceColumns + ` FROM advances WHERE advance_id = $1` + lock
	m, err := scanAdvance(r.db.QueryRow(ctx, query, advanceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("advance", advanceID)
		}
		return nil, fmt.Errorf("failed to find advance by ID %s: %w", advanceID, err)
	}
	steps, err := r.loadSteps(ctx, []string{advanceID})
	if err != nil {
		return nil, err
	}
	a := mapping.ToDomainAdvance(m, steps[advanceID])
	return &a, nil
}

// ListAdvances retrieves advances matching the filter, newest first.
func (r *PgxAdvanceRepository) ListAdvances(ctx context.Context, filter domain.AdvanceFilter) ([]domain.Advance, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(purpose ILIKE $%d OR project ILIKE $%d)", len(args), len(args)))
	}
	if filter.After != nil {
		args = append(args, filter.After.CreatedAt, filter.After.AdvanceID)
		where = append(where, fmt.Sprintf("(created_at, advance_id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + advanceColumns + ` FROM advances`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, advance_id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.queryAdvances(ctx, query, args...)
}

// queryAdvances runs a query selecting advanceColumns and attaches approval steps.
func (r *PgxAdvanceRepository) queryAdvances(ctx context.Context, query string, args ...any) ([]domain.Advance, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query advances: %w", err)
	}
	defer rows.Close()

	var rowsOut []models.Advance
	for rows.Next() {
		m, err := scanAdvance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advance row: %w", err)
		}
		rowsOut = append(rowsOut, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating advance rows: %w", err)
	}

	ids := make([]string, len(rowsOut))
	for i, m := range rowsOut {
		ids[i] = m.AdvanceID
	}
	steps, err := r.loadSteps(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Advance, 0, len(rowsOut))
	for _, m := range rowsOut {
		out = append(out, mapping.ToDomainAdvance(m, steps[m.AdvanceID]))
	}
	return out, nil
}

func (r *PgxAdvanceRepository) loadSteps(ctx context.Context, advanceIDs []string) (map[string][]models.ApprovalStep, error) {
	out := make(map[string][]models.ApprovalStep, len(advanceIDs))
	if len(advanceIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT advance_id, position, role, status, actor_id, acted_at, comment
		FROM approval_steps
		WHERE advance_id = ANY($1)
		ORDER BY advance_id, position`, advanceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ApprovalStep
		if err := rows.Scan(&s.AdvanceID, &s.Position, &s.Role, &s.Status, &s.ActorID, &s.ActedAt, &s.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan approval step: %w", err)
		}
		out[s.AdvanceID] = append(out[s.AdvanceID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval steps: %w", err)
	}
	return out, nil
}

// SaveAdvance upserts the advance row and its approval steps.
func (r *PgxAdvanceRepository) SaveAdvance(ctx context.Context, advance domain.Advance) error {
	m, steps := mapping.ToModelAdvance(advance)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO advances (`+advanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (advance_id) DO UPDATE SET
			employee_id = EXCLUDED.employee_id,
			purpose = EXCLUDED.purpose,
			project = EXCLUDED.project,
			cost_center_id = EXCLUDED.cost_center_id,
			gl_code_id = EXCLUDED.gl_code_id,
			amount_requested = EXCLUDED.amount_requested,
			currency = EXCLUDED.currency,
			status = EXCLUDED.status,
			expected_start_date = EXCLUDED.expected_start_date,
			expected_end_date = EXCLUDED.expected_end_date,
			disbursed_at = EXCLUDED.disbursed_at,
			disbursement_ref = EXCLUDED.disbursement_ref,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by`,
		m.AdvanceID, m.EmployeeID, m.Purpose, m.Project, m.CostCenterID, m.GLCodeID,
		m.AmountRequested, m.Currency, m.Status, m.ExpectedStartDate, m.ExpectedEndDate,
		m.DisbursedAt, m.DisbursementRef, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	for _, s := range steps {
		batch.Queue(`
			INSERT INTO approval_steps (advance_id, position, role, status, actor_id, acted_at, comment)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (advance_id, role) DO UPDATE SET
				status = EXCLUDED.status,
				actor_id = EXCLUDED.actor_id,
				acted_at = EXCLUDED.acted_at,
				comment = EXCLUDED.comment`,
			s.AdvanceID, s.Position, s.Role, s.Status, s.ActorID, s.ActedAt, s.Comment,
		)
	}
	if err := r.execBatch(ctx, batch); err != nil {
		return apperrors.NewAppError(500, "failed to save advance "+advance.AdvanceID, err)
	}
	return nil
}

// ListItems returns every item of an advance, REQUEST items first.
func (r *PgxAdvanceRepository) ListItems(ctx context.Context, advanceID string) ([]domain.AdvanceItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT item_id, advance_id, item_type, position, category, description, amount,
			currency, item_date, attachment_url, ocr_text, policy_flags
		FROM advance_items
		WHERE advance_id = $1
		ORDER BY CASE item_type WHEN 'REQUEST' THEN 0 ELSE 1 END, position`, advanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for advance %s: %w", advanceID, err)
	}
	defer rows.Close()

	items := []domain.AdvanceItem{}
	for rows.Next() {
		var m models.AdvanceItem
		if err := rows.Scan(&m.ItemID, &m.AdvanceID, &m.ItemType, &m.Position, &m.Category, &m.Description,
			&m.Amount, &m.Currency, &m.ItemDate, &m.AttachmentURL, &m.OCRText, &m.PolicyFlags); err != nil {
			return nil, fmt.Errorf("failed to scan advance item: %w", err)
		}
		items = append(items, mapping.ToDomainAdvanceItem(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating advance items: %w", err)
	}
	return items, nil
}

// ReplaceItems deletes the advance's items of itemType and inserts items in their place.
func (r *PgxAdvanceRepository) ReplaceItems(ctx context.Context, advanceID string, itemType domain.ItemType, items []domain.AdvanceItem) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM advance_items WHERE advance_id = $1 AND item_type = $2`, advanceID, string(itemType))
	for _, m := range mapping.ToModelAdvanceItems(items) {
		batch.Queue(`
			INSERT INTO advance_items (item_id, advance_id, item_type, position, category, description,
				amount, currency, item_date, attachment_url, ocr_text, policy_flags)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			m.ItemID, advanceID, string(itemType), m.Position, m.Category, m.Description,
			m.Amount, m.Currency, m.ItemDate, m.AttachmentURL, m.OCRText, m.PolicyFlags,
		)
	}
	if err := r.execBatch(ctx, batch); err != nil {
		return apperrors.NewAppError(500, "failed to replace items for advance "+advanceID, err)
	}
	return nil
}

// FindRetirementByAdvanceID returns apperrors.ErrNotFound when nothing was submitted.
func (r *PgxAdvanceRepository) FindRetirementByAdvanceID(ctx context.Context, advanceID string) (*domain.RetirementSummary, error) {
	var m models.RetirementSummary
	err := r.db.QueryRow(ctx, `
		SELECT retirement_id, advance_id, submitted_by, submitted_at, total_spent,
			refund_due_to_company, topup_due_to_employee, status, finance_notes, override_reason
		FROM retirement_summaries
		WHERE advance_id = $1`, advanceID).Scan(
		&m.RetirementID, &m.AdvanceID, &m.SubmittedBy, &m.SubmittedAt, &m.TotalSpent,
		&m.RefundDueToCompany, &m.TopupDueToEmployee, &m.Status, &m.FinanceNotes, &m.OverrideReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("retirement for advance", advanceID)
		}
		return nil, fmt.Errorf("failed to find retirement for advance %s: %w", advanceID, err)
	}
	d := mapping.ToDomainRetirement(m)
	return &d, nil
}

// SaveRetirement upserts the advance's retirement summary.
func (r *PgxAdvanceRepository) SaveRetirement(ctx context.Context, summary domain.RetirementSummary) error {
	m := mapping.ToModelRetirement(summary)
	_, err := r.db.Exec(ctx, `
		INSERT INTO retirement_summaries (retirement_id, advance_id, submitted_by, submitted_at, total_spent,
			refund_due_to_company, topup_due_to_employee, status, finance_notes, override_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (advance_id) DO UPDATE SET
			submitted_by = EXCLUDED.submitted_by,
			submitted_at = EXCLUDED.submitted_at,
			total_spent = EXCLUDED.total_spent,
			refund_due_to_company = EXCLUDED.refund_due_to_company,
			topup_due_to_employee = EXCLUDED.topup_due_to_employee,
			status = EXCLUDED.status,
			finance_notes = EXCLUDED.finance_notes,
			override_reason = EXCLUDED.override_reason`,
		m.RetirementID, m.AdvanceID, m.SubmittedBy, m.SubmittedAt, m.TotalSpent,
		m.RefundDueToCompany, m.TopupDueToEmployee, m.Status, m.FinanceNotes, m.OverrideReason,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save retirement for advance "+summary.AdvanceID, err)
	}
	return nil
}

// AppendPayment inserts a payment. Payments are never updated.
func (r *PgxAdvanceRepository) AppendPayment(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)
	_, err := r.db.Exec(ctx, `
		INSERT INTO payments (payment_id, advance_id, direction, method, amount, ref, payment_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.PaymentID, m.AdvanceID, m.Direction, m.Method, m.Amount, m.Ref, m.PaymentDate, m.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("payment " + payment.PaymentID)
		}
		return apperrors.NewAppError(500, "failed to append payment", err)
	}
	return nil
}

// ListPayments lists payments in the order they were recorded.
func (r *PgxAdvanceRepository) ListPayments(ctx context.Context, advanceID string) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT payment_id, advance_id, direction, method, amount, ref, payment_date, created_by
		FROM payments
		WHERE advance_id = $1
		ORDER BY seq`, advanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for advance %s: %w", advanceID, err)
	}
	defer rows.Close()

	out := []domain.Payment{}
	for rows.Next() {
		var m models.Payment
		if err := rows.Scan(&m.PaymentID, &m.AdvanceID, &m.Direction, &m.Method, &m.Amount, &m.Ref, &m.PaymentDate, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		out = append(out, mapping.ToDomainPayment(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return out, nil
}

// AppendAudit inserts an audit entry.
func (r *PgxAdvanceRepository) AppendAudit(ctx context.Context, entry domain.AuditLogEntry) error {
	m := mapping.ToModelAuditLog(entry)
	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_logs (audit_id, actor_id, action, entity_type, entity_id, before_state, after_state, at, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.AuditID, m.ActorID, m.Action, m.EntityType, m.EntityID, m.Before, m.After, m.At, m.Comment,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to append audit entry", err)
	}
	return nil
}

// ListAuditLogs returns entries for one entity, oldest first. An empty entityType matches all.
func (r *PgxAdvanceRepository) ListAuditLogs(ctx context.Context, entityID string, entityType domain.EntityType) ([]domain.AuditLogEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT audit_id, actor_id, action, entity_type, entity_id, before_state, after_state, at, comment
		FROM audit_logs
		WHERE entity_id = $1 AND ($2 = '' OR entity_type = $2)
		ORDER BY seq`, entityID, string(entityType))
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs for %s: %w", entityID, err)
	}
	defer rows.Close()

	out := []domain.AuditLogEntry{}
	for rows.Next() {
		var m models.AuditLog
		if err := rows.Scan(&m.AuditID, &m.ActorID, &m.Action, &m.EntityType, &m.EntityID, &m.Before, &m.After, &m.At, &m.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		out = append(out, mapping.ToDomainAuditLog(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit logs: %w", err)
	}
	return out, nil
}

// GetActivePolicy returns the oldest active policy with its category rules.
func (r *PgxAdvanceRepository) GetActivePolicy(ctx context.Context) (*domain.Policy, error) {
	var m models.Policy
	err := r.db.QueryRow(ctx, `
		SELECT policy_id, name, retirement_deadline_days, receipt_required_over_amount, is_active
		FROM policies
		WHERE is_active
		ORDER BY created_at, policy_id
		LIMIT 1`).Scan(&m.PolicyID, &m.Name, &m.RetirementDeadlineDays, &m.ReceiptRequiredOverAmount, &m.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("policy", "active")
		}
		return nil, fmt.Errorf("failed to find active policy: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT policy_id, position, category, per_diem, receipt_required_over_amount
		FROM policy_categories
		WHERE policy_id = $1
		ORDER BY position`, m.PolicyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query policy categories: %w", err)
	}
	defer rows.Close()

	var cats []models.PolicyCategory
	for rows.Next() {
		var c models.PolicyCategory
		if err := rows.Scan(&c.PolicyID, &c.Position, &c.Category, &c.PerDiem, &c.ReceiptRequiredOverAmount); err != nil {
			return nil, fmt.Errorf("failed to scan policy category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating policy categories: %w", err)
	}

	p := mapping.ToDomainPolicy(m, cats)
	return &p, nil
}

// execBatch runs every statement of batch in one transaction, joining the current one if any.
func (r *PgxAdvanceRepository) execBatch(ctx context.Context, batch *pgx.Batch) error {
	return r.RunInTx(ctx, func(ctx context.Context, repo portsrepo.AdvanceRepositoryFacade) error {
		return repo.(*PgxAdvanceRepository).txExecBatch(ctx, batch)
	})
}

func (r *PgxAdvanceRepository) txExecBatch(ctx context.Context, batch *pgx.Batch) error {
	br := r.db.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdvance(row rowScanner) (models.Advance, error) {
	var m models.Advance
	err := row.Scan(
		&m.AdvanceID, &m.EmployeeID, &m.Purpose, &m.Project, &m.CostCenterID, &m.GLCodeID,
		&m.AmountRequested, &m.Currency, &m.Status, &m.ExpectedStartDate, &m.ExpectedEndDate,
		&m.DisbursedAt, &m.DisbursementRef, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store persists reconciliations and their pending items. Every mutation on a
// single reconciliation runs in one transaction with optimistic versioning:
// a lost update is retried once against fresh state, then surfaced as
// ConcurrencyConflict.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const reconColumns = `
	reconciliation_id, company_id, bank_account_id, period_start, period_end,
	statement_balance, book_balance,
	outstanding_cheques, deposits_in_transit, cheques_in_collection, bank_errors,
	unrecorded_credits, unrecorded_debits, unrecorded_fees, book_errors,
	adjusted_bank_balance, adjusted_book_balance, difference, is_balanced,
	status, version, created_by, created_at, updated_at`

func scanReconciliation(row pgx.Row) (Reconciliation, error) {
	var r Reconciliation
	err := row.Scan(
		&r.ReconciliationID, &r.CompanyID, &r.BankAccountID, &r.PeriodStart, &r.PeriodEnd,
		&r.StatementBalance, &r.BookBalance,
		&r.OutstandingCheques, &r.DepositsInTransit, &r.ChequesInCollection, &r.BankErrors,
		&r.UnrecordedCredits, &r.UnrecordedDebits, &r.UnrecordedFees, &r.BookErrors,
		&r.AdjustedBankBalance, &r.AdjustedBookBalance, &r.Difference, &r.IsBalanced,
		&r.Status, &r.Version, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// Create inserts a new draft reconciliation. The (company, account, period)
// triple is unique; a duplicate is reported as a validation failure.
func (s *Store) Create(ctx context.Context, r *Reconciliation) error {
	if r.CompanyID == "" || r.BankAccountID == "" {
		return &ValidationError{Field: "company_id/bank_account_id", Reason: "company and bank account are required"}
	}
	if r.PeriodStart.IsZero() || r.PeriodEnd.IsZero() || r.PeriodEnd.Before(r.PeriodStart) {
		return &ValidationError{Field: "period", Reason: "period start must precede period end"}
	}

	r.ReconciliationID = uuid.New().String()
	r.Status = StatusDraft
	r.Version = 1
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	Recalculate(r)

	const q = `
		INSERT INTO recon.reconciliations (` + reconColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
		ON CONFLICT (company_id, bank_account_id, period_start, period_end) DO NOTHING`
	tag, err := s.pool.Exec(ctx, q,
		r.ReconciliationID, r.CompanyID, r.BankAccountID, r.PeriodStart, r.PeriodEnd,
		r.StatementBalance, r.BookBalance,
		r.OutstandingCheques, r.DepositsInTransit, r.ChequesInCollection, r.BankErrors,
		r.UnrecordedCredits, r.UnrecordedDebits, r.UnrecordedFees, r.BookErrors,
		r.AdjustedBankBalance, r.AdjustedBookBalance, r.Difference, r.IsBalanced,
		r.Status, r.Version, r.CreatedBy, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reconciliation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &ValidationError{Field: "period", Reason: "a reconciliation already exists for this account and period"}
	}
	return nil
}

// Get loads one reconciliation and verifies its header against the current
// item detail. Drift is surfaced as ConsistencyError, never repaired here.
func (s *Store) Get(ctx context.Context, id string) (Reconciliation, error) {
	const q = `SELECT` + reconColumns + ` FROM recon.reconciliations WHERE reconciliation_id = $1`
	r, err := scanReconciliation(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Reconciliation{}, &ValidationError{EntityID: id, Field: "reconciliation_id", Reason: "not found"}
	}
	if err != nil {
		return Reconciliation{}, fmt.Errorf("load reconciliation %s: %w", id, err)
	}
	items, err := s.Items(ctx, id)
	if err != nil {
		return Reconciliation{}, err
	}
	if err := VerifyConsistency(r, items); err != nil {
		return Reconciliation{}, err
	}
	return r, nil
}

// ListByCompany returns one page of a company's reconciliations, newest
// period first.
func (s *Store) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]Reconciliation, error) {
	const q = `SELECT` + reconColumns + ` FROM recon.reconciliations WHERE company_id = $1 ORDER BY period_start DESC, bank_account_id LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, q, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reconciliations: %w", err)
	}
	defer rows.Close()
	out := []Reconciliation{}
	for rows.Next() {
		r, err := scanReconciliation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindForPeriod returns the reconciliation covering a date for an account, if any.
func (s *Store) FindForPeriod(ctx context.Context, companyID, accountID string, date time.Time) (Reconciliation, bool, error) {
	return s.findForPeriod(ctx, s.pool, companyID, accountID, date)
}

// FindForPeriodTx is FindForPeriod reading through the caller's transaction.
func (s *Store) FindForPeriodTx(ctx context.Context, tx pgx.Tx, companyID, accountID string, date time.Time) (Reconciliation, bool, error) {
	return s.findForPeriod(ctx, tx, companyID, accountID, date)
}

func (s *Store) findForPeriod(ctx context.Context, q querier, companyID, accountID string, date time.Time) (Reconciliation, bool, error) {
	const query = `SELECT` + reconColumns + ` FROM recon.reconciliations
		WHERE company_id = $1 AND bank_account_id = $2 AND period_start <= $3 AND period_end >= $3
		LIMIT 1`
	r, err := scanReconciliation(q.QueryRow(ctx, query, companyID, accountID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return Reconciliation{}, false, nil
	}
	if err != nil {
		return Reconciliation{}, false, err
	}
	return r, true, nil
}

// UpdateBalances replaces the statement/book balances of a draft and rederives
// the header from the current items.
func (s *Store) UpdateBalances(ctx context.Context, id string, statement, book decimal.Decimal, actor string) (Reconciliation, error) {
	return s.mutate(ctx, id, func(r *Reconciliation, items []PendingItem) error {
		if r.Status != StatusDraft {
			return &InvalidStateError{EntityID: id, Current: string(r.Status), Attempted: "update balances"}
		}
		r.StatementBalance = statement
		r.BookBalance = book
		ApplyItems(r, items)
		return nil
	})
}

// Delete removes a reconciliation together with its pending items.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM recon.pending_items WHERE reconciliation_id = $1`, id); err != nil {
		return fmt.Errorf("delete pending items: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM recon.reconciliations WHERE reconciliation_id = $1 AND status NOT IN ('APPROVED','ARCHIVED')`, id)
	if err != nil {
		return fmt.Errorf("delete reconciliation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &InvalidStateError{EntityID: id, Current: "APPROVED or ARCHIVED or missing", Attempted: "delete"}
	}
	return tx.Commit(ctx)
}

// Items returns the pending items of a reconciliation, oldest first.
func (s *Store) Items(ctx context.Context, reconciliationID string) ([]PendingItem, error) {
	return s.itemsTx(ctx, s.pool, reconciliationID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) itemsTx(ctx context.Context, q querier, reconciliationID string) ([]PendingItem, error) {
	const query = `
		SELECT item_id, reconciliation_id, item_type, amount, transaction_date,
		       COALESCE(bank_transaction_id, ''), COALESCE(ledger_entry_id, ''),
		       resolved, COALESCE(description, ''), created_at
		FROM recon.pending_items
		WHERE reconciliation_id = $1
		ORDER BY created_at, item_id`
	rows, err := q.Query(ctx, query, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("load pending items: %w", err)
	}
	defer rows.Close()
	items := []PendingItem{}
	for rows.Next() {
		var it PendingItem
		if err := rows.Scan(&it.ItemID, &it.ReconciliationID, &it.ItemType, &it.Amount, &it.TransactionDate,
			&it.BankTransactionID, &it.LedgerEntryID, &it.Resolved, &it.Description, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddItem inserts a pending item and rederives the owning reconciliation's
// totals from the full item set.
func (s *Store) AddItem(ctx context.Context, item PendingItem) (Reconciliation, error) {
	item, err := stampItem(item)
	if err != nil {
		return Reconciliation{}, err
	}
	return s.mutate(ctx, item.ReconciliationID, addItemGuard, insertItemStep(item))
}

// AddItemTx is AddItem running inside the caller's transaction, for writers
// that need the item to land atomically with their own statements. There is no
// retry at this level: a version conflict surfaces to the caller, whose
// rollback undoes the whole unit.
func (s *Store) AddItemTx(ctx context.Context, tx pgx.Tx, item PendingItem) (Reconciliation, error) {
	item, err := stampItem(item)
	if err != nil {
		return Reconciliation{}, err
	}
	return s.applyInTx(ctx, tx, item.ReconciliationID, addItemGuard,
		[]func(context.Context, pgx.Tx) error{insertItemStep(item)})
}

func stampItem(item PendingItem) (PendingItem, error) {
	if err := ValidateItem(item); err != nil {
		return PendingItem{}, err
	}
	item.ItemID = uuid.New().String()
	item.CreatedAt = time.Now()
	return item, nil
}

func addItemGuard(r *Reconciliation, items []PendingItem) error {
	if r.Status == StatusApproved || r.Status == StatusArchived {
		return &InvalidStateError{EntityID: r.ReconciliationID, Current: string(r.Status), Attempted: "add pending item"}
	}
	ApplyItems(r, items)
	return nil
}

// insertItemStep runs before the item set is reloaded, so the totals computed
// by addItemGuard already include the new item.
func insertItemStep(item PendingItem) func(context.Context, pgx.Tx) error {
	return func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO recon.pending_items
				(item_id, reconciliation_id, item_type, amount, transaction_date, bank_transaction_id, ledger_entry_id, resolved, description, created_at)
			VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,''),$8,NULLIF($9,''),$10)`,
			item.ItemID, item.ReconciliationID, item.ItemType, item.Amount, item.TransactionDate,
			item.BankTransactionID, item.LedgerEntryID, item.Resolved, item.Description, item.CreatedAt)
		return err
	}
}

// RemoveItem deletes a pending item and rederives the totals.
func (s *Store) RemoveItem(ctx context.Context, reconciliationID, itemID string) (Reconciliation, error) {
	return s.mutate(ctx, reconciliationID, func(r *Reconciliation, items []PendingItem) error {
		if r.Status == StatusApproved || r.Status == StatusArchived {
			return &InvalidStateError{EntityID: r.ReconciliationID, Current: string(r.Status), Attempted: "remove pending item"}
		}
		ApplyItems(r, items)
		return nil
	}, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM recon.pending_items WHERE item_id = $1 AND reconciliation_id = $2`, itemID, reconciliationID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return &ValidationError{EntityID: itemID, Field: "item_id", Reason: "pending item not found"}
		}
		return nil
	})
}

// Transition runs a workflow transition and records it in the audit trail.
func (s *Store) Transition(ctx context.Context, id, actor, comment string, apply func(*Reconciliation) error) (Reconciliation, error) {
	var from Status
	r, err := s.mutate(ctx, id, func(r *Reconciliation, _ []PendingItem) error {
		from = r.Status
		return apply(r)
	})
	if err != nil {
		return r, err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO recon.reconciliation_audit (reconciliation_id, from_status, to_status, actor, comment, occurred_at)
		VALUES ($1,$2,$3,$4,NULLIF($5,''),$6)`,
		id, from, r.Status, actor, comment, time.Now())
	if err != nil {
		return r, fmt.Errorf("record audit entry: %w", err)
	}
	return r, nil
}

// AuditTrail returns the logged transitions of a reconciliation.
func (s *Store) AuditTrail(ctx context.Context, id string) ([]AuditEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT reconciliation_id, from_status, to_status, actor, COALESCE(comment, ''), occurred_at
		FROM recon.reconciliation_audit WHERE reconciliation_id = $1 ORDER BY occurred_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ReconciliationID, &e.FromStatus, &e.ToStatus, &e.Actor, &e.Comment, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// mutate loads the reconciliation and its items, applies fn, optionally runs
// extra statements, and writes the header back guarded by the version column.
// On a version conflict the whole sequence is retried once from fresh state.
func (s *Store) mutate(ctx context.Context, id string, fn func(*Reconciliation, []PendingItem) error, extra ...func(context.Context, pgx.Tx) error) (Reconciliation, error) {
	var lastVersion int64
	for attempt := 0; attempt < 2; attempt++ {
		r, err := s.tryMutate(ctx, id, fn, extra)
		if err == nil {
			return r, nil
		}
		var conflict *ConcurrencyConflict
		if !errors.As(err, &conflict) {
			return Reconciliation{}, err
		}
		lastVersion = conflict.Version
	}
	return Reconciliation{}, &ConcurrencyConflict{EntityID: id, Version: lastVersion}
}

func (s *Store) tryMutate(ctx context.Context, id string, fn func(*Reconciliation, []PendingItem) error, extra []func(context.Context, pgx.Tx) error) (Reconciliation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Reconciliation{}, err
	}
	defer tx.Rollback(ctx)

	r, err := s.applyInTx(ctx, tx, id, fn, extra)
	if err != nil {
		return Reconciliation{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Reconciliation{}, err
	}
	return r, nil
}

// applyInTx is one load-mutate-write cycle against the caller's transaction,
// guarded by the version column. The caller owns commit and rollback.
func (s *Store) applyInTx(ctx context.Context, tx pgx.Tx, id string, fn func(*Reconciliation, []PendingItem) error, extra []func(context.Context, pgx.Tx) error) (Reconciliation, error) {
	const q = `SELECT` + reconColumns + ` FROM recon.reconciliations WHERE reconciliation_id = $1`
	r, err := scanReconciliation(tx.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Reconciliation{}, &ValidationError{EntityID: id, Field: "reconciliation_id", Reason: "not found"}
	}
	if err != nil {
		return Reconciliation{}, fmt.Errorf("load reconciliation %s: %w", id, err)
	}

	for _, step := range extra {
		if err := step(ctx, tx); err != nil {
			return Reconciliation{}, fmt.Errorf("mutation step: %w", err)
		}
	}

	items, err := s.itemsTx(ctx, tx, id)
	if err != nil {
		return Reconciliation{}, err
	}
	if err := fn(&r, items); err != nil {
		return Reconciliation{}, err
	}

	expectedVersion := r.Version
	r.Version++
	r.UpdatedAt = time.Now()

	tag, err := tx.Exec(ctx, `
		UPDATE recon.reconciliations SET
			statement_balance=$2, book_balance=$3,
			outstanding_cheques=$4, deposits_in_transit=$5, cheques_in_collection=$6, bank_errors=$7,
			unrecorded_credits=$8, unrecorded_debits=$9, unrecorded_fees=$10, book_errors=$11,
			adjusted_bank_balance=$12, adjusted_book_balance=$13, difference=$14, is_balanced=$15,
			status=$16, version=$17, updated_at=$18
		WHERE reconciliation_id=$1 AND version=$19`,
		r.ReconciliationID,
		r.StatementBalance, r.BookBalance,
		r.OutstandingCheques, r.DepositsInTransit, r.ChequesInCollection, r.BankErrors,
		r.UnrecordedCredits, r.UnrecordedDebits, r.UnrecordedFees, r.BookErrors,
		r.AdjustedBankBalance, r.AdjustedBookBalance, r.Difference, r.IsBalanced,
		r.Status, r.Version, r.UpdatedAt, expectedVersion)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("update reconciliation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return Reconciliation{}, &ConcurrencyConflict{EntityID: id, Version: expectedVersion}
	}
	return r, nil
}

package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/recon/reconciliation"
)

// Store is the persistence boundary of the matching engine and the suggestion
// lifecycle. The engine only reads; ApplySuggestion and RejectSuggestion are
// the only writers to the records a suggestion references.
//
//go:generate mockgen -destination=mocks/mock_store.go -source=store.go -package=mocks Store
type Store interface {
	UnreconciledTransactions(ctx context.Context, companyID, accountID string, from, to time.Time) ([]BankTransaction, error)
	UnmatchedEntries(ctx context.Context, companyID, accountID string, from, to time.Time) ([]LedgerEntry, error)
	PendingSuggestions(ctx context.Context, companyID, accountID string) ([]Suggestion, error)
	InsertSuggestions(ctx context.Context, suggestions []Suggestion) error
	GetSuggestion(ctx context.Context, id string) (Suggestion, error)
	ListSuggestions(ctx context.Context, companyID, accountID string, status SuggestionStatus) ([]Suggestion, error)
	ApplySuggestion(ctx context.Context, s Suggestion, actor string, residual decimal.Decimal) error
	RejectSuggestion(ctx context.Context, id, actor, reason string) error
	SuggestionTrail(ctx context.Context, companyID string, from, to time.Time) ([]Suggestion, error)
	TransactionAmounts(ctx context.Context, txnIDs, entryIDs []string) (decimal.Decimal, decimal.Decimal, time.Time, error)
}

// PgStore is the pgx-backed Store.
type PgStore struct {
	pool   *pgxpool.Pool
	recons *reconciliation.Store
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, recons: reconciliation.NewStore(pool)}
}

func (s *PgStore) UnreconciledTransactions(ctx context.Context, companyID, accountID string, from, to time.Time) ([]BankTransaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT transaction_id, company_id, bank_account_id, transaction_date, amount,
		       COALESCE(description, ''), reconciled, COALESCE(ledger_entry_id, '')
		FROM recon.bank_transactions
		WHERE company_id = $1 AND bank_account_id = $2
		  AND transaction_date BETWEEN $3 AND $4
		  AND reconciled = false
		ORDER BY transaction_date, transaction_id`,
		companyID, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load unreconciled transactions: %w", err)
	}
	defer rows.Close()
	out := []BankTransaction{}
	for rows.Next() {
		var t BankTransaction
		if err := rows.Scan(&t.TransactionID, &t.CompanyID, &t.BankAccountID, &t.Date, &t.Amount,
			&t.Description, &t.Reconciled, &t.LedgerEntryID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PgStore) UnmatchedEntries(ctx context.Context, companyID, accountID string, from, to time.Time) ([]LedgerEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.entry_id, e.company_id, e.account_code, e.entry_date,
		       COALESCE(e.debit, 0), COALESCE(e.credit, 0),
		       COALESCE(e.description, ''), e.reconciled, COALESCE(e.bank_transaction_id, '')
		FROM recon.gl_entries e
		JOIN recon.bank_accounts a ON a.gl_account_code = e.account_code AND a.company_id = e.company_id
		WHERE e.company_id = $1 AND a.bank_account_id = $2
		  AND e.entry_date BETWEEN $3 AND $4
		  AND e.reconciled = false
		ORDER BY e.entry_date, e.entry_id`,
		companyID, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load unmatched entries: %w", err)
	}
	defer rows.Close()
	out := []LedgerEntry{}
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.EntryID, &e.CompanyID, &e.AccountCode, &e.Date, &e.Debit, &e.Credit,
			&e.Description, &e.Reconciled, &e.BankTransactionID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const suggestionColumns = `
	s.suggestion_id, s.company_id, s.bank_account_id, s.match_type, s.confidence, s.band,
	COALESCE(s.rationale, ''), s.requires_manual_review, s.status,
	COALESCE(s.rejection_reason, ''), COALESCE(s.decided_by, ''), s.decided_at, s.created_at`

func (s *PgStore) scanSuggestions(rows pgx.Rows) ([]Suggestion, error) {
	defer rows.Close()
	out := []Suggestion{}
	for rows.Next() {
		var sg Suggestion
		if err := rows.Scan(&sg.SuggestionID, &sg.CompanyID, &sg.BankAccountID, &sg.MatchType,
			&sg.Confidence, &sg.Band, &sg.Rationale, &sg.RequiresManualReview, &sg.Status,
			&sg.RejectionReason, &sg.DecidedBy, &sg.DecidedAt, &sg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// loadLinks fills in the ordered transaction/entry reference sets.
func (s *PgStore) loadLinks(ctx context.Context, suggestions []Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	index := make(map[string]*Suggestion, len(suggestions))
	ids := make([]string, 0, len(suggestions))
	for i := range suggestions {
		index[suggestions[i].SuggestionID] = &suggestions[i]
		ids = append(ids, suggestions[i].SuggestionID)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT suggestion_id, ref_kind, ref_id
		FROM recon.suggestion_links
		WHERE suggestion_id = ANY($1)
		ORDER BY suggestion_id, ordinal`, ids)
	if err != nil {
		return fmt.Errorf("load suggestion links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sid, kind, ref string
		if err := rows.Scan(&sid, &kind, &ref); err != nil {
			return err
		}
		sg, ok := index[sid]
		if !ok {
			continue
		}
		if kind == "TXN" {
			sg.TransactionIDs = append(sg.TransactionIDs, ref)
		} else {
			sg.EntryIDs = append(sg.EntryIDs, ref)
		}
	}
	return rows.Err()
}

func (s *PgStore) PendingSuggestions(ctx context.Context, companyID, accountID string) ([]Suggestion, error) {
	return s.ListSuggestions(ctx, companyID, accountID, SuggestionPending)
}

func (s *PgStore) ListSuggestions(ctx context.Context, companyID, accountID string, status SuggestionStatus) ([]Suggestion, error) {
	q := `SELECT` + suggestionColumns + ` FROM recon.suggestions s
		WHERE s.company_id = $1 AND ($2 = '' OR s.bank_account_id = $2) AND ($3 = '' OR s.status = $3)
		ORDER BY s.confidence DESC, s.created_at`
	rows, err := s.pool.Query(ctx, q, companyID, accountID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	out, err := s.scanSuggestions(rows)
	if err != nil {
		return nil, err
	}
	if err := s.loadLinks(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PgStore) GetSuggestion(ctx context.Context, id string) (Suggestion, error) {
	q := `SELECT` + suggestionColumns + ` FROM recon.suggestions s WHERE s.suggestion_id = $1`
	rows, err := s.pool.Query(ctx, q, id)
	if err != nil {
		return Suggestion{}, err
	}
	out, err := s.scanSuggestions(rows)
	if err != nil {
		return Suggestion{}, err
	}
	if len(out) == 0 {
		return Suggestion{}, &reconciliation.ValidationError{EntityID: id, Field: "suggestion_id", Reason: "not found"}
	}
	if err := s.loadLinks(ctx, out); err != nil {
		return Suggestion{}, err
	}
	return out[0], nil
}

// InsertSuggestions persists a batch of freshly generated suggestions with
// their ordered reference sets, one transaction per batch.
func (s *PgStore) InsertSuggestions(ctx context.Context, suggestions []Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, sg := range suggestions {
		_, err := tx.Exec(ctx, `
			INSERT INTO recon.suggestions
				(suggestion_id, company_id, bank_account_id, match_type, confidence, band,
				 rationale, requires_manual_review, status, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			sg.SuggestionID, sg.CompanyID, sg.BankAccountID, sg.MatchType, sg.Confidence, sg.Band,
			sg.Rationale, sg.RequiresManualReview, sg.Status, sg.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert suggestion %s: %w", sg.SuggestionID, err)
		}
		for i, txnID := range sg.TransactionIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO recon.suggestion_links (suggestion_id, ref_kind, ref_id, ordinal)
				VALUES ($1,'TXN',$2,$3)`, sg.SuggestionID, txnID, i); err != nil {
				return fmt.Errorf("insert suggestion link: %w", err)
			}
		}
		for i, entryID := range sg.EntryIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO recon.suggestion_links (suggestion_id, ref_kind, ref_id, ordinal)
				VALUES ($1,'ENTRY',$2,$3)`, sg.SuggestionID, entryID, i); err != nil {
				return fmt.Errorf("insert suggestion link: %w", err)
			}
		}
	}
	return tx.Commit(ctx)
}

// ApplySuggestion flips the suggestion, marks every referenced record
// reconciled and, for a non-zero residual, books an unrecorded fee on the
// draft reconciliation covering the match date, all in one transaction.
// Any failure rolls the whole decision back; the suggestion can never end up
// APPLIED with the balances left behind.
func (s *PgStore) ApplySuggestion(ctx context.Context, sg Suggestion, actor string, residual decimal.Decimal) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	tag, err := tx.Exec(ctx, `
		UPDATE recon.suggestions
		SET status = $2, decided_by = $3, decided_at = $4
		WHERE suggestion_id = $1 AND status = 'PENDING'`,
		sg.SuggestionID, SuggestionApplied, actor, now)
	if err != nil {
		return fmt.Errorf("apply suggestion %s: %w", sg.SuggestionID, err)
	}
	if tag.RowsAffected() == 0 {
		current, err := s.currentStatus(ctx, tx, sg.SuggestionID)
		if err != nil {
			return err
		}
		return &reconciliation.InvalidStateError{EntityID: sg.SuggestionID, Current: current, Attempted: "apply"}
	}

	primaryEntry := ""
	if len(sg.EntryIDs) > 0 {
		primaryEntry = sg.EntryIDs[0]
	}
	primaryTxn := ""
	if len(sg.TransactionIDs) > 0 {
		primaryTxn = sg.TransactionIDs[0]
	}

	if _, err := tx.Exec(ctx, `
		UPDATE recon.bank_transactions
		SET reconciled = true, ledger_entry_id = COALESCE(ledger_entry_id, NULLIF($2,''))
		WHERE transaction_id = ANY($1)`, sg.TransactionIDs, primaryEntry); err != nil {
		return fmt.Errorf("mark transactions reconciled: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE recon.gl_entries
		SET reconciled = true, bank_transaction_id = COALESCE(bank_transaction_id, NULLIF($2,''))
		WHERE entry_id = ANY($1)`, sg.EntryIDs, primaryTxn); err != nil {
		return fmt.Errorf("mark entries reconciled: %w", err)
	}

	// The residual of a tolerated gap is an unrecorded fee on the draft
	// reconciliation covering the period, when one exists.
	if !residual.IsZero() {
		if err := s.recordResidual(ctx, tx, sg, residual); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PgStore) currentStatus(ctx context.Context, tx pgx.Tx, id string) (string, error) {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM recon.suggestions WHERE suggestion_id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", &reconciliation.ValidationError{EntityID: id, Field: "suggestion_id", Reason: "not found"}
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

// recordResidual books the tolerated gap through the reconciliation store
// inside the caller's transaction, so the fee and the suggestion flip commit
// or roll back together.
func (s *PgStore) recordResidual(ctx context.Context, tx pgx.Tx, sg Suggestion, residual decimal.Decimal) error {
	var date time.Time
	err := tx.QueryRow(ctx, `
		SELECT MIN(transaction_date) FROM recon.bank_transactions WHERE transaction_id = ANY($1)`,
		sg.TransactionIDs).Scan(&date)
	if err != nil {
		return fmt.Errorf("locate match date: %w", err)
	}
	recon, found, err := s.recons.FindForPeriodTx(ctx, tx, sg.CompanyID, sg.BankAccountID, date)
	if err != nil {
		return err
	}
	item, ok := residualItem(sg, recon, found, date, residual)
	if !ok {
		return nil
	}
	_, err = s.recons.AddItemTx(ctx, tx, item)
	return err
}

// residualItem decides whether a tolerated gap can be booked: only onto the
// draft reconciliation covering the match date, as an unrecorded fee.
func residualItem(sg Suggestion, recon reconciliation.Reconciliation, found bool, date time.Time, residual decimal.Decimal) (reconciliation.PendingItem, bool) {
	if !found || recon.Status != reconciliation.StatusDraft || residual.IsZero() {
		return reconciliation.PendingItem{}, false
	}
	return reconciliation.PendingItem{
		ReconciliationID:  recon.ReconciliationID,
		ItemType:          reconciliation.ItemUnrecordedFee,
		Amount:            residual.Abs(),
		TransactionDate:   date,
		BankTransactionID: firstOrEmpty(sg.TransactionIDs),
		LedgerEntryID:     firstOrEmpty(sg.EntryIDs),
		Description:       "Écart toléré sur lettrage " + sg.SuggestionID,
	}, true
}

func firstOrEmpty(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// RejectSuggestion records the decision and reason; the referenced records are
// left untouched.
func (s *PgStore) RejectSuggestion(ctx context.Context, id, actor, reason string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE recon.suggestions
		SET status = $2, rejection_reason = $3, decided_by = $4, decided_at = $5
		WHERE suggestion_id = $1 AND status = 'PENDING'`,
		id, SuggestionRejected, reason, actor, time.Now())
	if err != nil {
		return fmt.Errorf("reject suggestion %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		current, err := s.currentStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		return &reconciliation.InvalidStateError{EntityID: id, Current: current, Attempted: "reject"}
	}
	return tx.Commit(ctx)
}

func (s *PgStore) SuggestionTrail(ctx context.Context, companyID string, from, to time.Time) ([]Suggestion, error) {
	q := `SELECT` + suggestionColumns + ` FROM recon.suggestions s
		WHERE s.company_id = $1 AND s.created_at >= $2 AND s.created_at < $3
		ORDER BY s.created_at`
	rows, err := s.pool.Query(ctx, q, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load suggestion trail: %w", err)
	}
	out, err := s.scanSuggestions(rows)
	if err != nil {
		return nil, err
	}
	if err := s.loadLinks(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// TransactionAmounts sums both sides of a match group and returns the earliest
// transaction date, for residual computation before an apply.
func (s *PgStore) TransactionAmounts(ctx context.Context, txnIDs, entryIDs []string) (decimal.Decimal, decimal.Decimal, time.Time, error) {
	var txnTotal decimal.Decimal
	var date time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0), COALESCE(MIN(transaction_date), 'epoch'::timestamptz)
		FROM recon.bank_transactions WHERE transaction_id = ANY($1)`, txnIDs).Scan(&txnTotal, &date)
	if err != nil {
		return decimal.Zero, decimal.Zero, time.Time{}, fmt.Errorf("sum transactions: %w", err)
	}
	var entryTotal decimal.Decimal
	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(COALESCE(debit,0) - COALESCE(credit,0)), 0)
		FROM recon.gl_entries WHERE entry_id = ANY($1)`, entryIDs).Scan(&entryTotal)
	if err != nil {
		return decimal.Zero, decimal.Zero, time.Time{}, fmt.Errorf("sum entries: %w", err)
	}
	return txnTotal, entryTotal, date, nil
}

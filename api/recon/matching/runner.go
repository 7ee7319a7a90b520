package matching

import (
	"context"
	"fmt"
	"time"
)

// Runner loads the candidate pools for an account and period, runs the engine
// over them and persists whatever it emits. It is shared by the HTTP trigger
// and the scheduled sweep.
type Runner struct {
	store  Store
	engine *Engine
}

func NewRunner(store Store, engine *Engine) *Runner {
	return &Runner{store: store, engine: engine}
}

func (r *Runner) Run(ctx context.Context, companyID, accountID string, from, to time.Time) (Result, error) {
	txns, err := r.store.UnreconciledTransactions(ctx, companyID, accountID, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("matching run for %s/%s: %w", companyID, accountID, err)
	}
	entries, err := r.store.UnmatchedEntries(ctx, companyID, accountID, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("matching run for %s/%s: %w", companyID, accountID, err)
	}
	pending, err := r.store.PendingSuggestions(ctx, companyID, accountID)
	if err != nil {
		return Result{}, fmt.Errorf("matching run for %s/%s: %w", companyID, accountID, err)
	}

	res, err := r.engine.Run(ctx, Snapshot{
		CompanyID:     companyID,
		BankAccountID: accountID,
		Transactions:  txns,
		Entries:       entries,
		Pending:       pending,
	})
	if err != nil {
		return Result{}, err
	}
	if err := r.store.InsertSuggestions(ctx, res.Suggestions); err != nil {
		return Result{}, err
	}
	return res, nil
}

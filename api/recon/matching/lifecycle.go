package matching

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/recon/reconciliation"
)

// Lifecycle carries a suggestion from PENDING to its terminal decision.
// Decisions are idempotence-hostile on purpose: a second apply or reject on
// the same suggestion is an InvalidStateError, never a silent no-op.
type Lifecycle struct {
	store Store
}

func NewLifecycle(store Store) *Lifecycle {
	return &Lifecycle{store: store}
}

// Apply accepts a pending suggestion on behalf of actor. The referenced
// transactions and entries are marked reconciled and cross-linked, and any
// amount gap the tolerance absorbed is booked as an unrecorded fee.
func (l *Lifecycle) Apply(ctx context.Context, suggestionID, actor string) (Suggestion, error) {
	if strings.TrimSpace(actor) == "" {
		return Suggestion{}, &reconciliation.ValidationError{EntityID: suggestionID, Field: "actor", Reason: "is required"}
	}
	sg, err := l.store.GetSuggestion(ctx, suggestionID)
	if err != nil {
		return Suggestion{}, err
	}
	if sg.Status != SuggestionPending {
		return Suggestion{}, &reconciliation.InvalidStateError{
			EntityID: sg.SuggestionID, Current: string(sg.Status), Attempted: "apply",
		}
	}

	residual, err := l.residual(ctx, sg)
	if err != nil {
		return Suggestion{}, err
	}
	if err := l.store.ApplySuggestion(ctx, sg, actor, residual); err != nil {
		return Suggestion{}, err
	}
	return l.store.GetSuggestion(ctx, suggestionID)
}

// Reject declines a pending suggestion. A reason is mandatory; rejection
// reasons feed the accuracy reporting.
func (l *Lifecycle) Reject(ctx context.Context, suggestionID, actor, reason string) (Suggestion, error) {
	if strings.TrimSpace(actor) == "" {
		return Suggestion{}, &reconciliation.ValidationError{EntityID: suggestionID, Field: "actor", Reason: "is required"}
	}
	if strings.TrimSpace(reason) == "" {
		return Suggestion{}, &reconciliation.ValidationError{EntityID: suggestionID, Field: "rejection_reason", Reason: "is required"}
	}
	if err := l.store.RejectSuggestion(ctx, suggestionID, actor, reason); err != nil {
		return Suggestion{}, err
	}
	return l.store.GetSuggestion(ctx, suggestionID)
}

// residual is the signed gap between the bank side and the book side of the
// match. Zero for exact matches; within tolerance by construction otherwise.
func (l *Lifecycle) residual(ctx context.Context, sg Suggestion) (decimal.Decimal, error) {
	txnTotal, entryTotal, _, err := l.store.TransactionAmounts(ctx, sg.TransactionIDs, sg.EntryIDs)
	if err != nil {
		return decimal.Zero, err
	}
	return txnTotal.Sub(entryTotal), nil
}

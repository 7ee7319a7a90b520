package reconciliation

import "github.com/shopspring/decimal"

// Recalculate recomputes the derived balances of a reconciliation from its
// statement/book balances and the per-class adjustment totals. It is pure and
// idempotent: calling it twice in a row yields the same header.
//
// Bank-side totals explain the part of the statement balance the books have not
// caught up with yet, so they are taken off the statement side; book-side
// totals explain movements the bank already settled, so they are added onto the
// book side. A reconciliation whose items fully explain the gap ends up with a
// zero difference.
func Recalculate(r *Reconciliation) {
	bankSide := r.OutstandingCheques.
		Add(r.DepositsInTransit).
		Add(r.ChequesInCollection).
		Add(r.BankErrors)
	bookSide := r.UnrecordedCredits.
		Add(r.UnrecordedDebits).
		Add(r.UnrecordedFees).
		Add(r.BookErrors)

	r.AdjustedBankBalance = r.StatementBalance.Sub(bankSide)
	r.AdjustedBookBalance = r.BookBalance.Add(bookSide)
	r.Difference = r.AdjustedBankBalance.Sub(r.AdjustedBookBalance)
	r.IsBalanced = r.Difference.IsZero()
}

// ApplyItems rebuilds every class total as a reduction over the given items and
// then recalculates the header. Totals are never maintained incrementally, so
// any sequence of add/remove edits converges to the same state.
func ApplyItems(r *Reconciliation, items []PendingItem) {
	r.OutstandingCheques = classTotal(items, ItemOutstandingCheque)
	r.DepositsInTransit = classTotal(items, ItemDepositInTransit)
	r.ChequesInCollection = classTotal(items, ItemChequeInCollection)
	r.BankErrors = classTotal(items, ItemBankError)
	r.UnrecordedCredits = classTotal(items, ItemUnrecordedCredit)
	r.UnrecordedDebits = classTotal(items, ItemUnrecordedDebit)
	r.UnrecordedFees = classTotal(items, ItemUnrecordedFee)
	r.BookErrors = classTotal(items, ItemBookError)

	Recalculate(r)
}

func classTotal(items []PendingItem, t ItemType) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.ItemType == t && !item.Resolved {
			total = total.Add(item.SignedAmount())
		}
	}
	return total
}

// SubmitForReview moves a balanced draft into review. An unbalanced
// reconciliation can never be submitted.
func SubmitForReview(r *Reconciliation) error {
	if r.Status != StatusDraft {
		return &InvalidStateError{EntityID: r.ReconciliationID, Current: string(r.Status), Attempted: "submit for review"}
	}
	if !r.IsBalanced {
		return &InvalidStateError{
			EntityID:  r.ReconciliationID,
			Current:   string(r.Status),
			Attempted: "submit for review with a non-zero difference of " + r.Difference.String(),
		}
	}
	r.Status = StatusPendingReview
	return nil
}

// MarkReviewed records that a reviewer has walked through the reconciliation.
func MarkReviewed(r *Reconciliation) error {
	if r.Status != StatusPendingReview {
		return &InvalidStateError{EntityID: r.ReconciliationID, Current: string(r.Status), Attempted: "mark reviewed"}
	}
	r.Status = StatusReviewed
	return nil
}

// Approve finalizes the reconciliation. Approval is terminal.
func Approve(r *Reconciliation) error {
	if r.Status != StatusReviewed && r.Status != StatusPendingReview {
		return &InvalidStateError{EntityID: r.ReconciliationID, Current: string(r.Status), Attempted: "approve"}
	}
	r.Status = StatusApproved
	return nil
}

// Reject sends the reconciliation back. Terminal states are immutable.
func Reject(r *Reconciliation) error {
	if r.Status == StatusApproved || r.Status == StatusArchived {
		return &InvalidStateError{EntityID: r.ReconciliationID, Current: string(r.Status), Attempted: "reject"}
	}
	r.Status = StatusRejected
	return nil
}

// Reopen puts a rejected reconciliation back into draft for rework.
func Reopen(r *Reconciliation) error {
	if r.Status != StatusRejected {
		return &InvalidStateError{EntityID: r.ReconciliationID, Current: string(r.Status), Attempted: "reopen"}
	}
	r.Status = StatusDraft
	return nil
}

// Archive retires an approved reconciliation.
func Archive(r *Reconciliation) error {
	if r.Status != StatusApproved {
		return &InvalidStateError{EntityID: r.ReconciliationID, Current: string(r.Status), Attempted: "archive"}
	}
	r.Status = StatusArchived
	return nil
}

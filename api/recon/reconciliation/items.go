package reconciliation

import (
	"github.com/shopspring/decimal"
)

// ValidateItem rejects malformed pending items before any mutation happens.
func ValidateItem(item PendingItem) error {
	if _, ok := SpecFor(item.ItemType); !ok {
		return &ValidationError{EntityID: item.ItemID, Field: "item_type", Reason: "unknown item type " + string(item.ItemType)}
	}
	if item.Amount.IsZero() {
		return &ValidationError{EntityID: item.ItemID, Field: "amount", Reason: "amount must be non-zero"}
	}
	if item.TransactionDate.IsZero() {
		return &ValidationError{EntityID: item.ItemID, Field: "transaction_date", Reason: "transaction date is required"}
	}
	if item.ReconciliationID == "" {
		return &ValidationError{EntityID: item.ItemID, Field: "reconciliation_id", Reason: "owning reconciliation is required"}
	}
	return nil
}

// VerifyConsistency checks the stored header totals of r against a fresh
// reduction over items. A mismatch means the header drifted from the
// item-level detail and must be repaired manually.
func VerifyConsistency(r Reconciliation, items []PendingItem) error {
	checks := []struct {
		field  string
		stored decimal.Decimal
		t      ItemType
	}{
		{"outstanding_cheques", r.OutstandingCheques, ItemOutstandingCheque},
		{"deposits_in_transit", r.DepositsInTransit, ItemDepositInTransit},
		{"cheques_in_collection", r.ChequesInCollection, ItemChequeInCollection},
		{"bank_errors", r.BankErrors, ItemBankError},
		{"unrecorded_credits", r.UnrecordedCredits, ItemUnrecordedCredit},
		{"unrecorded_debits", r.UnrecordedDebits, ItemUnrecordedDebit},
		{"unrecorded_fees", r.UnrecordedFees, ItemUnrecordedFee},
		{"book_errors", r.BookErrors, ItemBookError},
	}
	for _, c := range checks {
		computed := classTotal(items, c.t)
		if !c.stored.Equal(computed) {
			return &ConsistencyError{EntityID: r.ReconciliationID, Field: c.field, Stored: c.stored, Computed: computed}
		}
	}

	expected := r
	Recalculate(&expected)
	if !r.Difference.Equal(expected.Difference) {
		return &ConsistencyError{EntityID: r.ReconciliationID, Field: "difference", Stored: r.Difference, Computed: expected.Difference}
	}
	return nil
}

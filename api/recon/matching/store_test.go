package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/recon/reconciliation"
)

func TestResidualItem_BooksFeeOnCoveringDraft(t *testing.T) {
	sg := Suggestion{
		SuggestionID:   "sug-001",
		TransactionIDs: []string{"t1", "t2"},
		EntryIDs:       []string{"e1"},
	}
	draft := reconciliation.Reconciliation{
		ReconciliationID: "rec-001",
		Status:           reconciliation.StatusDraft,
	}

	item, ok := residualItem(sg, draft, true, day, decimal.NewFromInt(-50))

	require.True(t, ok)
	assert.Equal(t, "rec-001", item.ReconciliationID)
	assert.Equal(t, reconciliation.ItemUnrecordedFee, item.ItemType)
	assert.True(t, decimal.NewFromInt(50).Equal(item.Amount), "the fee is booked unsigned")
	assert.Equal(t, day, item.TransactionDate)
	assert.Equal(t, "t1", item.BankTransactionID)
	assert.Equal(t, "e1", item.LedgerEntryID)
	assert.Contains(t, item.Description, "sug-001")
}

func TestResidualItem_RefusedOutsideCoveringDraft(t *testing.T) {
	sg := Suggestion{SuggestionID: "sug-001", TransactionIDs: []string{"t1"}, EntryIDs: []string{"e1"}}
	draft := reconciliation.Reconciliation{ReconciliationID: "rec-001", Status: reconciliation.StatusDraft}
	approved := draft
	approved.Status = reconciliation.StatusApproved

	tests := []struct {
		name     string
		recon    reconciliation.Reconciliation
		found    bool
		residual decimal.Decimal
	}{
		{"no covering reconciliation", reconciliation.Reconciliation{}, false, decimal.NewFromInt(50)},
		{"covering reconciliation not draft", approved, true, decimal.NewFromInt(50)},
		{"exact match leaves nothing to book", draft, true, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := residualItem(sg, tt.recon, tt.found, day, tt.residual)
			assert.False(t, ok)
		})
	}
}

package reconciliation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkItem(id string, t ItemType, amount int64) PendingItem {
	return PendingItem{
		ItemID:           id,
		ReconciliationID: "rec-001",
		ItemType:         t,
		Amount:           amt(amount),
		TransactionDate:  time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestSignedAmount_PerItemType(t *testing.T) {
	tests := []struct {
		itemType ItemType
		want     int64
	}{
		{ItemOutstandingCheque, 1000},
		{ItemDepositInTransit, 1000},
		{ItemChequeInCollection, -1000},
		{ItemBankError, 1000},
		{ItemUnrecordedCredit, 1000},
		{ItemUnrecordedDebit, -1000},
		{ItemUnrecordedFee, -1000},
		{ItemBookError, 1000},
	}
	for _, tt := range tests {
		t.Run(string(tt.itemType), func(t *testing.T) {
			item := mkItem("item-001", tt.itemType, 1000)
			assert.True(t, amt(tt.want).Equal(item.SignedAmount()))
		})
	}
}

func TestApplyItems_RebuildsEveryClassTotal(t *testing.T) {
	r := draftRecon(500000, 400000)
	items := []PendingItem{
		mkItem("i1", ItemOutstandingCheque, 30000),
		mkItem("i2", ItemOutstandingCheque, 12000),
		mkItem("i3", ItemDepositInTransit, 20000),
		mkItem("i4", ItemChequeInCollection, 10000),
		mkItem("i5", ItemBankError, 5000),
		mkItem("i6", ItemUnrecordedCredit, 60000),
		mkItem("i7", ItemUnrecordedDebit, 2000),
		mkItem("i8", ItemUnrecordedFee, 1500),
		mkItem("i9", ItemBookError, 3000),
	}

	ApplyItems(r, items)

	assert.True(t, amt(42000).Equal(r.OutstandingCheques))
	assert.True(t, amt(20000).Equal(r.DepositsInTransit))
	assert.True(t, amt(-10000).Equal(r.ChequesInCollection))
	assert.True(t, amt(5000).Equal(r.BankErrors))
	assert.True(t, amt(60000).Equal(r.UnrecordedCredits))
	assert.True(t, amt(-2000).Equal(r.UnrecordedDebits))
	assert.True(t, amt(-1500).Equal(r.UnrecordedFees))
	assert.True(t, amt(3000).Equal(r.BookErrors))
}

func TestApplyItems_ResolvedItemsAreExcluded(t *testing.T) {
	r := draftRecon(100000, 100000)
	open := mkItem("i1", ItemDepositInTransit, 25000)
	resolved := mkItem("i2", ItemDepositInTransit, 40000)
	resolved.Resolved = true

	ApplyItems(r, []PendingItem{open, resolved})

	assert.True(t, amt(25000).Equal(r.DepositsInTransit))
}

func TestApplyItems_ConvergesRegardlessOfEditOrder(t *testing.T) {
	a := draftRecon(300000, 300000)
	b := draftRecon(300000, 300000)
	items := []PendingItem{
		mkItem("i1", ItemOutstandingCheque, 7000),
		mkItem("i2", ItemUnrecordedFee, 1200),
	}

	ApplyItems(a, items)
	// Edits in a different order on b: the extra item is applied then dropped.
	ApplyItems(b, append(items, mkItem("i3", ItemBankError, 9000)))
	ApplyItems(b, items)

	assert.Equal(t, *a, *b)
}

func TestValidateItem(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PendingItem)
		wantErr string
	}{
		{"valid item", func(p *PendingItem) {}, ""},
		{"unknown type", func(p *PendingItem) { p.ItemType = "CADEAU" }, "item_type"},
		{"zero amount", func(p *PendingItem) { p.Amount = decimal.Zero }, "amount"},
		{"missing date", func(p *PendingItem) { p.TransactionDate = time.Time{} }, "transaction_date"},
		{"orphan item", func(p *PendingItem) { p.ReconciliationID = "" }, "reconciliation_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := mkItem("item-001", ItemUnrecordedFee, 1500)
			tt.mutate(&item)

			err := ValidateItem(item)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantErr, ve.Field)
		})
	}
}

func TestVerifyConsistency_CleanHeaderPasses(t *testing.T) {
	r := draftRecon(200000, 150000)
	items := []PendingItem{
		mkItem("i1", ItemDepositInTransit, 50000),
		mkItem("i2", ItemUnrecordedFee, 800),
	}
	ApplyItems(r, items)

	assert.NoError(t, VerifyConsistency(*r, items))
}

func TestVerifyConsistency_DetectsClassTotalDrift(t *testing.T) {
	r := draftRecon(200000, 150000)
	items := []PendingItem{mkItem("i1", ItemUnrecordedFee, 800)}
	ApplyItems(r, items)

	r.UnrecordedFees = amt(-900)

	err := VerifyConsistency(*r, items)
	require.Error(t, err)
	var ce *ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "unrecorded_fees", ce.Field)
	assert.True(t, amt(-900).Equal(ce.Stored))
	assert.True(t, amt(-800).Equal(ce.Computed))
}

func TestVerifyConsistency_DetectsDifferenceDrift(t *testing.T) {
	r := draftRecon(200000, 150000)
	items := []PendingItem{mkItem("i1", ItemDepositInTransit, 50000)}
	ApplyItems(r, items)

	r.Difference = amt(123)

	err := VerifyConsistency(*r, items)
	require.Error(t, err)
	var ce *ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "difference", ce.Field)
}

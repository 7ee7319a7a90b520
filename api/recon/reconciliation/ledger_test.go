package reconciliation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func draftRecon(statement, book int64) *Reconciliation {
	return &Reconciliation{
		ReconciliationID: "rec-001",
		CompanyID:        "comp-001",
		BankAccountID:    "acct-001",
		PeriodStart:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:        time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		StatementBalance: amt(statement),
		BookBalance:      amt(book),
		Status:           StatusDraft,
	}
}

func TestApplyItems_DepositInTransitExplainsGap(t *testing.T) {
	r := draftRecon(1000000, 950000)
	items := []PendingItem{
		{
			ItemID:           "item-001",
			ReconciliationID: r.ReconciliationID,
			ItemType:         ItemDepositInTransit,
			Amount:           amt(50000),
			TransactionDate:  time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	ApplyItems(r, items)

	assert.True(t, amt(50000).Equal(r.DepositsInTransit))
	assert.True(t, amt(950000).Equal(r.AdjustedBankBalance))
	assert.True(t, amt(950000).Equal(r.AdjustedBookBalance))
	assert.True(t, r.Difference.IsZero())
	assert.True(t, r.IsBalanced)
}

func TestRecalculate_DifferenceIsBankMinusBook(t *testing.T) {
	r := draftRecon(500000, 400000)
	r.OutstandingCheques = amt(30000)
	r.DepositsInTransit = amt(20000)
	r.ChequesInCollection = amt(-10000)
	r.BankErrors = amt(5000)
	r.UnrecordedCredits = amt(60000)
	r.UnrecordedDebits = amt(-2000)
	r.UnrecordedFees = amt(-1500)
	r.BookErrors = amt(3000)

	Recalculate(r)

	assert.True(t, amt(455000).Equal(r.AdjustedBankBalance))
	assert.True(t, amt(459500).Equal(r.AdjustedBookBalance))
	assert.True(t, r.AdjustedBankBalance.Sub(r.AdjustedBookBalance).Equal(r.Difference))
	assert.True(t, amt(-4500).Equal(r.Difference))
	assert.False(t, r.IsBalanced)
}

func TestRecalculate_Idempotent(t *testing.T) {
	r := draftRecon(750000, 700000)
	r.DepositsInTransit = amt(50000)

	Recalculate(r)
	first := *r
	Recalculate(r)

	assert.Equal(t, first, *r)
}

func TestSubmitForReview_RejectsUnbalancedDraft(t *testing.T) {
	r := draftRecon(1000000, 900000)
	Recalculate(r)
	require.False(t, r.IsBalanced)

	err := SubmitForReview(r)

	require.Error(t, err)
	assert.True(t, IsInvalidState(err), "an unbalanced draft is a state problem, not a malformed request")
	assert.Contains(t, err.Error(), r.Difference.String())
	assert.Equal(t, StatusDraft, r.Status)
}

func TestWorkflow_FullApprovalPath(t *testing.T) {
	r := draftRecon(950000, 950000)
	Recalculate(r)
	require.True(t, r.IsBalanced)

	require.NoError(t, SubmitForReview(r))
	assert.Equal(t, StatusPendingReview, r.Status)

	require.NoError(t, MarkReviewed(r))
	assert.Equal(t, StatusReviewed, r.Status)

	require.NoError(t, Approve(r))
	assert.Equal(t, StatusApproved, r.Status)

	require.NoError(t, Archive(r))
	assert.Equal(t, StatusArchived, r.Status)
}

func TestWorkflow_RejectAndReopen(t *testing.T) {
	r := draftRecon(950000, 950000)
	Recalculate(r)
	require.NoError(t, SubmitForReview(r))

	require.NoError(t, Reject(r))
	assert.Equal(t, StatusRejected, r.Status)

	require.NoError(t, Reopen(r))
	assert.Equal(t, StatusDraft, r.Status)
}

func TestWorkflow_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name       string
		from       Status
		transition func(*Reconciliation) error
	}{
		{"submit from pending review", StatusPendingReview, SubmitForReview},
		{"submit from approved", StatusApproved, SubmitForReview},
		{"review from draft", StatusDraft, MarkReviewed},
		{"review from approved", StatusApproved, MarkReviewed},
		{"approve from draft", StatusDraft, Approve},
		{"approve from rejected", StatusRejected, Approve},
		{"reject approved", StatusApproved, Reject},
		{"reject archived", StatusArchived, Reject},
		{"reopen from draft", StatusDraft, Reopen},
		{"reopen from approved", StatusApproved, Reopen},
		{"archive from draft", StatusDraft, Archive},
		{"archive from reviewed", StatusReviewed, Archive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := draftRecon(100000, 100000)
			Recalculate(r)
			r.Status = tt.from

			err := tt.transition(r)

			require.Error(t, err)
			assert.True(t, IsInvalidState(err))
			assert.Equal(t, tt.from, r.Status, "failed transition must not change the status")
		})
	}
}

func TestApprove_AllowedFromPendingReviewAndReviewed(t *testing.T) {
	for _, from := range []Status{StatusPendingReview, StatusReviewed} {
		r := draftRecon(100000, 100000)
		r.Status = from
		require.NoError(t, Approve(r))
		assert.Equal(t, StatusApproved, r.Status)
	}
}

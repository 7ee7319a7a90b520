package matching_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/recon/matching"
	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/recon/matching/mocks"
	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/recon/reconciliation"
)

func pendingSuggestion() matching.Suggestion {
	return matching.Suggestion{
		SuggestionID:   "sug-001",
		CompanyID:      "comp-001",
		BankAccountID:  "acct-001",
		TransactionIDs: []string{"t1"},
		EntryIDs:       []string{"e1"},
		MatchType:      matching.MatchSingle,
		Confidence:     97,
		Band:           matching.BandExcellent,
		Status:         matching.SuggestionPending,
		CreatedAt:      time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestLifecycleApply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockStore(ctrl)
	lc := matching.NewLifecycle(store)

	sg := pendingSuggestion()
	applied := sg
	applied.Status = matching.SuggestionApplied
	applied.DecidedBy = "jdoe"

	minDate := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	store.EXPECT().GetSuggestion(ctx, "sug-001").Return(sg, nil)
	store.EXPECT().TransactionAmounts(ctx, []string{"t1"}, []string{"e1"}).
		Return(decimal.NewFromInt(10050), decimal.NewFromInt(10000), minDate, nil)
	store.EXPECT().ApplySuggestion(ctx, sg, "jdoe", decimal.NewFromInt(50)).Return(nil)
	store.EXPECT().GetSuggestion(ctx, "sug-001").Return(applied, nil)

	got, err := lc.Apply(ctx, "sug-001", "jdoe")

	require.NoError(t, err)
	assert.Equal(t, matching.SuggestionApplied, got.Status)
	assert.Equal(t, "jdoe", got.DecidedBy)
}

func TestLifecycleApply_AlreadyDecided(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockStore(ctrl)
	lc := matching.NewLifecycle(store)

	sg := pendingSuggestion()
	sg.Status = matching.SuggestionApplied
	store.EXPECT().GetSuggestion(ctx, "sug-001").Return(sg, nil)

	_, err := lc.Apply(ctx, "sug-001", "jdoe")

	require.Error(t, err)
	assert.True(t, reconciliation.IsInvalidState(err), "second apply must surface the state conflict, not no-op")
	var ise *reconciliation.InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, string(matching.SuggestionApplied), ise.Current)
}

func TestLifecycleApply_ActorRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	lc := matching.NewLifecycle(store)

	_, err := lc.Apply(context.Background(), "sug-001", "  ")

	require.Error(t, err)
	assert.True(t, reconciliation.IsValidation(err))
}

func TestLifecycleApply_StoreErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockStore(ctrl)
	lc := matching.NewLifecycle(store)

	boom := errors.New("connexion perdue")
	store.EXPECT().GetSuggestion(ctx, "sug-001").Return(matching.Suggestion{}, boom)

	_, err := lc.Apply(ctx, "sug-001", "jdoe")

	require.ErrorIs(t, err, boom)
}

func TestLifecycleApply_FailedApplyLeavesNoDecision(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockStore(ctrl)
	lc := matching.NewLifecycle(store)

	sg := pendingSuggestion()
	boom := errors.New("transaction annulée")

	// The store applies the flip, the reconciled marks and the residual fee as
	// one unit; when that unit fails nothing is re-read, the error is all the
	// caller sees.
	store.EXPECT().GetSuggestion(ctx, "sug-001").Return(sg, nil)
	store.EXPECT().TransactionAmounts(ctx, []string{"t1"}, []string{"e1"}).
		Return(decimal.NewFromInt(10050), decimal.NewFromInt(10000), time.Time{}, nil)
	store.EXPECT().ApplySuggestion(ctx, sg, "jdoe", decimal.NewFromInt(50)).Return(boom)

	got, err := lc.Apply(ctx, "sug-001", "jdoe")

	require.ErrorIs(t, err, boom)
	assert.Equal(t, matching.Suggestion{}, got)
}

func TestLifecycleReject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := mocks.NewMockStore(ctrl)
	lc := matching.NewLifecycle(store)

	rejected := pendingSuggestion()
	rejected.Status = matching.SuggestionRejected
	rejected.RejectionReason = "amount mismatch"
	rejected.DecidedBy = "jdoe"

	store.EXPECT().RejectSuggestion(ctx, "sug-001", "jdoe", "amount mismatch").Return(nil)
	store.EXPECT().GetSuggestion(ctx, "sug-001").Return(rejected, nil)

	got, err := lc.Reject(ctx, "sug-001", "jdoe", "amount mismatch")

	require.NoError(t, err)
	assert.Equal(t, matching.SuggestionRejected, got.Status)
	assert.Equal(t, "amount mismatch", got.RejectionReason)
}

func TestLifecycleReject_ReasonRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	lc := matching.NewLifecycle(store)

	_, err := lc.Reject(context.Background(), "sug-001", "jdoe", "")

	require.Error(t, err)
	assert.True(t, reconciliation.IsValidation(err))
	var ve *reconciliation.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rejection_reason", ve.Field)
}

package matching

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)

func mkTxn(id string, amount int64, date time.Time, desc string) BankTransaction {
	return BankTransaction{
		TransactionID: id,
		CompanyID:     "comp-001",
		BankAccountID: "acct-001",
		Date:          date,
		Amount:        decimal.NewFromInt(amount),
		Description:   desc,
	}
}

func mkEntry(id string, debit, credit int64, date time.Time, desc string) LedgerEntry {
	return LedgerEntry{
		EntryID:     id,
		CompanyID:   "comp-001",
		AccountCode: "521100",
		Date:        date,
		Debit:       decimal.NewFromInt(debit),
		Credit:      decimal.NewFromInt(credit),
		Description: desc,
	}
}

func snapshot(txns []BankTransaction, entries []LedgerEntry, pending []Suggestion) Snapshot {
	return Snapshot{
		CompanyID:     "comp-001",
		BankAccountID: "acct-001",
		Transactions:  txns,
		Entries:       entries,
		Pending:       pending,
	}
}

func TestEngineRun_SingleExactMatch(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	snap := snapshot(
		[]BankTransaction{mkTxn("t1", 200000, day, "virement client beta")},
		[]LedgerEntry{mkEntry("e1", 200000, 0, day, "virement client beta")},
		nil,
	)

	res, err := engine.Run(context.Background(), snap)

	require.NoError(t, err)
	require.Len(t, res.Suggestions, 1)
	sg := res.Suggestions[0]
	assert.Equal(t, MatchSingle, sg.MatchType)
	assert.Equal(t, []string{"t1"}, sg.TransactionIDs)
	assert.Equal(t, []string{"e1"}, sg.EntryIDs)
	assert.Equal(t, 100, sg.Confidence)
	assert.Equal(t, BandExcellent, sg.Band)
	assert.False(t, sg.RequiresManualReview)
	assert.Equal(t, SuggestionPending, sg.Status)
	assert.NotEmpty(t, sg.SuggestionID)
	assert.NotEmpty(t, sg.Rationale)
}

func TestEngineRun_OneToManyCombination(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	snap := snapshot(
		[]BankTransaction{mkTxn("t1", -15000, day, "fournisseur alpha")},
		[]LedgerEntry{
			mkEntry("e1", 0, 10000, day, "fournisseur alpha"),
			mkEntry("e2", 0, 5000, day.AddDate(0, 0, 1), "fournisseur alpha"),
		},
		nil,
	)

	res, err := engine.Run(context.Background(), snap)

	require.NoError(t, err)
	require.Len(t, res.Suggestions, 1)
	sg := res.Suggestions[0]
	assert.Equal(t, MatchOneToMany, sg.MatchType)
	assert.Equal(t, []string{"t1"}, sg.TransactionIDs)
	assert.ElementsMatch(t, []string{"e1", "e2"}, sg.EntryIDs)
	assert.Less(t, sg.Confidence, DefaultConfig().ExcellentThreshold, "combined matches stay below EXCELLENT")
	assert.Equal(t, 89, sg.Confidence)
	assert.Equal(t, BandGood, sg.Band)
	assert.True(t, sg.RequiresManualReview)
}

func TestEngineRun_ManyToOneCombination(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	snap := snapshot(
		[]BankTransaction{
			mkTxn("t1", -18000, day, "loyer siege part 1"),
			mkTxn("t2", -12000, day.AddDate(0, 0, 1), "loyer siege part 2"),
		},
		[]LedgerEntry{mkEntry("e1", 0, 30000, day, "loyer siege")},
		nil,
	)

	res, err := engine.Run(context.Background(), snap)

	require.NoError(t, err)
	require.Len(t, res.Suggestions, 1)
	sg := res.Suggestions[0]
	assert.Equal(t, MatchManyToOne, sg.MatchType)
	assert.ElementsMatch(t, []string{"t1", "t2"}, sg.TransactionIDs)
	assert.Equal(t, []string{"e1"}, sg.EntryIDs)
	assert.True(t, sg.RequiresManualReview)
}

func TestEngineRun_PendingSuggestionClaimsItsRecords(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	pending := Suggestion{
		SuggestionID:   "sug-001",
		Status:         SuggestionPending,
		TransactionIDs: []string{"t1"},
		EntryIDs:       []string{"e1"},
	}
	snap := snapshot(
		[]BankTransaction{mkTxn("t1", 50000, day, "abonnement canal")},
		[]LedgerEntry{mkEntry("e1", 50000, 0, day, "abonnement canal")},
		[]Suggestion{pending},
	)

	res, err := engine.Run(context.Background(), snap)

	require.NoError(t, err)
	assert.Empty(t, res.Suggestions, "claimed records must not be offered again")
	require.Len(t, res.AlreadyPending, 1)
	assert.Equal(t, "sug-001", res.AlreadyPending[0].SuggestionID)
}

func TestEngineRun_DecidedSuggestionsDoNotClaim(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	rejected := Suggestion{
		SuggestionID:   "sug-001",
		Status:         SuggestionRejected,
		TransactionIDs: []string{"t1"},
		EntryIDs:       []string{"e1"},
	}
	snap := snapshot(
		[]BankTransaction{mkTxn("t1", 50000, day, "abonnement canal")},
		[]LedgerEntry{mkEntry("e1", 50000, 0, day, "abonnement canal")},
		[]Suggestion{rejected},
	)

	res, err := engine.Run(context.Background(), snap)

	require.NoError(t, err)
	require.Len(t, res.Suggestions, 1, "records behind a rejected suggestion are free again")
	assert.Empty(t, res.AlreadyPending)
}

func TestEngineRun_SkipsMalformedRecords(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	reconciled := mkTxn("t9", 7000, day, "deja lettre")
	reconciled.Reconciled = true
	snap := snapshot(
		[]BankTransaction{
			mkTxn("t1", 0, day, "montant nul"),
			reconciled,
		},
		[]LedgerEntry{
			mkEntry("e1", 4000, 4000, day, "debit et credit"),
		},
		nil,
	)

	res, err := engine.Run(context.Background(), snap)

	require.NoError(t, err)
	assert.Empty(t, res.Suggestions)
	assert.Equal(t, 2, res.Skipped, "zero-amount and invalid entries are skipped, reconciled ones just filtered")
}

func TestEngineRun_NeverClaimsARecordTwice(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	snap := snapshot(
		[]BankTransaction{
			mkTxn("t1", 80000, day, "salaire mvondo"),
			mkTxn("t2", 80000, day, "salaire mvondo"),
		},
		[]LedgerEntry{mkEntry("e1", 80000, 0, day, "salaire mvondo")},
		nil,
	)

	res, err := engine.Run(context.Background(), snap)

	require.NoError(t, err)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, []string{"e1"}, res.Suggestions[0].EntryIDs)
}

func TestEngineRun_ContextCancellation(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	snap := snapshot(
		[]BankTransaction{
			mkTxn("t1", 10000, day, "un"),
			mkTxn("t2", 20000, day, "deux"),
			mkTxn("t3", 30000, day, "trois"),
		},
		[]LedgerEntry{
			mkEntry("e1", 10000, 0, day, "un"),
			mkEntry("e2", 20000, 0, day, "deux"),
			mkEntry("e3", 30000, 0, day, "trois"),
		},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := engine.Run(ctx, snap)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Suggestions, "a cancelled pass hands nothing back for persistence")
}

func TestEngineRun_EmptyPools(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	res, err := engine.Run(context.Background(), snapshot(nil, nil, nil))

	require.NoError(t, err)
	assert.Empty(t, res.Suggestions)
	assert.Empty(t, res.AlreadyPending)
	assert.Zero(t, res.Skipped)
}

package matching

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is an imported statement line consumed by the engine.
// The import pipeline owns these records; the engine never mutates them.
type BankTransaction struct {
	TransactionID string          `json:"transaction_id"`
	CompanyID     string          `json:"company_id"`
	BankAccountID string          `json:"bank_account_id"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Reconciled    bool            `json:"reconciled"`
	LedgerEntryID string          `json:"ledger_entry_id,omitempty"`
}

// LedgerEntry is a general-ledger line consumed by the engine. Exactly one of
// Debit/Credit is non-zero.
type LedgerEntry struct {
	EntryID           string          `json:"entry_id"`
	CompanyID         string          `json:"company_id"`
	AccountCode       string          `json:"account_code"`
	Date              time.Time       `json:"date"`
	Debit             decimal.Decimal `json:"debit"`
	Credit            decimal.Decimal `json:"credit"`
	Description       string          `json:"description"`
	Reconciled        bool            `json:"reconciled"`
	BankTransactionID string          `json:"bank_transaction_id,omitempty"`
}

// SignedAmount maps the debit/credit pair onto the bank statement sign
// convention: debits on the bank GL account are inflows.
func (e LedgerEntry) SignedAmount() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// Valid reports whether the entry carries exactly one of debit/credit.
func (e LedgerEntry) Valid() bool {
	return e.Debit.IsZero() != e.Credit.IsZero()
}

// MatchType is the cardinality shape of a suggestion.
type MatchType string

const (
	MatchSingle     MatchType = "SINGLE"
	MatchManyToOne  MatchType = "MANY_TO_ONE"
	MatchOneToMany  MatchType = "ONE_TO_MANY"
	MatchManyToMany MatchType = "MANY_TO_MANY"
)

// matchTypeFor derives the match type from the group cardinalities.
func matchTypeFor(txnCount, entryCount int) MatchType {
	switch {
	case txnCount == 1 && entryCount == 1:
		return MatchSingle
	case txnCount > 1 && entryCount == 1:
		return MatchManyToOne
	case txnCount == 1 && entryCount > 1:
		return MatchOneToMany
	default:
		return MatchManyToMany
	}
}

// Band is the discretized confidence tier of a suggestion.
type Band string

const (
	BandExcellent Band = "EXCELLENT"
	BandGood      Band = "GOOD"
	BandFair      Band = "FAIR"
	BandLow       Band = "LOW"
	BandNone      Band = "NONE" // below emission threshold, never persisted
)

// SuggestionStatus is the lifecycle state of a suggestion.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "PENDING"
	SuggestionApplied  SuggestionStatus = "APPLIED"
	SuggestionRejected SuggestionStatus = "REJECTED"
)

// Suggestion is an immutable pairing proposal between a non-empty group of
// bank transactions and a non-empty group of ledger entries. Once created,
// only its lifecycle status and decision metadata ever change.
type Suggestion struct {
	SuggestionID  string    `json:"suggestion_id"`
	CompanyID     string    `json:"company_id"`
	BankAccountID string    `json:"bank_account_id"`

	TransactionIDs []string `json:"transaction_ids"`
	EntryIDs       []string `json:"entry_ids"`

	MatchType            MatchType `json:"match_type"`
	Confidence           int       `json:"confidence"`
	Band                 Band      `json:"band"`
	Rationale            string    `json:"rationale"`
	RequiresManualReview bool      `json:"requires_manual_review"`

	Status          SuggestionStatus `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	DecidedBy       string           `json:"decided_by,omitempty"`
	DecidedAt       *time.Time       `json:"decided_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the workflow state of a reconciliation.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusReviewed      Status = "REVIEWED"
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
	StatusArchived      Status = "ARCHIVED"
)

// ItemType classifies a pending item into one of the adjustment classes.
type ItemType string

const (
	ItemOutstandingCheque  ItemType = "OUTSTANDING_CHEQUE"
	ItemDepositInTransit   ItemType = "DEPOSIT_IN_TRANSIT"
	ItemChequeInCollection ItemType = "CHEQUE_IN_COLLECTION"
	ItemBankError          ItemType = "BANK_ERROR"
	ItemUnrecordedCredit   ItemType = "UNRECORDED_CREDIT"
	ItemUnrecordedDebit    ItemType = "UNRECORDED_DEBIT"
	ItemUnrecordedFee      ItemType = "UNRECORDED_FEE"
	ItemBookError          ItemType = "BOOK_ERROR"
)

// ItemTypeSpec describes how an item type contributes to the reconciliation:
// which side it adjusts and whether its amount enters the class total as an
// addition or a subtraction. New item types are added here, nowhere else.
type ItemTypeSpec struct {
	AffectsBank bool
	IsAddition  bool
	Label       string
}

var itemTypeTable = map[ItemType]ItemTypeSpec{
	ItemOutstandingCheque:  {AffectsBank: true, IsAddition: true, Label: "Chèque émis non encaissé"},
	ItemDepositInTransit:   {AffectsBank: true, IsAddition: true, Label: "Dépôt en transit"},
	ItemChequeInCollection: {AffectsBank: true, IsAddition: false, Label: "Chèque à l'encaissement"},
	ItemBankError:          {AffectsBank: true, IsAddition: true, Label: "Erreur de banque"},
	ItemUnrecordedCredit:   {AffectsBank: false, IsAddition: true, Label: "Crédit non comptabilisé"},
	ItemUnrecordedDebit:    {AffectsBank: false, IsAddition: false, Label: "Débit non comptabilisé"},
	ItemUnrecordedFee:      {AffectsBank: false, IsAddition: false, Label: "Frais bancaires non comptabilisés"},
	ItemBookError:          {AffectsBank: false, IsAddition: true, Label: "Erreur d'écriture"},
}

// SpecFor returns the contribution spec for an item type.
func SpecFor(t ItemType) (ItemTypeSpec, bool) {
	spec, ok := itemTypeTable[t]
	return spec, ok
}

// ItemTypes lists all known item types.
func ItemTypes() []ItemType {
	types := make([]ItemType, 0, len(itemTypeTable))
	for t := range itemTypeTable {
		types = append(types, t)
	}
	return types
}

// Reconciliation is one bank reconciliation for a (company, bank account, period).
// The adjustment totals are reductions over the current pending items of each
// class; the adjusted balances, difference and balanced flag are derived from
// them by Recalculate and are never stored independently.
type Reconciliation struct {
	ReconciliationID string    `json:"reconciliation_id"`
	CompanyID        string    `json:"company_id"`
	BankAccountID    string    `json:"bank_account_id"`
	PeriodStart      time.Time `json:"period_start"`
	PeriodEnd        time.Time `json:"period_end"`

	StatementBalance decimal.Decimal `json:"statement_balance"`
	BookBalance      decimal.Decimal `json:"book_balance"`

	// Bank-side class totals (signed).
	OutstandingCheques   decimal.Decimal `json:"outstanding_cheques"`
	DepositsInTransit    decimal.Decimal `json:"deposits_in_transit"`
	ChequesInCollection  decimal.Decimal `json:"cheques_in_collection"`
	BankErrors           decimal.Decimal `json:"bank_errors"`

	// Book-side class totals (signed).
	UnrecordedCredits decimal.Decimal `json:"unrecorded_credits"`
	UnrecordedDebits  decimal.Decimal `json:"unrecorded_debits"`
	UnrecordedFees    decimal.Decimal `json:"unrecorded_fees"`
	BookErrors        decimal.Decimal `json:"book_errors"`

	AdjustedBankBalance decimal.Decimal `json:"adjusted_bank_balance"`
	AdjustedBookBalance decimal.Decimal `json:"adjusted_book_balance"`
	Difference          decimal.Decimal `json:"difference"`
	IsBalanced          bool            `json:"is_balanced"`

	Status  Status `json:"status"`
	Version int64  `json:"version"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PendingItem is one explainable cause of difference between the statement and
// the book balance. It belongs to exactly one reconciliation.
type PendingItem struct {
	ItemID            string          `json:"item_id"`
	ReconciliationID  string          `json:"reconciliation_id"`
	ItemType          ItemType        `json:"item_type"`
	Amount            decimal.Decimal `json:"amount"`
	TransactionDate   time.Time       `json:"transaction_date"`
	BankTransactionID string          `json:"bank_transaction_id,omitempty"`
	LedgerEntryID     string          `json:"ledger_entry_id,omitempty"`
	Resolved          bool            `json:"resolved"`
	Description       string          `json:"description,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// SignedAmount returns the contribution of the item to its class total:
// the raw amount for addition types, the negated amount otherwise.
func (p PendingItem) SignedAmount() decimal.Decimal {
	spec, ok := itemTypeTable[p.ItemType]
	if !ok || spec.IsAddition {
		return p.Amount
	}
	return p.Amount.Neg()
}

// AuditEntry is one logged workflow transition.
type AuditEntry struct {
	ReconciliationID string    `json:"reconciliation_id"`
	FromStatus       Status    `json:"from_status"`
	ToStatus         Status    `json:"to_status"`
	Actor            string    `json:"actor"`
	Comment          string    `json:"comment,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

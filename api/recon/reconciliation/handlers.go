package reconciliation

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api"
	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/utils"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	return t, err == nil
}

// statusFor maps the domain error taxonomy to HTTP statuses.
func statusFor(err error) int {
	switch {
	case IsInvalidState(err), IsConflict(err):
		return http.StatusConflict
	case IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func CreateReconciliation(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID           string `json:"user_id"`
			CompanyID        string `json:"company_id"`
			BankAccountID    string `json:"bank_account_id"`
			PeriodStart      string `json:"period_start"`
			PeriodEnd        string `json:"period_end"`
			StatementBalance string `json:"statement_balance"`
			BookBalance      string `json:"book_balance"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		start, okStart := parseDate(req.PeriodStart)
		end, okEnd := parseDate(req.PeriodEnd)
		if !okStart || !okEnd || end.Before(start) {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid period_start/period_end")
			return
		}
		statement, err := decimal.NewFromString(req.StatementBalance)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid statement_balance")
			return
		}
		book, err := decimal.NewFromString(req.BookBalance)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid book_balance")
			return
		}
		rec := Reconciliation{
			CompanyID:        req.CompanyID,
			BankAccountID:    req.BankAccountID,
			PeriodStart:      start,
			PeriodEnd:        end,
			StatementBalance: statement,
			BookBalance:      book,
			CreatedBy:        req.UserID,
		}
		store := NewStore(pgxPool)
		if err := store.Create(r.Context(), &rec); err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", rec)
	}
}

func GetReconciliation(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID           string `json:"user_id"`
			ReconciliationID string `json:"reconciliation_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		store := NewStore(pgxPool)
		rec, err := store.Get(r.Context(), req.ReconciliationID)
		if err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}
		items, err := store.Items(r.Context(), req.ReconciliationID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"reconciliation": rec,
			"pending_items":  items,
		})
	}
}

func ListReconciliations(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID    string `json:"user_id"`
			CompanyID string `json:"company_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		pagination, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		store := NewStore(pgxPool)
		recs, err := store.ListByCompany(r.Context(), req.CompanyID, pagination.Limit, pagination.Offset)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		total, err := utils.CountTotal(r.Context(), pgxPool,
			`SELECT COUNT(*) FROM recon.reconciliations WHERE company_id = $1`, req.CompanyID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		pagination.SetPaginationStats(total)
		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"reconciliations": recs,
			"pagination":      pagination,
		})
	}
}

func UpdateReconciliationBalances(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID           string `json:"user_id"`
			ReconciliationID string `json:"reconciliation_id"`
			StatementBalance string `json:"statement_balance"`
			BookBalance      string `json:"book_balance"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		statement, err := decimal.NewFromString(req.StatementBalance)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid statement_balance")
			return
		}
		book, err := decimal.NewFromString(req.BookBalance)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid book_balance")
			return
		}
		store := NewStore(pgxPool)
		rec, err := store.UpdateBalances(r.Context(), req.ReconciliationID, statement, book, req.UserID)
		if err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", rec)
	}
}

func DeleteReconciliation(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID           string `json:"user_id"`
			ReconciliationID string `json:"reconciliation_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		store := NewStore(pgxPool)
		if err := store.Delete(r.Context(), req.ReconciliationID); err != nil {
			api.RespondWithResult(w, false, err.Error())
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func AddPendingItem(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID            string `json:"user_id"`
			ReconciliationID  string `json:"reconciliation_id"`
			ItemType          string `json:"item_type"`
			Amount            string `json:"amount"`
			TransactionDate   string `json:"transaction_date"`
			BankTransactionID string `json:"bank_transaction_id,omitempty"`
			LedgerEntryID     string `json:"ledger_entry_id,omitempty"`
			Description       string `json:"description,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid amount")
			return
		}
		date, ok := parseDate(req.TransactionDate)
		if !ok {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid transaction_date")
			return
		}
		item := PendingItem{
			ReconciliationID:  req.ReconciliationID,
			ItemType:          ItemType(req.ItemType),
			Amount:            amount,
			TransactionDate:   date,
			BankTransactionID: req.BankTransactionID,
			LedgerEntryID:     req.LedgerEntryID,
			Description:       req.Description,
		}
		store := NewStore(pgxPool)
		rec, err := store.AddItem(r.Context(), item)
		if err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", rec)
	}
}

func RemovePendingItem(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID           string `json:"user_id"`
			ReconciliationID string `json:"reconciliation_id"`
			ItemID           string `json:"item_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		store := NewStore(pgxPool)
		rec, err := store.RemoveItem(r.Context(), req.ReconciliationID, req.ItemID)
		if err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", rec)
	}
}

// transitionHandler cuts the boilerplate shared by the workflow endpoints.
func transitionHandler(pgxPool *pgxpool.Pool, apply func(*Reconciliation) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID           string `json:"user_id"`
			ReconciliationID string `json:"reconciliation_id"`
			Comment          string `json:"comment,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.UserID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		store := NewStore(pgxPool)
		rec, err := store.Transition(r.Context(), req.ReconciliationID, req.UserID, req.Comment, apply)
		if err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", rec)
	}
}

func SubmitReconciliation(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return transitionHandler(pgxPool, SubmitForReview)
}

func ReviewReconciliation(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return transitionHandler(pgxPool, MarkReviewed)
}

func ApproveReconciliation(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return transitionHandler(pgxPool, Approve)
}

func RejectReconciliation(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return transitionHandler(pgxPool, Reject)
}

func ReopenReconciliation(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return transitionHandler(pgxPool, Reopen)
}

func ArchiveReconciliation(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return transitionHandler(pgxPool, Archive)
}

func GetReconciliationAudit(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID           string `json:"user_id"`
			ReconciliationID string `json:"reconciliation_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		store := NewStore(pgxPool)
		trail, err := store.AuditTrail(r.Context(), req.ReconciliationID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", trail)
	}
}

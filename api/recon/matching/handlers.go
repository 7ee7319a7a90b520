package matching

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api"
	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/recon/reconciliation"
)

const dateLayout = "2006-01-02"

func statusFor(err error) int {
	switch {
	case reconciliation.IsInvalidState(err), reconciliation.IsConflict(err):
		return http.StatusConflict
	case reconciliation.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RunMatching triggers one engine pass for an account and period and returns
// the freshly persisted suggestions alongside the ones already pending.
func RunMatching(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID        string `json:"user_id"`
			CompanyID     string `json:"company_id"`
			BankAccountID string `json:"bank_account_id"`
			PeriodStart   string `json:"period_start"`
			PeriodEnd     string `json:"period_end"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		from, errFrom := time.Parse(dateLayout, req.PeriodStart)
		to, errTo := time.Parse(dateLayout, req.PeriodEnd)
		if errFrom != nil || errTo != nil || to.Before(from) {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid period_start/period_end")
			return
		}
		runner := NewRunner(NewPgStore(pgxPool), NewEngine(DefaultConfig()))
		res, err := runner.Run(r.Context(), req.CompanyID, req.BankAccountID, from, to)
		if err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}
		api.LogInfo("matching pass for %s/%s: %d suggested, %d already pending, %d skipped",
			req.CompanyID, req.BankAccountID, len(res.Suggestions), len(res.AlreadyPending), res.Skipped)
		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"suggestions":     res.Suggestions,
			"already_pending": res.AlreadyPending,
			"skipped":         res.Skipped,
		})
	}
}

func ListMatchSuggestions(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID        string `json:"user_id"`
			CompanyID     string `json:"company_id"`
			BankAccountID string `json:"bank_account_id,omitempty"`
			Status        string `json:"status,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		store := NewPgStore(pgxPool)
		out, err := store.ListSuggestions(r.Context(), req.CompanyID, req.BankAccountID, SuggestionStatus(req.Status))
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

func GetMatchSuggestion(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID       string `json:"user_id"`
			SuggestionID string `json:"suggestion_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		store := NewPgStore(pgxPool)
		sg, err := store.GetSuggestion(r.Context(), req.SuggestionID)
		if err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", sg)
	}
}

func ApplyMatchSuggestion(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID       string `json:"user_id"`
			SuggestionID string `json:"suggestion_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		lifecycle := NewLifecycle(NewPgStore(pgxPool))
		sg, err := lifecycle.Apply(r.Context(), req.SuggestionID, req.UserID)
		if err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", sg)
	}
}

func RejectMatchSuggestion(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID       string `json:"user_id"`
			SuggestionID string `json:"suggestion_id"`
			Reason       string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		lifecycle := NewLifecycle(NewPgStore(pgxPool))
		sg, err := lifecycle.Reject(r.Context(), req.SuggestionID, req.UserID, req.Reason)
		if err != nil {
			api.RespondWithError(w, statusFor(err), err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", sg)
	}
}

func GetMatchingMetrics(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID    string `json:"user_id"`
			CompanyID string `json:"company_id"`
			From      string `json:"from"`
			To        string `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		from, errFrom := time.Parse(dateLayout, req.From)
		to, errTo := time.Parse(dateLayout, req.To)
		if errFrom != nil || errTo != nil || to.Before(from) {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid from/to")
			return
		}
		store := NewPgStore(pgxPool)
		trail, err := store.SuggestionTrail(r.Context(), req.CompanyID, from, to)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", BuildReport(trail, from, to))
	}
}

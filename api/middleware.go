package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/constants"
)

type contextKey string

const (
	CompanyIDKey      contextKey = "companyID"
	BankAccountIDsKey contextKey = "bankAccountIDs"
	UserIDKey         contextKey = "userID"
)

// Helper functions for context retrieval (used by handlers downstream)
func GetCompanyIDFromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(CompanyIDKey).(string); ok {
		return id
	}
	return ""
}

func GetBankAccountIDsFromCtx(ctx context.Context) []string {
	if ids, ok := ctx.Value(BankAccountIDsKey).([]string); ok {
		return ids
	}
	return []string{}
}

func GetUserIDFromCtx(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// Validation helpers
func IsBankAccountAllowed(ctx context.Context, accountID string) bool {
	ids := GetBankAccountIDsFromCtx(ctx)
	if len(ids) == 0 {
		return false
	}
	wanted := strings.ToUpper(strings.TrimSpace(accountID))
	for _, id := range ids {
		if strings.ToUpper(strings.TrimSpace(id)) == wanted {
			return true
		}
	}
	return false
}

// CompanyScopeMiddleware resolves the calling user's company and the bank
// accounts visible to them, and rejects requests addressing another company's
// records. The user_id travels in the JSON body, so the body is decoded here
// and reset for the downstream handler.
func CompanyScopeMiddleware(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID, requestedCompany string
			ct := r.Header.Get(constants.ContentTypeText)
			if strings.HasPrefix(ct, constants.ContentTypeJSON) && (r.Method == "POST" || r.Method == "PUT") {
				var bodyMap map[string]interface{}
				_ = json.NewDecoder(r.Body).Decode(&bodyMap)
				if uid, ok := bodyMap[constants.KeyUserID].(string); ok {
					userID = uid
				}
				if cid, ok := bodyMap[constants.KeyCompanyID].(string); ok {
					requestedCompany = cid
				}
				// Re-marshal and reset body for downstream handlers
				bodyBytes, _ := json.Marshal(bodyMap)
				r.Body = io.NopCloser(strings.NewReader(string(bodyBytes)))
			}

			if userID == "" {
				log.Println("[ERROR] Missing user_id in request")
				w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
				json.NewEncoder(w).Encode(map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.ErrMissingUserID,
				})
				return
			}

			var companyID string
			err := db.QueryRow(`SELECT company_id FROM recon.users WHERE user_id = $1 AND (is_deleted = false OR is_deleted IS NULL)`, userID).Scan(&companyID)
			if err != nil || companyID == "" {
				log.Println("[ERROR] User not found or has no company assigned for user_id:", userID)
				w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
				json.NewEncoder(w).Encode(map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.ErrNoAccessibleCompany,
				})
				return
			}

			if requestedCompany != "" && !strings.EqualFold(strings.TrimSpace(requestedCompany), companyID) {
				log.Printf("[ERROR] user %s attempted to access company %s", userID, requestedCompany)
				w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
				json.NewEncoder(w).Encode(map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.ErrCompanyNotAllowed,
				})
				return
			}

			var accountIDs []string
			rows, err := db.Query(`
				SELECT bank_account_id FROM recon.bank_accounts
				WHERE company_id = $1 AND (is_deleted = false OR is_deleted IS NULL)`, companyID)
			if err == nil {
				defer rows.Close()
				for rows.Next() {
					var id string
					if err := rows.Scan(&id); err == nil {
						accountIDs = append(accountIDs, id)
					}
				}
			} else {
				log.Printf("[WARN] bank account lookup failed: %v", err)
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, CompanyIDKey, companyID)
			ctx = context.WithValue(ctx, BankAccountIDsKey, accountIDs)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

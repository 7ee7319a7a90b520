package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExtractUserID parses the request body ONCE and extracts user_id
// This replaces repeated body parsing in every middleware
func ExtractUserID(r *http.Request) (string, error) {
	// Read body
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	defer r.Body.Close()

	// Try JSON first (we already have bytes)
	var reqMap map[string]interface{}
	if err := json.Unmarshal(body, &reqMap); err == nil {
		if userID, ok := reqMap["user_id"].(string); ok && userID != "" {
			// restore body for caller
			r.Body = io.NopCloser(bytes.NewBuffer(body))
			return userID, nil
		}
	}

	// Restore body so form parsing can read it
	r.Body = io.NopCloser(bytes.NewBuffer(body))
	ct := r.Header.Get("Content-Type")
	if strings.Contains(strings.ToLower(ct), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			if userID := r.FormValue("user_id"); userID != "" {
				// restore body for caller
				r.Body = io.NopCloser(bytes.NewBuffer(body))
				return userID, nil
			}
		}
	} else {
		if err := r.ParseForm(); err == nil {
			if userID := r.FormValue("user_id"); userID != "" {
				// restore body for caller
				r.Body = io.NopCloser(bytes.NewBuffer(body))
				return userID, nil
			}
		}
	}

	// Ensure body is available for caller
	r.Body = io.NopCloser(bytes.NewBuffer(body))
	return "", fmt.Errorf("user_id not found in request")
}

// BankAccountInfo represents a bank account visible to the caller
type BankAccountInfo struct {
	BankAccountID string
	AccountNumber string
	BankName      string
	GLAccountCode string
}

// GetCompanyBankAccounts retrieves the active bank accounts of a company
// (lazy loaded when an endpoint needs the full account detail)
func GetCompanyBankAccounts(ctx context.Context, db *pgxpool.Pool, companyID string) ([]BankAccountInfo, error) {
	query := `
		SELECT
			bank_account_id,
			COALESCE(account_number, ''),
			COALESCE(bank_name, ''),
			COALESCE(gl_account_code, '')
		FROM recon.bank_accounts
		WHERE company_id = $1
		  AND COALESCE(is_deleted, false) = false
		ORDER BY bank_name, account_number
	`

	rows, err := db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bank accounts: %w", err)
	}
	defer rows.Close()

	accounts := []BankAccountInfo{}
	for rows.Next() {
		var a BankAccountInfo
		if err := rows.Scan(&a.BankAccountID, &a.AccountNumber, &a.BankName, &a.GLAccountCode); err == nil {
			accounts = append(accounts, a)
		}
	}

	return accounts, nil
}

// NormalizeString trims whitespace and converts to lowercase for comparisons
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateBankAccountID checks if a bank account ID is in the accessible list
func ValidateBankAccountID(accountID string, accessible []BankAccountInfo) bool {
	normalized := strings.TrimSpace(accountID)
	for _, a := range accessible {
		if a.BankAccountID == normalized {
			return true
		}
	}
	return false
}

package validation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ValidationResult contains all pre-validated data for a request
type ValidationResult struct {
	UserID       string
	CompanyID    string
	CompanyName  string
	AccountCount int
}

// PreValidateRequest performs a single optimized query to validate user and get core metadata
// This replaces multiple middleware queries with ONE database call
func PreValidateRequest(ctx context.Context, db *pgxpool.Pool, userID string) (*ValidationResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	// Single query combining:
	// 1. User lookup + company
	// 2. Accessible bank account count
	// This replaces separate middleware queries
	query := `
		WITH user_info AS (
			SELECT
				user_id,
				company_id
			FROM recon.users
			WHERE user_id = $1
			  AND COALESCE(is_deleted, false) = false
			LIMIT 1
		),
		company AS (
			SELECT
				company_id,
				company_name
			FROM recon.companies
			WHERE company_id = (SELECT company_id FROM user_info)
			  AND COALESCE(is_deleted, false) = false
			LIMIT 1
		)
		SELECT
			u.user_id,
			u.company_id,
			COALESCE(c.company_name, ''),
			(SELECT COUNT(*) FROM recon.bank_accounts a
			 WHERE a.company_id = u.company_id
			   AND COALESCE(a.is_deleted, false) = false)
		FROM user_info u
		LEFT JOIN company c ON true
	`

	var result ValidationResult
	err := db.QueryRow(ctx, query, userID).Scan(
		&result.UserID,
		&result.CompanyID,
		&result.CompanyName,
		&result.AccountCount,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to validate user: %w", err)
	}

	if result.UserID == "" {
		return nil, fmt.Errorf("user not found: %s", userID)
	}
	if result.CompanyID == "" {
		return nil, fmt.Errorf("no accessible company for user: %s", userID)
	}

	return &result, nil
}

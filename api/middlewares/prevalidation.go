package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	rootapi "github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api"
	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/internal/validation"
)

// PreValidationMiddleware resolves the caller's company with a single pgx
// query and attaches the result to the request context. It is the fast path
// for read-heavy endpoints that only need the company scope.
func PreValidationMiddleware(db *pgxpool.Pool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				rootapi.RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
				return
			}
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewBuffer(body))

			userID, err := validation.ExtractUserID(r)
			if err != nil {
				rootapi.RespondWithError(w, http.StatusBadRequest, "user_id required")
				return
			}

			r.Body = io.NopCloser(bytes.NewBuffer(body))

			validationResult, err := validation.PreValidateRequest(ctx, db, userID)
			if err != nil {
				if strings.Contains(strings.ToLower(err.Error()), "no accessible") {
					rootapi.RespondWithError(w, http.StatusForbidden, "No accessible company found for this user")
					return
				}
				rootapi.RespondWithError(w, http.StatusUnauthorized, "Validation failed: "+err.Error())
				return
			}

			ctx = context.WithValue(ctx, rootapi.UserIDKey, validationResult.UserID)
			ctx = context.WithValue(ctx, rootapi.CompanyIDKey, validationResult.CompanyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

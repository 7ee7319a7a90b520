package recon

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api"
	middlewares "github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/middlewares"
	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/recon/matching"
	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/recon/reconciliation"
)

func StartReconService(db *sql.DB) {
	mux := http.NewServeMux()
	mux.HandleFunc("/recon/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Recon Service is active"))
	})

	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if user == "" || pass == "" || host == "" || port == "" || name == "" {
		log.Fatal("Recon Service: missing DB_* environment variables")
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, name)

	pgxPool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("failed to connect to pgxpool DB: %v", err)
	}

	scope := api.CompanyScopeMiddleware(db)
	// reads only need the lighter single-query validation
	preval := middlewares.PreValidationMiddleware(pgxPool)

	mux.Handle("/recon/reconciliations/create", scope(http.HandlerFunc(reconciliation.CreateReconciliation(pgxPool))))
	mux.Handle("/recon/reconciliations/get", preval(http.HandlerFunc(reconciliation.GetReconciliation(pgxPool))))
	mux.Handle("/recon/reconciliations/list", preval(http.HandlerFunc(reconciliation.ListReconciliations(pgxPool))))
	mux.Handle("/recon/reconciliations/update-balances", scope(http.HandlerFunc(reconciliation.UpdateReconciliationBalances(pgxPool))))
	mux.Handle("/recon/reconciliations/delete", scope(http.HandlerFunc(reconciliation.DeleteReconciliation(pgxPool))))
	mux.Handle("/recon/reconciliations/audit", preval(http.HandlerFunc(reconciliation.GetReconciliationAudit(pgxPool))))

	mux.Handle("/recon/pending-items/add", scope(http.HandlerFunc(reconciliation.AddPendingItem(pgxPool))))
	mux.Handle("/recon/pending-items/remove", scope(http.HandlerFunc(reconciliation.RemovePendingItem(pgxPool))))

	mux.Handle("/recon/reconciliations/submit", scope(http.HandlerFunc(reconciliation.SubmitReconciliation(pgxPool))))
	mux.Handle("/recon/reconciliations/review", scope(http.HandlerFunc(reconciliation.ReviewReconciliation(pgxPool))))
	mux.Handle("/recon/reconciliations/approve", scope(http.HandlerFunc(reconciliation.ApproveReconciliation(pgxPool))))
	mux.Handle("/recon/reconciliations/reject", scope(http.HandlerFunc(reconciliation.RejectReconciliation(pgxPool))))
	mux.Handle("/recon/reconciliations/reopen", scope(http.HandlerFunc(reconciliation.ReopenReconciliation(pgxPool))))
	mux.Handle("/recon/reconciliations/archive", scope(http.HandlerFunc(reconciliation.ArchiveReconciliation(pgxPool))))

	mux.Handle("/recon/matching/run", scope(http.HandlerFunc(matching.RunMatching(pgxPool))))
	mux.Handle("/recon/suggestions/list", preval(http.HandlerFunc(matching.ListMatchSuggestions(pgxPool))))
	mux.Handle("/recon/suggestions/get", preval(http.HandlerFunc(matching.GetMatchSuggestion(pgxPool))))
	mux.Handle("/recon/suggestions/apply", scope(http.HandlerFunc(matching.ApplyMatchSuggestion(pgxPool))))
	mux.Handle("/recon/suggestions/reject", scope(http.HandlerFunc(matching.RejectMatchSuggestion(pgxPool))))
	mux.Handle("/recon/metrics", preval(http.HandlerFunc(matching.GetMatchingMetrics(pgxPool))))

	log.Println("Recon Service started on :7143")
	if err := http.ListenAndServe(":7143", mux); err != nil {
		log.Fatalf("Recon Service failed: %v", err)
	}
}

package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/api/recon/matching"
	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/internal/config"
	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/internal/logger"
)

// MatchingSweepConfig holds configuration for the nightly matching sweep
type MatchingSweepConfig struct {
	Schedule   string // Cron schedule (default: "0 20 * * *" for 8 PM daily)
	WindowDays int    // Trailing window of transactions/entries to consider
	TimeZone   string // Timezone for scheduling
}

// NewDefaultMatchingSweepConfig creates a MatchingSweepConfig from env with defaults
func NewDefaultMatchingSweepConfig() *MatchingSweepConfig {
	schedule := os.Getenv("MATCHING_SCHEDULE")
	if schedule == "" {
		schedule = config.DefaultMatchingSchedule
	}

	windowDays := config.MatchingWindowDays
	if w := os.Getenv("MATCHING_SWEEP_WINDOW_DAYS"); w != "" {
		if parsed, err := parseInt(w); err == nil && parsed > 0 {
			windowDays = parsed
		}
	}

	return &MatchingSweepConfig{
		Schedule:   schedule,
		WindowDays: windowDays,
		TimeZone:   config.DefaultTimeZone,
	}
}

// RunMatchingScheduler starts the cron job that sweeps every active bank
// account and generates match suggestions for its recent activity.
func RunMatchingScheduler(cfg *MatchingSweepConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultMatchingSchedule
	}
	if cfg.WindowDays == 0 {
		cfg.WindowDays = config.MatchingWindowDays
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
		logger.GlobalLogger.LogAudit(fmt.Sprintf("Invalid timezone %s, falling back to UTC: %v", cfg.TimeZone, err))
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.Schedule, func() {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("Starting matching sweep at %s", time.Now().In(loc).Format(time.RFC3339)))
		if err := SweepAllAccounts(db, cfg.WindowDays); err != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("Matching sweep failed: %v", err))
			log.Printf("ERROR: Matching sweep failed: %v", err)
		} else {
			logger.GlobalLogger.LogAudit("Matching sweep completed successfully")
		}
	})

	if err != nil {
		return fmt.Errorf("unable to schedule matching sweep: %v", err)
	}

	c.Start()
	logger.GlobalLogger.LogAudit(fmt.Sprintf("Matching scheduler started with schedule: %s (timezone: %s)", cfg.Schedule, cfg.TimeZone))
	log.Printf("[AUDIT] Matching scheduler started: %s (%s)", cfg.Schedule, cfg.TimeZone)

	return nil
}

// SweepAllAccounts runs one matching pass per active bank account over the
// trailing window. An account that fails is logged and skipped; one bad
// account never aborts the whole sweep.
func SweepAllAccounts(db *pgxpool.Pool, windowDays int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	rows, err := db.Query(ctx, `
		SELECT company_id, bank_account_id
		FROM recon.bank_accounts
		WHERE (is_deleted = false OR is_deleted IS NULL)
		ORDER BY company_id, bank_account_id`)
	if err != nil {
		return fmt.Errorf("load active bank accounts: %w", err)
	}
	defer rows.Close()

	type account struct{ companyID, accountID string }
	accounts := []account{}
	for rows.Next() {
		var a account
		if err := rows.Scan(&a.companyID, &a.accountID); err != nil {
			return err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	runner := matching.NewRunner(matching.NewPgStore(db), matching.NewEngine(matching.DefaultConfig()))
	to := time.Now()
	from := to.AddDate(0, 0, -windowDays)

	suggested, pending, skipped, failed := 0, 0, 0, 0
	for _, a := range accounts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res, err := runner.Run(ctx, a.companyID, a.accountID, from, to)
		if err != nil {
			failed++
			logger.GlobalLogger.LogAudit(fmt.Sprintf("Matching sweep failed for %s/%s: %v", a.companyID, a.accountID, err))
			continue
		}
		suggested += len(res.Suggestions)
		pending += len(res.AlreadyPending)
		skipped += res.Skipped
	}

	logger.GlobalLogger.LogAudit(fmt.Sprintf(
		"Matching sweep: %d accounts, %d suggested, %d already pending, %d records skipped, %d accounts failed",
		len(accounts), suggested, pending, skipped, failed))
	return nil
}

// parseInt is a helper to parse int from string
func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

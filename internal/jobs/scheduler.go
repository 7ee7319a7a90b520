package jobs

import (
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/internal/logger"
	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/internal/serviceiface"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	matchingConfig := NewDefaultMatchingSweepConfig()

	// Override matching config from services.yaml if provided
	if s.config != nil {
		if schedule, ok := s.config["matching_schedule"].(string); ok && schedule != "" {
			matchingConfig.Schedule = schedule
		}
		if windowDays, ok := s.config["matching_window_days"].(int); ok && windowDays > 0 {
			matchingConfig.WindowDays = windowDays
		}
	}

	if err := RunMatchingScheduler(matchingConfig, s.db); err != nil {
		return fmt.Errorf("failed to start matching scheduler: %v", err)
	}

	logger.GlobalLogger.LogAudit("Cron service started with matching sweep")
	log.Println("Cron service started — Matching Sweep scheduled")

	return nil
}

func (s *CronService) Stop() error {
	log.Println("Cron service stopped.")
	return nil
}

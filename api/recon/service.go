package recon

import (
	"database/sql"

	"github.com/BelCodeur2005/PREDYKT-FINTECH-AFRICA-sub002/internal/serviceiface"
)

type ReconService struct {
	config map[string]interface{}
	db     *sql.DB
}

func NewReconService(cfg map[string]interface{}, db *sql.DB) serviceiface.Service {
	return &ReconService{config: cfg, db: db}
}

func (s *ReconService) Name() string {
	return "recon"
}

func (s *ReconService) Start() error {
	go StartReconService(s.db)
	return nil
}

func (s *ReconService) Stop() error {
	return nil
}

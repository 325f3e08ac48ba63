package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/meridianpay/backoffice/internal/api"
	"github.com/meridianpay/backoffice/internal/config"
	"github.com/meridianpay/backoffice/internal/repository"
	"github.com/meridianpay/backoffice/internal/rollup"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	log.WithField("path", cfg.DBPath).Info("initializing database")
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("init db")
	}
	defer db.Close()

	// Seed fixture data if the database is empty. Production deployments
	// are populated by the provider sync jobs instead.
	seedRepo := repository.NewSeedRepo(db)
	count, err := seedRepo.CountPayouts()
	if err != nil {
		log.WithError(err).Fatal("count payouts")
	}
	if count == 0 {
		if err := seedFromFile(log, seedRepo, cfg.SeedPath); err != nil {
			log.WithError(err).Warn("seeding skipped")
		}
	} else {
		log.WithField("payouts", count).Info("database already populated, skipping seed")
	}

	svc := rollup.NewService(
		repository.NewScopeRepo(db),
		repository.NewLedgerRepo(db, log),
		repository.NewAdjustmentRepo(db),
		cfg.CalendarWorkers,
		log,
	)
	router := api.NewRouter(svc, log)

	log.WithField("port", cfg.Port).Info("settlement back-office listening")
	log.Info("endpoints:")
	log.Info("  GET /api/v1/settlements/rollup")
	log.Info("  GET /api/v1/settlements/calendar")
	log.Info("  GET /healthz")

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}

func seedFromFile(log *logrus.Logger, repo *repository.SeedRepo, seedPath string) error {
	// Try multiple possible locations for the fixture.
	candidates := []string{seedPath}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, seedPath),
			filepath.Join(dir, "..", "..", seedPath),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			log.WithField("path", path).Info("loading seed fixture")
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("no seed fixture found: %w", loadErr)
	}

	var fixture repository.Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("unmarshal fixture: %w", err)
	}
	if err := repo.Load(&fixture); err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}

	log.WithFields(logrus.Fields{
		"merchants":     len(fixture.Merchants),
		"payouts":       len(fixture.Payouts),
		"anticipations": len(fixture.Anticipations),
		"settlements":   len(fixture.Settlements),
	}).Info("seeded fixture data")
	return nil
}

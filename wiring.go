package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/wricardo/adc-hub/game/config"
	"github.com/wricardo/adc-hub/game/service"
	"github.com/wricardo/adc-hub/game/session"
	"github.com/wricardo/adc-hub/game/settings"
	"github.com/wricardo/adc-hub/game/worldskills"
	"github.com/wricardo/adc-hub/internal/appconfig"
	"github.com/wricardo/adc-hub/internal/logging"
	"github.com/wricardo/adc-hub/internal/metrics"
	"github.com/wricardo/adc-hub/robotevents"
)

// services bundles everything the commands need
type services struct {
	cfg      *appconfig.Config
	log      zerolog.Logger
	sheets   *session.Manager
	seasons  *config.Manager
	settings settings.Store
	metrics  *metrics.Metrics
	scores   service.ScoreService
	lookup   service.LookupService

	closers []io.Closer
}

// Close releases the settings database, if any
func (s *services) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// initializeServices wires the season catalog, settings store, RobotEvents client and services
func initializeServices(cfg *appconfig.Config, log zerolog.Logger) (*services, error) {
	svc := &services{cfg: cfg, log: log}

	seasons, err := config.NewManager(cfg.SeasonsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create season catalog: %w", err)
	}
	svc.seasons = seasons

	if err := svc.openSettings(); err != nil {
		return nil, err
	}

	svc.sheets = session.NewManager()
	if cfg.Metrics {
		svc.metrics = metrics.New(svc.sheets.Count)
	}

	client := robotevents.NewClient(robotevents.Config{
		BaseURL:     cfg.RobotEvents.BaseURL,
		WebURL:      cfg.RobotEvents.WebURL,
		Token:       cfg.RobotEvents.Token,
		ProgramID:   cfg.RobotEvents.ProgramID,
		ProgramSlug: cfg.RobotEvents.ProgramSlug,
		Timeout:     cfg.RobotEvents.Timeout,
		UserAgent:   AppName + "/" + Version,
	},
		robotevents.WithLogger(logging.Component(log, "robotevents")),
		robotevents.WithObserver(svc.metrics.ObserveUpstream),
	)

	svc.scores = service.NewScoreService(svc.sheets, seasons, logging.Component(log, "scores"), service.Observer{
		Score:       svc.metrics.ObserveScore,
		SheetAction: svc.metrics.ObserveSheetAction,
	})
	svc.lookup = service.NewLookupService(client, seasons, svc.settings, worldskills.NewCache(), service.LookupOptions{
		SkillsMaxAge: cfg.WorldSkills.RefreshInterval,
		Logger:       logging.Component(log, "lookup"),
	})

	if cfg.RobotEvents.Token == "" {
		log.Warn().Msg("no RobotEvents token configured; team and event lookups will fail (set ADCHUB_ROBOTEVENTS_TOKEN)")
	}
	return svc, nil
}

func (s *services) openSettings() error {
	switch s.cfg.Settings.Backend {
	case appconfig.BackendSQLite:
		if err := ensureParentDir(s.cfg.Settings.SQLitePath); err != nil {
			return err
		}
		db, err := settings.OpenSQLite(s.cfg.Settings.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open settings database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to open settings database: %w", err)
		}
		s.closers = append(s.closers, sqlDB)

		store, err := settings.NewSQLStore(db)
		if err != nil {
			return fmt.Errorf("failed to create settings store: %w", err)
		}
		s.settings = store
	default:
		store, err := settings.NewFileStore(s.cfg.Settings.Path)
		if err != nil {
			return fmt.Errorf("failed to create settings store: %w", err)
		}
		s.settings = store
	}
	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"riskwatch/internal/model"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:riskwatch.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			country_code TEXT NOT NULL,
			calculated_at TEXT NOT NULL,
			overall_score REAL NOT NULL,
			risk_level TEXT NOT NULL,
			trend TEXT NOT NULL,
			first_run INTEGER NOT NULL DEFAULT 0,
			news_score REAL NOT NULL,
			conflict_score REAL NOT NULL,
			economic_score REAL NOT NULL,
			government_score REAL NOT NULL,
			confidence_score REAL NOT NULL,
			confidence_level TEXT NOT NULL,
			signals_json TEXT NOT NULL,
			confidence_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_country_date ON assessments(country_code, calculated_at)`,
		`CREATE TABLE IF NOT EXISTS alert_events (
			id TEXT PRIMARY KEY,
			assessment_id TEXT NOT NULL,
			country_code TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			risk_score REAL NOT NULL,
			previous_score REAL NOT NULL,
			confidence_score REAL NOT NULL,
			change_percentage REAL NOT NULL,
			primary_driver TEXT,
			evidence_json TEXT,
			triggered_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_events_country_type ON alert_events(country_code, alert_type, triggered_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) SaveAssessment(ctx context.Context, assessment model.RiskAssessment, alerts []model.AlertEvent) error {
	if s.db == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO assessments (id, country_code, calculated_at, overall_score, risk_level, trend, first_run,
			news_score, conflict_score, economic_score, government_score,
			confidence_score, confidence_level, signals_json, confidence_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		assessment.ID,
		assessment.CountryCode,
		assessment.CalculatedAt.UTC(),
		assessment.OverallScore,
		string(assessment.RiskLevel),
		string(assessment.Trend),
		assessment.FirstRun,
		assessment.SignalScore(model.SignalNews),
		assessment.SignalScore(model.SignalConflict),
		assessment.SignalScore(model.SignalEconomic),
		assessment.SignalScore(model.SignalGovernment),
		assessment.ConfidenceScore,
		string(assessment.ConfidenceLevel),
		encodeJSON(assessment.Signals),
		encodeJSON(assessment.Confidence),
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, a := range alerts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO alert_events (id, assessment_id, country_code, alert_type, severity, title, description,
				risk_score, previous_score, confidence_score, change_percentage, primary_driver, evidence_json, triggered_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID,
			assessment.ID,
			a.CountryCode,
			string(a.AlertType),
			string(a.Severity),
			a.Title,
			a.Description,
			a.RiskScore,
			a.PreviousScore,
			a.ConfidenceScore,
			a.ChangePercentage,
			a.PrimaryDriver,
			encodeJSON(a.Evidence),
			a.TriggeredAt.UTC(),
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

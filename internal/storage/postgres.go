package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"riskwatch/internal/model"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/riskwatch?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			country_code TEXT NOT NULL,
			calculated_at TIMESTAMPTZ NOT NULL,
			overall_score DOUBLE PRECISION NOT NULL,
			risk_level TEXT NOT NULL,
			trend TEXT NOT NULL,
			first_run BOOLEAN NOT NULL DEFAULT FALSE,
			news_score DOUBLE PRECISION NOT NULL,
			conflict_score DOUBLE PRECISION NOT NULL,
			economic_score DOUBLE PRECISION NOT NULL,
			government_score DOUBLE PRECISION NOT NULL,
			confidence_score DOUBLE PRECISION NOT NULL,
			confidence_level TEXT NOT NULL,
			signals_json JSONB NOT NULL,
			confidence_json JSONB NOT NULL
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
			risk_score DOUBLE PRECISION NOT NULL,
			previous_score DOUBLE PRECISION NOT NULL,
			confidence_score DOUBLE PRECISION NOT NULL,
			change_percentage DOUBLE PRECISION NOT NULL,
			primary_driver TEXT,
			evidence_json JSONB,
			triggered_at TIMESTAMPTZ NOT NULL
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

func (s *postgresStore) SaveAssessment(ctx context.Context, assessment model.RiskAssessment, alerts []model.AlertEvent) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
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
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
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

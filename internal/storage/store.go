package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"riskwatch/internal/config"
	"riskwatch/internal/model"
)

// Store persists assessments and their alerts. SaveAssessment writes the
// assessment and every alert it triggered in a single transaction, so a
// country's run is either fully recorded or not at all.
type Store interface {
	Init(ctx context.Context) error
	Close() error
	SaveAssessment(ctx context.Context, assessment model.RiskAssessment, alerts []model.AlertEvent) error
}

func NewStore(cfg config.StorageConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

type baseStore struct {
	db *sql.DB
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func encodeJSON(value any) string {
	data, _ := json.Marshal(value)
	return string(data)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateWeightsMustSumToOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring.Weights.Conflict = 0.5
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected weight sum error")
	}
}

func TestValidateConfidenceWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring.Confidence.Freshness = 0.9
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected confidence weight sum error")
	}
}

func TestValidateThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Alerts.SuddenSpikeWindow = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected window error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "riskwatch.yaml")

	cfg := DefaultConfig()
	cfg.Scoring.TrendDelta = 3.5
	cfg.Alerts.RiskIncreasePct = 20
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Scoring.TrendDelta != 3.5 {
		t.Fatalf("trend delta lost: %v", loaded.Scoring.TrendDelta)
	}
	if loaded.Alerts.RiskIncreasePct != 20 {
		t.Fatalf("threshold lost: %v", loaded.Alerts.RiskIncreasePct)
	}
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "riskwatch.json")
	data := `{"log_level": "debug", "scoring": {"trend_delta": 4}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level lost: %q", cfg.LogLevel)
	}
	if cfg.Scoring.TrendDelta != 4 {
		t.Fatalf("trend delta lost: %v", cfg.Scoring.TrendDelta)
	}
	// unset fields fall back to defaults
	if cfg.Alerts.RiskIncreasePct != 15 {
		t.Fatalf("defaults not applied: %v", cfg.Alerts.RiskIncreasePct)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RISKWATCH_LOG_LEVEL", "warn")
	dir := t.TempDir()
	path := filepath.Join(dir, "riskwatch.yaml")
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatalf("save: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("env override ignored: %q", cfg.LogLevel)
	}
}

func TestManagerReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "riskwatch.yaml")
	cfg := DefaultConfig()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	if m.Get().Scoring.TrendDelta != 2 {
		t.Fatalf("unexpected initial delta: %v", m.Get().Scoring.TrendDelta)
	}

	cfg.Scoring.TrendDelta = 5
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save updated: %v", err)
	}
	updated, err := m.Reload()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if updated.Scoring.TrendDelta != 5 {
		t.Fatalf("reload did not pick up change: %v", updated.Scoring.TrendDelta)
	}
}

func TestStaticManager(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	m := NewStaticManager(cfg)
	if m.Get().LogLevel != "debug" {
		t.Fatalf("static manager lost config")
	}
}

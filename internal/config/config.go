package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string        `json:"log_level" yaml:"log_level"`
	Ingest   IngestConfig  `json:"ingest" yaml:"ingest"`
	Scoring  ScoringConfig `json:"scoring" yaml:"scoring"`
	Alerts   AlertsConfig  `json:"alerts" yaml:"alerts"`
	History  HistoryConfig `json:"history" yaml:"history"`
	API      APIConfig     `json:"api" yaml:"api"`
	Storage  StorageConfig `json:"storage" yaml:"storage"`
	Cache    CacheConfig   `json:"cache" yaml:"cache"`
	Catalog  CatalogConfig `json:"catalog" yaml:"catalog"`
}

type IngestConfig struct {
	ChannelBuffer int            `json:"channel_buffer" yaml:"channel_buffer"`
	REST          RESTConfig     `json:"rest" yaml:"rest"`
	File          FileConfig     `json:"file" yaml:"file"`
	Kafka         KafkaConfig    `json:"kafka" yaml:"kafka"`
	Envelope      EnvelopeConfig `json:"envelope" yaml:"envelope"`
}

type RESTConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type FileConfig struct {
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	StartAtEnd bool     `json:"start_at_end" yaml:"start_at_end"`
	Files      []string `json:"files" yaml:"files"`
}

type KafkaConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
	GroupID string   `json:"group_id" yaml:"group_id"`
}

type EnvelopeConfig struct {
	Timezone           string `json:"timezone" yaml:"timezone"`
	DefaultCountryCode string `json:"default_country_code" yaml:"default_country_code"`
}

// SignalWeights is the immutable weight set handed to the aggregator. The
// four weights must sum to exactly 1.0.
type SignalWeights struct {
	News       float64 `json:"news" yaml:"news"`
	Conflict   float64 `json:"conflict" yaml:"conflict"`
	Economic   float64 `json:"economic" yaml:"economic"`
	Government float64 `json:"government" yaml:"government"`
}

func (w SignalWeights) Sum() float64 {
	return w.News + w.Conflict + w.Economic + w.Government
}

type ConfidenceWeights struct {
	SourceCount          float64 `json:"source_count" yaml:"source_count"`
	Freshness            float64 `json:"freshness" yaml:"freshness"`
	Consistency          float64 `json:"consistency" yaml:"consistency"`
	HistoricalValidation float64 `json:"historical_validation" yaml:"historical_validation"`
}

func (w ConfidenceWeights) Sum() float64 {
	return w.SourceCount + w.Freshness + w.Consistency + w.HistoricalValidation
}

type ScoringConfig struct {
	Weights            SignalWeights     `json:"weights" yaml:"weights"`
	Confidence         ConfidenceWeights `json:"confidence" yaml:"confidence"`
	NewsWindow         time.Duration     `json:"news_window" yaml:"news_window"`
	ConflictWindow     time.Duration     `json:"conflict_window" yaml:"conflict_window"`
	GovernmentWindow   time.Duration     `json:"government_window" yaml:"government_window"`
	NegativeSentiment  float64           `json:"negative_sentiment" yaml:"negative_sentiment"`
	HistoryDepth       int               `json:"history_depth" yaml:"history_depth"`
	TrendDelta         float64           `json:"trend_delta" yaml:"trend_delta"`
	ConsistencyStdSpan float64           `json:"consistency_std_span" yaml:"consistency_std_span"`
}

type AlertsConfig struct {
	RiskIncreasePct    float64       `json:"risk_increase_pct" yaml:"risk_increase_pct"`
	SuddenSpikePct     float64       `json:"sudden_spike_pct" yaml:"sudden_spike_pct"`
	SuddenSpikeWindow  time.Duration `json:"sudden_spike_window" yaml:"sudden_spike_window"`
	SustainedHighScore float64       `json:"sustained_high_score" yaml:"sustained_high_score"`
	SustainedWindow    time.Duration `json:"sustained_window" yaml:"sustained_window"`
	RapidEscalationPct float64       `json:"rapid_escalation_pct" yaml:"rapid_escalation_pct"`
	RapidWindow        time.Duration `json:"rapid_window" yaml:"rapid_window"`
	DedupWindow        time.Duration `json:"dedup_window" yaml:"dedup_window"`
	StoreLimit         int           `json:"store_limit" yaml:"store_limit"`
}

type HistoryConfig struct {
	StoreLimit int `json:"store_limit" yaml:"store_limit"`
}

type APIConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

type CacheConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	RedisURL string        `json:"redis_url" yaml:"redis_url"`
	TTL      time.Duration `json:"ttl" yaml:"ttl"`
}

type CatalogConfig struct {
	Path string `json:"path" yaml:"path"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Ingest: IngestConfig{
			ChannelBuffer: 1000,
			REST:          RESTConfig{Enabled: true, Addr: ":8080"},
			File:          FileConfig{Enabled: false, StartAtEnd: true},
			Kafka:         KafkaConfig{Enabled: false},
			Envelope:      EnvelopeConfig{Timezone: "UTC"},
		},
		Scoring: ScoringConfig{
			Weights: SignalWeights{
				News:       0.20,
				Conflict:   0.40,
				Economic:   0.30,
				Government: 0.10,
			},
			Confidence: ConfidenceWeights{
				SourceCount:          0.30,
				Freshness:            0.25,
				Consistency:          0.25,
				HistoricalValidation: 0.20,
			},
			NewsWindow:         7 * 24 * time.Hour,
			ConflictWindow:     30 * 24 * time.Hour,
			GovernmentWindow:   30 * 24 * time.Hour,
			NegativeSentiment:  -0.3,
			HistoryDepth:       5,
			TrendDelta:         2.0,
			ConsistencyStdSpan: 30.0,
		},
		Alerts: AlertsConfig{
			RiskIncreasePct:    15,
			SuddenSpikePct:     30,
			SuddenSpikeWindow:  24 * time.Hour,
			SustainedHighScore: 70,
			SustainedWindow:    48 * time.Hour,
			RapidEscalationPct: 50,
			RapidWindow:        6 * time.Hour,
			DedupWindow:        24 * time.Hour,
			StoreLimit:         1000,
		},
		History: HistoryConfig{StoreLimit: 500},
		API:     APIConfig{Enabled: true, Addr: ":8081"},
		Storage: StorageConfig{Enabled: false, Driver: "sqlite", DSN: "file:riskwatch.db?_pragma=busy_timeout(5000)"},
		Cache:   CacheConfig{Enabled: false, RedisURL: "redis://localhost:6379", TTL: 5 * time.Minute},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Ingest.ChannelBuffer <= 0 {
		cfg.Ingest.ChannelBuffer = def.Ingest.ChannelBuffer
	}
	if cfg.Ingest.Envelope.Timezone == "" {
		cfg.Ingest.Envelope.Timezone = "UTC"
	}
	if cfg.Scoring.NewsWindow <= 0 {
		cfg.Scoring.NewsWindow = def.Scoring.NewsWindow
	}
	if cfg.Scoring.ConflictWindow <= 0 {
		cfg.Scoring.ConflictWindow = def.Scoring.ConflictWindow
	}
	if cfg.Scoring.GovernmentWindow <= 0 {
		cfg.Scoring.GovernmentWindow = def.Scoring.GovernmentWindow
	}
	if cfg.Scoring.HistoryDepth <= 0 {
		cfg.Scoring.HistoryDepth = def.Scoring.HistoryDepth
	}
	if cfg.Scoring.TrendDelta <= 0 {
		cfg.Scoring.TrendDelta = def.Scoring.TrendDelta
	}
	if cfg.Scoring.ConsistencyStdSpan <= 0 {
		cfg.Scoring.ConsistencyStdSpan = def.Scoring.ConsistencyStdSpan
	}
	if cfg.Alerts.StoreLimit <= 0 {
		cfg.Alerts.StoreLimit = def.Alerts.StoreLimit
	}
	if cfg.Alerts.DedupWindow <= 0 {
		cfg.Alerts.DedupWindow = def.Alerts.DedupWindow
	}
	if cfg.History.StoreLimit <= 0 {
		cfg.History.StoreLimit = def.History.StoreLimit
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = def.Cache.TTL
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RISKWATCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("RISKWATCH_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("RISKWATCH_REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
}

const weightEpsilon = 1e-9

func Validate(cfg *Config) error {
	if sum := cfg.Scoring.Weights.Sum(); math.Abs(sum-1.0) > weightEpsilon {
		return fmt.Errorf("scoring.weights must sum to 1.0, got %v", sum)
	}
	if sum := cfg.Scoring.Confidence.Sum(); math.Abs(sum-1.0) > weightEpsilon {
		return fmt.Errorf("scoring.confidence weights must sum to 1.0, got %v", sum)
	}
	for _, w := range []float64{
		cfg.Scoring.Weights.News, cfg.Scoring.Weights.Conflict,
		cfg.Scoring.Weights.Economic, cfg.Scoring.Weights.Government,
	} {
		if w < 0 {
			return errors.New("scoring.weights must be non-negative")
		}
	}
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr required when api.enabled is true")
	}
	if cfg.Ingest.REST.Enabled && cfg.Ingest.REST.Addr == "" {
		return errors.New("ingest.rest.addr required when ingest.rest.enabled is true")
	}
	if cfg.Ingest.File.Enabled && len(cfg.Ingest.File.Files) == 0 {
		return errors.New("ingest.file.files required when ingest.file.enabled is true")
	}
	if cfg.Ingest.Kafka.Enabled {
		if len(cfg.Ingest.Kafka.Brokers) == 0 || cfg.Ingest.Kafka.Topic == "" || cfg.Ingest.Kafka.GroupID == "" {
			return errors.New("ingest.kafka requires brokers, topic, group_id")
		}
	}
	if cfg.Alerts.RiskIncreasePct <= 0 || cfg.Alerts.SuddenSpikePct <= 0 || cfg.Alerts.RapidEscalationPct <= 0 {
		return errors.New("alert change thresholds must be > 0")
	}
	if cfg.Alerts.SustainedHighScore <= 0 || cfg.Alerts.SustainedHighScore > 100 {
		return errors.New("alerts.sustained_high_score must be in (0,100]")
	}
	for _, win := range []time.Duration{
		cfg.Alerts.SuddenSpikeWindow, cfg.Alerts.SustainedWindow,
		cfg.Alerts.RapidWindow, cfg.Alerts.DedupWindow,
		cfg.Scoring.NewsWindow, cfg.Scoring.ConflictWindow, cfg.Scoring.GovernmentWindow,
	} {
		if win <= 0 {
			return fmt.Errorf("non-positive duration in config: %s", win)
		}
	}
	return nil
}

type Manager struct {
	path    string
	cfg     atomic.Value
	modTime time.Time
}

func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	m := &Manager{path: path}
	m.cfg.Store(cfg)
	info, err := os.Stat(path)
	if err == nil {
		m.modTime = info.ModTime()
	}
	return m, nil
}

// NewStaticManager wraps a fixed config with no backing file, for tests and
// embedded use.
func NewStaticManager(cfg *Config) *Manager {
	m := &Manager{}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m.cfg.Store(cfg)
	return m
}

func (m *Manager) Get() *Config {
	if v := m.cfg.Load(); v != nil {
		return v.(*Config)
	}
	return DefaultConfig()
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) Reload() (*Config, error) {
	if m.path == "" {
		return m.Get(), nil
	}
	cfg, err := Load(m.path)
	if err != nil {
		return nil, err
	}
	m.cfg.Store(cfg)
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return cfg, nil
}

func (m *Manager) NeedsReload() (bool, error) {
	if m.path == "" {
		return false, nil
	}
	info, err := os.Stat(m.path)
	if err != nil {
		return false, err
	}
	return info.ModTime().After(m.modTime), nil
}

func (m *Manager) Watch(interval time.Duration, onReload func(*Config), onError func(error), stop <-chan struct{}) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			needs, err := m.NeedsReload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if !needs {
				continue
			}
			cfg, err := m.Reload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if onReload != nil {
				onReload(cfg)
			}
		case <-stop:
			return
		}
	}
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}

// Package engine orchestrates one country evaluation per evidence set:
// signal calculators, aggregation, confidence scoring, then alert detection,
// feeding the history and alert stores and optional persistence.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"riskwatch/internal/alert"
	"riskwatch/internal/alerts"
	"riskwatch/internal/cache"
	"riskwatch/internal/config"
	"riskwatch/internal/history"
	"riskwatch/internal/model"
	"riskwatch/internal/risk"
	"riskwatch/internal/signal"
	"riskwatch/internal/storage"
)

type Engine struct {
	logger  *slog.Logger
	history *history.Store
	alerts  *alerts.Store
	store   storage.Store
	cache   cache.Cache
	cfg     atomic.Value
}

func NewEngine(cfg *config.Config, logger *slog.Logger, historyStore *history.Store, alertsStore *alerts.Store, store storage.Store, cacheStore cache.Cache) *Engine {
	e := &Engine{
		logger:  logger,
		history: historyStore,
		alerts:  alertsStore,
		store:   store,
		cache:   cacheStore,
	}
	e.cfg.Store(cfg)
	return e
}

func (e *Engine) UpdateConfig(cfg *config.Config) {
	e.cfg.Store(cfg)
}

func (e *Engine) config() *config.Config {
	if v := e.cfg.Load(); v != nil {
		return v.(*config.Config)
	}
	return config.DefaultConfig()
}

func (e *Engine) Start(ctx context.Context, in <-chan model.EvidenceSet) {
	go func() {
		for {
			select {
			case ev := <-in:
				e.ProcessEvidence(ctx, ev)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// ProcessEvidence runs one full evaluation for a country and records the
// outcome. Scoring itself is the pure Evaluate; everything stateful happens
// here.
func (e *Engine) ProcessEvidence(ctx context.Context, ev model.EvidenceSet) (model.RiskAssessment, []model.AlertEvent) {
	cfg := e.config()
	now := time.Now().UTC()

	hist := e.history.Recent(ev.CountryCode, 0)
	recent := e.alerts.RecentFor(ev.CountryCode, now.Add(-cfg.Alerts.DedupWindow))

	assessment, alertsOut := Evaluate(ev, hist, recent, now, cfg)

	e.history.Add(assessment)
	for _, a := range alertsOut {
		e.alerts.Add(a)
		if e.logger != nil {
			e.logger.Warn("alert triggered",
				"country", a.CountryCode,
				"alert_type", a.AlertType,
				"severity", a.Severity,
				"change_pct", a.ChangePercentage,
				"driver", a.PrimaryDriver,
			)
		}
	}
	if e.logger != nil {
		e.logger.Info("assessment calculated",
			"country", assessment.CountryCode,
			"score", assessment.OverallScore,
			"risk_level", assessment.RiskLevel,
			"trend", assessment.Trend,
			"confidence", assessment.ConfidenceScore,
			"alerts", len(alertsOut),
		)
	}

	if e.store != nil {
		if err := e.store.SaveAssessment(ctx, assessment, alertsOut); err != nil && e.logger != nil {
			e.logger.Error("persist assessment failed", "country", assessment.CountryCode, "err", err)
		}
	}
	if e.cache != nil {
		if data, err := cache.Marshal(assessment); err == nil {
			_ = e.cache.Set(ctx, cache.AssessmentKey(assessment.CountryCode), data, cfg.Cache.TTL)
		}
	}
	return assessment, alertsOut
}

func (e *Engine) Reset() {
	e.history.Clear()
	e.alerts.Clear()
}

// Evaluate is the deterministic core: identical evidence, history, recent
// alerts, and now produce an identical assessment. It reads no clock and
// performs no I/O.
func Evaluate(ev model.EvidenceSet, hist []model.RiskAssessment, recentAlerts []model.AlertEvent, now time.Time, cfg *config.Config) (model.RiskAssessment, []model.AlertEvent) {
	sc := cfg.Scoring

	signals := map[model.SignalType]model.SignalResult{
		model.SignalNews:       signal.News(ev.News, sc.NegativeSentiment),
		model.SignalConflict:   signal.Conflict(ev.Conflict, now, sc.ConflictWindow),
		model.SignalEconomic:   signal.Economic(ev.Economic),
		model.SignalGovernment: signal.Government(ev.Government),
	}
	risk.StampWeights(signals, sc.Weights)

	var previous *model.RiskAssessment
	if len(hist) > 0 {
		previous = &hist[len(hist)-1]
	}
	overall, level, trend, firstRun := risk.Aggregate(signals, sc.Weights, previous, sc.TrendDelta)
	confScore, confLevel, breakdown := risk.Confidence(signals, overall, hist, now, sc)

	assessment := model.RiskAssessment{
		ID:              uuid.NewString(),
		CountryCode:     ev.CountryCode,
		OverallScore:    overall,
		RiskLevel:       level,
		Trend:           trend,
		FirstRun:        firstRun,
		Signals:         signals,
		ConfidenceScore: confScore,
		ConfidenceLevel: confLevel,
		Confidence:      breakdown,
		CalculatedAt:    now,
	}

	alertsOut := alert.Detect(alert.Input{
		Assessment:   assessment,
		History:      hist,
		RecentAlerts: recentAlerts,
		Now:          now,
	}, cfg.Alerts)

	return assessment, alertsOut
}

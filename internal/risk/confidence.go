package risk

import (
	"math"
	"time"

	"riskwatch/internal/config"
	"riskwatch/internal/model"
)

// Economic series are annual; freshness judges them against a year, not the
// news/conflict windows.
const economicFreshnessWindow = 365 * 24 * time.Hour

const neutralComponent = 50.0

// Confidence grades the trustworthiness of an assessment from four weighted
// components. It is independent of the risk score's magnitude: a critical
// score built on thin, stale evidence grades low, and a minimal score built
// on rich, fresh evidence grades high.
func Confidence(
	signals map[model.SignalType]model.SignalResult,
	currentScore float64,
	history []model.RiskAssessment,
	now time.Time,
	cfg config.ScoringConfig,
) (float64, model.ConfidenceLevel, model.ConfidenceBreakdown) {
	breakdown := model.ConfidenceBreakdown{
		SourceCount:          sourceCount(signals),
		Freshness:            freshness(signals, now, cfg),
		Consistency:          consistency(signals, cfg.ConsistencyStdSpan),
		HistoricalValidation: neutralComponent,
	}

	depth := cfg.HistoryDepth
	if depth <= 0 {
		depth = 5
	}
	if len(history) >= 2 {
		breakdown.HistoricalValidation = historicalValidation(currentScore, history, depth)
	} else {
		breakdown.InsufficientHistory = true
	}

	w := cfg.Confidence
	total := breakdown.SourceCount*w.SourceCount +
		breakdown.Freshness*w.Freshness +
		breakdown.Consistency*w.Consistency +
		breakdown.HistoricalValidation*w.HistoricalValidation
	total = round2(clamp(total, 0, 100))
	return total, ConfidenceLevel(total), breakdown
}

func ConfidenceLevel(score float64) model.ConfidenceLevel {
	switch {
	case score >= 90:
		return model.ConfidenceVeryHigh
	case score >= 75:
		return model.ConfidenceHigh
	case score >= 60:
		return model.ConfidenceMedium
	case score >= 40:
		return model.ConfidenceLow
	default:
		return model.ConfidenceVeryLow
	}
}

// sourceCount is the share of the four signal types with non-empty evidence.
func sourceCount(signals map[model.SignalType]model.SignalResult) float64 {
	activeCount := 0
	for _, s := range signals {
		if s.Active() {
			activeCount++
		}
	}
	return round2(float64(activeCount) / 4.0 * 100)
}

// freshness compares the newest evidence item of each active signal against
// that signal's expected window: brand-new data scores 100, data at the
// window edge scores 0. An active signal with no usable timestamp counts as
// neutral rather than stale.
func freshness(signals map[model.SignalType]model.SignalResult, now time.Time, cfg config.ScoringConfig) float64 {
	var sum float64
	var n int
	for t, s := range signals {
		if !s.Active() {
			continue
		}
		n++
		if s.NewestItem.IsZero() {
			sum += neutralComponent
			continue
		}
		window := signalWindow(t, cfg)
		age := now.Sub(s.NewestItem)
		if age < 0 {
			age = 0
		}
		frac := 1 - age.Seconds()/window.Seconds()
		sum += clamp(frac, 0, 1) * 100
	}
	if n == 0 {
		return 0
	}
	return round2(sum / float64(n))
}

func signalWindow(t model.SignalType, cfg config.ScoringConfig) time.Duration {
	switch t {
	case model.SignalNews:
		return cfg.NewsWindow
	case model.SignalConflict:
		return cfg.ConflictWindow
	case model.SignalGovernment:
		return cfg.GovernmentWindow
	default:
		return economicFreshnessWindow
	}
}

// consistency rewards agreement among active sub-scores: a standard
// deviation of zero scores 100 and stdSpan (or more) scores 0. Fewer than
// two active signals cannot be judged and fall back to neutral.
func consistency(signals map[model.SignalType]model.SignalResult, stdSpan float64) float64 {
	scores := make([]float64, 0, len(signals))
	for _, s := range signals {
		if s.Active() {
			scores = append(scores, s.Score)
		}
	}
	if len(scores) < 2 {
		return neutralComponent
	}
	if stdSpan <= 0 {
		stdSpan = 30
	}
	sd := stdDev(scores)
	penalty := sd / stdSpan * 100
	if penalty > 100 {
		penalty = 100
	}
	return round2(100 - penalty)
}

// historicalValidation measures how far the current score sits from the
// recent trailing mean; unexplained jumps erode confidence two points per
// point of deviation.
func historicalValidation(current float64, history []model.RiskAssessment, depth int) float64 {
	start := len(history) - depth
	if start < 0 {
		start = 0
	}
	recent := history[start:]
	var sum float64
	for _, a := range recent {
		sum += a.OverallScore
	}
	mean := sum / float64(len(recent))
	deviation := math.Abs(current - mean)
	return round2(clamp(100-deviation*2, 0, 100))
}

func stdDev(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	// sample standard deviation, matching the upstream statistics convention
	return math.Sqrt(sq / float64(len(values)-1))
}

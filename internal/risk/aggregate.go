// Package risk combines scored signals into an overall assessment and
// independently grades how trustworthy that assessment is.
package risk

import (
	"math"

	"riskwatch/internal/config"
	"riskwatch/internal/model"
)

// Aggregate blends the four signal scores with the supplied weight set and
// classifies the result. The previous assessment, when present, drives the
// trend label; without one the assessment is marked as a first run.
func Aggregate(signals map[model.SignalType]model.SignalResult, weights config.SignalWeights, previous *model.RiskAssessment, trendDelta float64) (float64, model.RiskLevel, model.Trend, bool) {
	overall := score(signals, model.SignalNews)*weights.News +
		score(signals, model.SignalConflict)*weights.Conflict +
		score(signals, model.SignalEconomic)*weights.Economic +
		score(signals, model.SignalGovernment)*weights.Government
	overall = round2(clamp(overall, 0, 100))

	trend := model.TrendStable
	firstRun := previous == nil
	if previous != nil {
		delta := overall - previous.OverallScore
		switch {
		case delta > trendDelta:
			trend = model.TrendIncreasing
		case delta < -trendDelta:
			trend = model.TrendDecreasing
		}
	}
	return overall, Level(overall), trend, firstRun
}

// Level maps a 0-100 score onto the fixed risk bands.
func Level(score float64) model.RiskLevel {
	switch {
	case score >= 75:
		return model.RiskCritical
	case score >= 60:
		return model.RiskHigh
	case score >= 40:
		return model.RiskMedium
	case score >= 20:
		return model.RiskLow
	default:
		return model.RiskMinimal
	}
}

// StampWeights copies the aggregation weight onto each signal result so the
// assessment is self-describing.
func StampWeights(signals map[model.SignalType]model.SignalResult, weights config.SignalWeights) {
	for t, s := range signals {
		switch t {
		case model.SignalNews:
			s.Weight = weights.News
		case model.SignalConflict:
			s.Weight = weights.Conflict
		case model.SignalEconomic:
			s.Weight = weights.Economic
		case model.SignalGovernment:
			s.Weight = weights.Government
		}
		signals[t] = s
	}
}

func score(signals map[model.SignalType]model.SignalResult, t model.SignalType) float64 {
	if s, ok := signals[t]; ok {
		return s.Score
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package alert evaluates threshold rules over a score history and emits
// deduplicated alert events. Detection is a pure function of the current
// assessment, the caller-supplied history, the recent-alert list, and the
// supplied now; it performs no I/O.
package alert

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"riskwatch/internal/config"
	"riskwatch/internal/model"
)

// Input is everything one detection pass needs. History is ordered
// most-recent-last and excludes the current assessment.
type Input struct {
	Assessment   model.RiskAssessment
	History      []model.RiskAssessment
	RecentAlerts []model.AlertEvent
	Now          time.Time
}

// Detect runs the four threshold rules. A rule whose reference point is
// missing from the history is skipped silently; a rule whose alert type
// already fired for this country inside the dedup window is suppressed.
func Detect(in Input, cfg config.AlertsConfig) []model.AlertEvent {
	out := make([]model.AlertEvent, 0, 4)
	if a, ok := checkRiskIncrease(in, cfg); ok {
		out = append(out, a)
	}
	if a, ok := checkSuddenSpike(in, cfg); ok {
		out = append(out, a)
	}
	if a, ok := checkSustainedHigh(in, cfg); ok {
		out = append(out, a)
	}
	if a, ok := checkRapidEscalation(in, cfg); ok {
		out = append(out, a)
	}

	kept := out[:0]
	for _, a := range out {
		if !suppressed(in.RecentAlerts, a.CountryCode, a.AlertType, in.Now, cfg.DedupWindow) {
			kept = append(kept, a)
		}
	}
	return kept
}

func checkRiskIncrease(in Input, cfg config.AlertsConfig) (model.AlertEvent, bool) {
	if len(in.History) == 0 {
		return model.AlertEvent{}, false
	}
	previous := in.History[len(in.History)-1]
	pct, ok := changePct(in.Assessment.OverallScore, previous.OverallScore)
	if !ok || pct <= cfg.RiskIncreasePct {
		return model.AlertEvent{}, false
	}
	severity := model.SeverityMedium
	switch {
	case pct >= 40:
		severity = model.SeverityCritical
	case pct >= 25:
		severity = model.SeverityHigh
	}
	a := newAlert(in, model.AlertRiskIncrease, severity, previous, pct)
	a.Title = fmt.Sprintf("Risk increase: %s", in.Assessment.CountryCode)
	a.Description = fmt.Sprintf("Risk score increased by %.1f%% from %.1f to %.1f",
		pct, previous.OverallScore, in.Assessment.OverallScore)
	return a, true
}

func checkSuddenSpike(in Input, cfg config.AlertsConfig) (model.AlertEvent, bool) {
	reference, ok := referenceWithin(in.History, in.Now, cfg.SuddenSpikeWindow)
	if !ok {
		return model.AlertEvent{}, false
	}
	pct, ok := changePct(in.Assessment.OverallScore, reference.OverallScore)
	if !ok || pct <= cfg.SuddenSpikePct {
		return model.AlertEvent{}, false
	}
	a := newAlert(in, model.AlertSuddenSpike, model.SeverityCritical, reference, pct)
	a.Title = fmt.Sprintf("Sudden spike: %s risk up %.0f%% in %s",
		in.Assessment.CountryCode, pct, cfg.SuddenSpikeWindow)
	a.Description = fmt.Sprintf("Risk jumped from %.1f to %.1f within %s. Primary driver: %s",
		reference.OverallScore, in.Assessment.OverallScore, cfg.SuddenSpikeWindow, a.PrimaryDriver)
	return a, true
}

func checkSustainedHigh(in Input, cfg config.AlertsConfig) (model.AlertEvent, bool) {
	current := in.Assessment.OverallScore
	if current <= cfg.SustainedHighScore {
		return model.AlertEvent{}, false
	}
	cutoff := in.Now.Add(-cfg.SustainedWindow)
	window := make([]model.RiskAssessment, 0, len(in.History))
	for _, h := range in.History {
		if !h.CalculatedAt.Before(cutoff) {
			window = append(window, h)
		}
	}
	// the current assessment is the newest point in the window
	if len(window)+1 < 2 {
		return model.AlertEvent{}, false
	}
	var sum float64
	for _, h := range window {
		if h.OverallScore <= cfg.SustainedHighScore {
			return model.AlertEvent{}, false
		}
		sum += h.OverallScore
	}
	oldest := window[0]
	durationHours := in.Now.Sub(oldest.CalculatedAt).Hours()
	avg := (sum + current) / float64(len(window)+1)

	a := newAlert(in, model.AlertSustainedHigh, model.SeverityCritical, oldest, 0)
	a.Title = fmt.Sprintf("Sustained high risk: %s", in.Assessment.CountryCode)
	a.Description = fmt.Sprintf("Risk has remained above %.0f for %.1f hours (avg %.1f)",
		cfg.SustainedHighScore, durationHours, avg)
	a.Evidence["duration_hours"] = round2(durationHours)
	a.Evidence["avg_score"] = round2(avg)
	a.Evidence["point_count"] = float64(len(window) + 1)
	return a, true
}

func checkRapidEscalation(in Input, cfg config.AlertsConfig) (model.AlertEvent, bool) {
	reference, ok := referenceWithin(in.History, in.Now, cfg.RapidWindow)
	if !ok {
		return model.AlertEvent{}, false
	}
	pct, ok := changePct(in.Assessment.OverallScore, reference.OverallScore)
	if !ok || pct <= cfg.RapidEscalationPct {
		return model.AlertEvent{}, false
	}
	a := newAlert(in, model.AlertRapidEscalation, model.SeverityCritical, reference, pct)
	a.Title = fmt.Sprintf("Rapid escalation: %s", in.Assessment.CountryCode)
	a.Description = fmt.Sprintf("Risk escalated %.0f%% in %s (%.1f to %.1f). Driver: %s",
		pct, cfg.RapidWindow, reference.OverallScore, in.Assessment.OverallScore, a.PrimaryDriver)
	return a, true
}

func newAlert(in Input, alertType model.AlertType, severity model.Severity, reference model.RiskAssessment, pct float64) model.AlertEvent {
	evidence := map[string]float64{
		"current_score":   in.Assessment.OverallScore,
		"reference_score": reference.OverallScore,
	}
	for t, s := range in.Assessment.Signals {
		evidence["signal_"+string(t)] = s.Score
	}
	return model.AlertEvent{
		ID:               uuid.NewString(),
		CountryCode:      in.Assessment.CountryCode,
		AlertType:        alertType,
		Severity:         severity,
		RiskScore:        in.Assessment.OverallScore,
		PreviousScore:    reference.OverallScore,
		ConfidenceScore:  in.Assessment.ConfidenceScore,
		ChangePercentage: round2(pct),
		PrimaryDriver:    primaryDriver(in.Assessment, reference),
		Evidence:         evidence,
		TriggeredAt:      in.Now,
	}
}

// changePct is the percentage change against a reference score. A
// non-positive reference cannot express a percentage and skips the rule.
func changePct(current, reference float64) (float64, bool) {
	if reference <= 0 {
		return 0, false
	}
	return (current - reference) / reference * 100, true
}

// referenceWithin picks the most recent history point inside the trailing
// window.
func referenceWithin(history []model.RiskAssessment, now time.Time, window time.Duration) (model.RiskAssessment, bool) {
	cutoff := now.Add(-window)
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		if h.CalculatedAt.Before(now) && !h.CalculatedAt.Before(cutoff) {
			return h, true
		}
	}
	return model.RiskAssessment{}, false
}

var driverOrder = []struct {
	signal model.SignalType
	name   string
}{
	{model.SignalNews, "News"},
	{model.SignalConflict, "Conflict"},
	{model.SignalEconomic, "Economic"},
	{model.SignalGovernment, "Government"},
}

// primaryDriver names the signal with the largest positive score delta since
// the reference assessment. Iteration order is fixed so ties resolve the
// same way on every run.
func primaryDriver(current, reference model.RiskAssessment) string {
	best := ""
	bestDelta := 0.0
	bestPct := 0.0
	for _, d := range driverOrder {
		t, name := d.signal, d.name
		delta := current.SignalScore(t) - reference.SignalScore(t)
		if delta <= bestDelta {
			continue
		}
		denom := reference.SignalScore(t)
		if denom < 1 {
			denom = 1
		}
		best = name
		bestDelta = delta
		bestPct = delta / denom * 100
	}
	if best == "" {
		return "Multiple factors"
	}
	return fmt.Sprintf("%s (escalating %.0f%%)", best, bestPct)
}

func suppressed(recent []model.AlertEvent, country string, alertType model.AlertType, now time.Time, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	cutoff := now.Add(-window)
	for _, a := range recent {
		if a.CountryCode == country && a.AlertType == alertType && !a.TriggeredAt.Before(cutoff) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package signal

import (
	"time"

	"riskwatch/internal/model"
)

// Conflict scores a trailing window of conflict events from four parts:
// event frequency (0-40), fatality-adjusted type severity (0-35), total
// fatalities (0-20), and an escalation bonus (0-5) when the second half of
// the window outpaces the first.
func Conflict(events []model.ConflictEvent, now time.Time, window time.Duration) model.SignalResult {
	if len(events) == 0 {
		return absent(model.SignalConflict, AbsentNoEvents)
	}

	eventCount := len(events)
	totalFatalities := 0
	highCasualty := 0
	severitySum := 0.0
	newestItem := events[0].OccurredAt

	for _, ev := range events {
		totalFatalities += ev.Fatalities
		severitySum += ev.SeverityWeight * casualtyMultiplier(ev.Fatalities)
		if ev.Fatalities >= 50 {
			highCasualty++
		}
		newestItem = newest(newestItem, ev.OccurredAt)
	}
	avgSeverity := severitySum / float64(eventCount)

	frequencyScore := float64(eventCount) / 15.0 * 40
	if frequencyScore > 40 {
		frequencyScore = 40
	}
	severityScore := avgSeverity / 15.0 * 35
	fatalityScore := float64(totalFatalities) / 50.0 * 20
	if fatalityScore > 20 {
		fatalityScore = 20
	}

	escalationRate := escalation(events, now, window)
	escalationBonus := clamp(escalationRate/100.0*5, 0, 5)

	detail := map[string]float64{
		"event_count":          float64(eventCount),
		"total_fatalities":     float64(totalFatalities),
		"high_casualty_events": float64(highCasualty),
		"avg_severity":         round2(avgSeverity),
		"escalation_rate":      round2(escalationRate),
		"frequency_score":      round2(frequencyScore),
		"severity_score":       round2(severityScore),
		"fatality_score":       round2(fatalityScore),
		"escalation_bonus":     round2(escalationBonus),
	}
	total := frequencyScore + severityScore + fatalityScore + escalationBonus
	return active(model.SignalConflict, total, detail, newestItem)
}

func casualtyMultiplier(fatalities int) float64 {
	switch {
	case fatalities >= 50:
		return 1.5
	case fatalities >= 10:
		return 1.3
	case fatalities > 0:
		return 1.1
	default:
		return 1.0
	}
}

// escalation compares event counts in the two halves of the window, as a
// percentage of the first half. Clamped to -100 so a quiet first half cannot
// produce runaway negatives.
func escalation(events []model.ConflictEvent, now time.Time, window time.Duration) float64 {
	midpoint := now.Add(-window / 2)
	firstHalf := 0
	secondHalf := 0
	for _, ev := range events {
		if ev.OccurredAt.Before(midpoint) {
			firstHalf++
		} else {
			secondHalf++
		}
	}
	denom := firstHalf
	if denom < 1 {
		denom = 1
	}
	rate := float64(secondHalf-firstHalf) / float64(denom) * 100
	if rate < -100 {
		rate = -100
	}
	return rate
}

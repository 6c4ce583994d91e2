// Package signal turns raw evidence sets into scored risk dimensions.
// Each calculator is a pure function of its evidence and the supplied now;
// missing evidence degrades to an absent result, never an error.
package signal

import (
	"math"
	"time"

	"riskwatch/internal/model"
)

const (
	AbsentNoArticles   = "no articles in window"
	AbsentNoEvents     = "no conflict events in window"
	AbsentNoIndicators = "no economic indicators available"
	AbsentNoDocuments  = "no government data"
)

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

func newest(times ...time.Time) time.Time {
	var out time.Time
	for _, t := range times {
		if t.After(out) {
			out = t
		}
	}
	return out
}

func active(t model.SignalType, score float64, detail map[string]float64, newestItem time.Time) model.SignalResult {
	return model.SignalResult{
		Type:       t,
		Status:     model.SignalActive,
		Score:      round2(clamp(score, 0, 100)),
		Detail:     detail,
		NewestItem: newestItem,
	}
}

func absent(t model.SignalType, reason string) model.SignalResult {
	return model.SignalResult{
		Type:         t,
		Status:       model.SignalAbsent,
		AbsentReason: reason,
		Score:        0,
	}
}

package signal

import (
	"riskwatch/internal/model"
)

// Economic maps the latest macro indicators through fixed step tables and
// blends them 40/40/20. A missing indicator is scored at a neutral 50 and
// marked estimated in the detail; the signal is absent only when all three
// are missing.
func Economic(ind model.EconomicIndicators) model.SignalResult {
	if ind.GDPGrowth == nil && ind.Inflation == nil && ind.Unemployment == nil {
		return absent(model.SignalEconomic, AbsentNoIndicators)
	}

	gdpScore, gdpEstimated := scoreGDPGrowth(ind.GDPGrowth)
	inflationScore, inflationEstimated := scoreInflation(ind.Inflation)
	unemploymentScore, unemploymentEstimated := scoreUnemployment(ind.Unemployment)

	total := gdpScore*0.4 + inflationScore*0.4 + unemploymentScore*0.2

	detail := map[string]float64{
		"gdp_score":              gdpScore,
		"inflation_score":        inflationScore,
		"unemployment_score":     unemploymentScore,
		"gdp_estimated":          boolFlag(gdpEstimated),
		"inflation_estimated":    boolFlag(inflationEstimated),
		"unemployment_estimated": boolFlag(unemploymentEstimated),
	}
	return active(model.SignalEconomic, total, detail, ind.ObservedAt)
}

func boolFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Step tables are intentionally not interpolated: annual macro series move in
// coarse bands and the boundaries below follow the calibrated thresholds of
// the upstream indicator feeds.

func scoreGDPGrowth(v *float64) (float64, bool) {
	if v == nil {
		return 50, true
	}
	switch growth := *v; {
	case growth < 0:
		return 90, false
	case growth < 2:
		return 65, false
	case growth < 4:
		return 45, false
	case growth < 6:
		return 25, false
	case growth < 8:
		return 15, false
	default:
		return 5, false
	}
}

func scoreInflation(v *float64) (float64, bool) {
	if v == nil {
		return 50, true
	}
	switch inflation := *v; {
	case inflation > 10:
		return 85, false
	case inflation > 7:
		return 65, false
	case inflation > 5:
		return 45, false
	case inflation > 3:
		return 25, false
	case inflation > 2:
		return 15, false
	default:
		return 5, false
	}
}

func scoreUnemployment(v *float64) (float64, bool) {
	if v == nil {
		return 50, true
	}
	switch unemployment := *v; {
	case unemployment > 15:
		return 90, false
	case unemployment > 12:
		return 75, false
	case unemployment > 9:
		return 60, false
	case unemployment > 7:
		return 45, false
	case unemployment > 5:
		return 30, false
	case unemployment > 3:
		return 15, false
	default:
		return 5, false
	}
}

package model

import "time"

type RiskLevel string

const (
	RiskMinimal  RiskLevel = "minimal"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

type ConfidenceLevel string

const (
	ConfidenceVeryLow  ConfidenceLevel = "very_low"
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
)

type SignalType string

const (
	SignalNews       SignalType = "news"
	SignalConflict   SignalType = "conflict"
	SignalEconomic   SignalType = "economic"
	SignalGovernment SignalType = "government"
)

type AlertType string

const (
	AlertRiskIncrease    AlertType = "risk_increase"
	AlertSuddenSpike     AlertType = "sudden_spike"
	AlertSustainedHigh   AlertType = "sustained_high"
	AlertRapidEscalation AlertType = "rapid_escalation"
)

type Severity string

const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Country is an immutable catalog entry, keyed by ISO 3-letter code.
type Country struct {
	Code   string `json:"code" yaml:"code"`
	Name   string `json:"name" yaml:"name"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

type NewsArticle struct {
	PublishedAt     time.Time `json:"published_at"`
	Sentiment       float64   `json:"sentiment"`
	NegativeKeyword bool      `json:"negative_keyword"`
	Source          string    `json:"source,omitempty"`
	Title           string    `json:"title,omitempty"`
}

type ConflictEvent struct {
	OccurredAt     time.Time `json:"occurred_at"`
	EventType      string    `json:"event_type,omitempty"`
	SeverityWeight float64   `json:"severity_weight"`
	Fatalities     int       `json:"fatalities"`
	Location       string    `json:"location,omitempty"`
}

// EconomicIndicators carries the latest known macro values. A nil field means
// the indicator is absent and the calculator substitutes a neutral estimate.
type EconomicIndicators struct {
	GDPGrowth    *float64  `json:"gdp_growth,omitempty"`
	Inflation    *float64  `json:"inflation,omitempty"`
	Unemployment *float64  `json:"unemployment,omitempty"`
	ObservedAt   time.Time `json:"observed_at,omitempty"`
}

type GovernmentDocument struct {
	PublishedAt time.Time `json:"published_at"`
	Sentiment   float64   `json:"sentiment"`
	Category    string    `json:"category,omitempty"`
}

// EvidenceSet is the fully materialized input for one country evaluation.
// The engine never fetches anything; collaborators window and timestamp the
// evidence before handing it over.
type EvidenceSet struct {
	CountryCode string               `json:"country_code"`
	News        []NewsArticle        `json:"news,omitempty"`
	Conflict    []ConflictEvent      `json:"conflict,omitempty"`
	Economic    EconomicIndicators   `json:"economic"`
	Government  []GovernmentDocument `json:"government,omitempty"`
}

type SignalStatus string

const (
	SignalActive SignalStatus = "active"
	SignalAbsent SignalStatus = "absent"
)

// SignalResult is one scored risk dimension. Detail is sufficient to
// reconstruct Score without re-reading the raw evidence.
type SignalResult struct {
	Type         SignalType         `json:"type"`
	Status       SignalStatus       `json:"status"`
	AbsentReason string             `json:"absent_reason,omitempty"`
	Score        float64            `json:"score"`
	Weight       float64            `json:"weight"`
	Detail       map[string]float64 `json:"detail,omitempty"`
	NewestItem   time.Time          `json:"newest_item,omitempty"`
}

func (r SignalResult) Active() bool {
	return r.Status == SignalActive
}

type ConfidenceBreakdown struct {
	SourceCount          float64 `json:"source_count"`
	Freshness            float64 `json:"freshness"`
	Consistency          float64 `json:"consistency"`
	HistoricalValidation float64 `json:"historical_validation"`
	InsufficientHistory  bool    `json:"insufficient_history,omitempty"`
}

type RiskAssessment struct {
	ID              string                      `json:"id"`
	CountryCode     string                      `json:"country_code"`
	OverallScore    float64                     `json:"overall_score"`
	RiskLevel       RiskLevel                   `json:"risk_level"`
	Trend           Trend                       `json:"trend"`
	FirstRun        bool                        `json:"first_run,omitempty"`
	Signals         map[SignalType]SignalResult `json:"signals"`
	ConfidenceScore float64                     `json:"confidence_score"`
	ConfidenceLevel ConfidenceLevel             `json:"confidence_level"`
	Confidence      ConfidenceBreakdown         `json:"confidence_breakdown"`
	CalculatedAt    time.Time                   `json:"calculated_at"`
}

func (a RiskAssessment) SignalScore(t SignalType) float64 {
	if s, ok := a.Signals[t]; ok {
		return s.Score
	}
	return 0
}

type AlertEvent struct {
	ID               string             `json:"id"`
	CountryCode      string             `json:"country_code"`
	AlertType        AlertType          `json:"alert_type"`
	Severity         Severity           `json:"severity"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	RiskScore        float64            `json:"risk_score"`
	PreviousScore    float64            `json:"previous_score"`
	ConfidenceScore  float64            `json:"confidence_score"`
	ChangePercentage float64            `json:"change_percentage"`
	PrimaryDriver    string             `json:"primary_driver,omitempty"`
	Evidence         map[string]float64 `json:"evidence,omitempty"`
	TriggeredAt      time.Time          `json:"triggered_at"`
}

// Package normalize maps raw feed records (RSS articles, ACLED-style event
// rows, official-communication documents) into the evidence items the
// calculators consume. Sentiment numbers are upstream-supplied; the only
// text analysis here is the fixed negative-keyword lexicon.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"riskwatch/internal/model"
)

// NegativeKeywords is the fixed lexicon that marks an article negative
// regardless of its sentiment score.
var NegativeKeywords = []string{
	"protest", "riot", "violence", "conflict", "crisis",
	"terrorism", "attack", "strike", "unrest", "tension",
	"war", "emergency", "threat", "sanction",
}

func HasNegativeKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range NegativeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// eventSeverity maps conflict event types onto 0-10 weights. Unknown types
// get a middle weight rather than being dropped.
var eventSeverity = map[string]float64{
	"Battles":                    10,
	"Violence against civilians": 10,
	"Explosions/Remote violence": 9,
	"Riots":                      7,
	"Protests":                   4,
	"Strategic developments":     3,
}

const defaultEventSeverity = 5

func EventSeverityWeight(eventType string) float64 {
	if w, ok := eventSeverity[strings.TrimSpace(eventType)]; ok {
		return w
	}
	return defaultEventSeverity
}

type ArticleFields struct {
	PublishedAt string   `json:"published_at"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Sentiment   *float64 `json:"sentiment"`
	Source      string   `json:"source"`
}

func Article(fields ArticleFields, loc *time.Location) (model.NewsArticle, error) {
	ts, err := ParseTimestamp(fields.PublishedAt, loc)
	if err != nil {
		return model.NewsArticle{}, fmt.Errorf("parse article timestamp: %w", err)
	}
	sentiment := 0.0
	if fields.Sentiment != nil {
		sentiment = clampSentiment(*fields.Sentiment)
	}
	return model.NewsArticle{
		PublishedAt:     ts.UTC(),
		Sentiment:       sentiment,
		NegativeKeyword: HasNegativeKeyword(fields.Title + " " + fields.Content),
		Source:          strings.TrimSpace(fields.Source),
		Title:           strings.TrimSpace(fields.Title),
	}, nil
}

type EventFields struct {
	OccurredAt string `json:"occurred_at"`
	EventType  string `json:"event_type"`
	Fatalities int    `json:"fatalities"`
	Location   string `json:"location"`
}

func Event(fields EventFields, loc *time.Location) (model.ConflictEvent, error) {
	ts, err := ParseTimestamp(fields.OccurredAt, loc)
	if err != nil {
		return model.ConflictEvent{}, fmt.Errorf("parse event timestamp: %w", err)
	}
	fatalities := fields.Fatalities
	if fatalities < 0 {
		fatalities = 0
	}
	return model.ConflictEvent{
		OccurredAt:     ts.UTC(),
		EventType:      strings.TrimSpace(fields.EventType),
		SeverityWeight: EventSeverityWeight(fields.EventType),
		Fatalities:     fatalities,
		Location:       strings.TrimSpace(fields.Location),
	}, nil
}

type DocumentFields struct {
	PublishedAt string  `json:"published_at"`
	Sentiment   float64 `json:"sentiment"`
	Category    string  `json:"category"`
}

func Document(fields DocumentFields, loc *time.Location) (model.GovernmentDocument, error) {
	ts, err := ParseTimestamp(fields.PublishedAt, loc)
	if err != nil {
		return model.GovernmentDocument{}, fmt.Errorf("parse document timestamp: %w", err)
	}
	return model.GovernmentDocument{
		PublishedAt: ts.UTC(),
		Sentiment:   clampSentiment(fields.Sentiment),
		Category:    strings.TrimSpace(fields.Category),
	}, nil
}

func clampSentiment(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02",
}

func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", value)
}

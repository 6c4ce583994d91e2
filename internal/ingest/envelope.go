package ingest

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"riskwatch/internal/config"
	"riskwatch/internal/model"
	"riskwatch/internal/normalize"
)

// Envelope is the wire shape evidence collaborators post: one country's
// windowed raw records per message.
type Envelope struct {
	CountryCode string                     `json:"country_code"`
	News        []normalize.ArticleFields  `json:"news,omitempty"`
	Conflict    []normalize.EventFields    `json:"conflict,omitempty"`
	Economic    *EconomicFields            `json:"economic,omitempty"`
	Government  []normalize.DocumentFields `json:"government,omitempty"`
}

type EconomicFields struct {
	GDPGrowth    *float64 `json:"gdp_growth,omitempty"`
	Inflation    *float64 `json:"inflation,omitempty"`
	Unemployment *float64 `json:"unemployment,omitempty"`
	ObservedAt   string   `json:"observed_at,omitempty"`
}

var ErrMissingCountry = errors.New("envelope missing country_code")

// ParseEnvelope decodes and normalizes one evidence envelope. Malformed
// items are dropped individually; only a missing country code rejects the
// whole envelope.
func ParseEnvelope(data []byte, cfg *config.Config) (model.EvidenceSet, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.EvidenceSet{}, err
	}
	return NormalizeEnvelope(env, cfg)
}

func NormalizeEnvelope(env Envelope, cfg *config.Config) (model.EvidenceSet, error) {
	code := strings.ToUpper(strings.TrimSpace(env.CountryCode))
	if code == "" {
		code = strings.ToUpper(strings.TrimSpace(cfg.Ingest.Envelope.DefaultCountryCode))
	}
	if code == "" {
		return model.EvidenceSet{}, ErrMissingCountry
	}

	loc := time.UTC
	if tz := cfg.Ingest.Envelope.Timezone; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	out := model.EvidenceSet{CountryCode: code}
	for _, f := range env.News {
		if a, err := normalize.Article(f, loc); err == nil {
			out.News = append(out.News, a)
		}
	}
	for _, f := range env.Conflict {
		if ev, err := normalize.Event(f, loc); err == nil {
			out.Conflict = append(out.Conflict, ev)
		}
	}
	if env.Economic != nil {
		out.Economic = model.EconomicIndicators{
			GDPGrowth:    env.Economic.GDPGrowth,
			Inflation:    env.Economic.Inflation,
			Unemployment: env.Economic.Unemployment,
		}
		if env.Economic.ObservedAt != "" {
			if ts, err := normalize.ParseTimestamp(env.Economic.ObservedAt, loc); err == nil {
				out.Economic.ObservedAt = ts.UTC()
			}
		}
	}
	for _, f := range env.Government {
		if d, err := normalize.Document(f, loc); err == nil {
			out.Government = append(out.Government, d)
		}
	}
	return out, nil
}

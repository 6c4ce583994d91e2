package ingest

import (
	"errors"
	"testing"

	"riskwatch/internal/config"
)

func TestParseEnvelope(t *testing.T) {
	cfg := config.DefaultConfig()
	data := []byte(`{
		"country_code": "sd",
		"news": [
			{"published_at": "2026-02-10T08:30:00Z", "title": "Unrest spreads", "sentiment": -0.6},
			{"published_at": "not-a-time", "title": "dropped"}
		],
		"conflict": [
			{"occurred_at": "2026-02-09", "event_type": "Battles", "fatalities": 12}
		],
		"economic": {"gdp_growth": -1.5, "inflation": 12.0},
		"government": [
			{"published_at": "2026-02-08", "sentiment": -0.4, "category": "security"}
		]
	}`)
	ev, err := ParseEnvelope(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.CountryCode != "SD" {
		t.Fatalf("country code not uppercased: %q", ev.CountryCode)
	}
	if len(ev.News) != 1 {
		t.Fatalf("malformed article must be dropped, got %d", len(ev.News))
	}
	if len(ev.Conflict) != 1 || ev.Conflict[0].SeverityWeight != 10 {
		t.Fatalf("conflict event not normalized: %+v", ev.Conflict)
	}
	if ev.Economic.GDPGrowth == nil || *ev.Economic.GDPGrowth != -1.5 {
		t.Fatalf("gdp growth lost: %+v", ev.Economic)
	}
	if ev.Economic.Unemployment != nil {
		t.Fatalf("absent indicator must stay nil")
	}
	if len(ev.Government) != 1 {
		t.Fatalf("government doc lost")
	}
}

func TestParseEnvelopeMissingCountry(t *testing.T) {
	cfg := config.DefaultConfig()
	_, err := ParseEnvelope([]byte(`{"news": []}`), cfg)
	if !errors.Is(err, ErrMissingCountry) {
		t.Fatalf("expected ErrMissingCountry, got %v", err)
	}
}

func TestParseEnvelopeDefaultCountry(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ingest.Envelope.DefaultCountryCode = "ua"
	ev, err := ParseEnvelope([]byte(`{}`), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.CountryCode != "UA" {
		t.Fatalf("expected default country UA, got %q", ev.CountryCode)
	}
}

func TestParseEnvelopeBadJSON(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := ParseEnvelope([]byte(`{not json`), cfg); err == nil {
		t.Fatalf("expected error for malformed json")
	}
}

func TestParseEnvelopeNoEconomicBlock(t *testing.T) {
	cfg := config.DefaultConfig()
	ev, err := ParseEnvelope([]byte(`{"country_code": "SD"}`), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Economic.GDPGrowth != nil || ev.Economic.Inflation != nil || ev.Economic.Unemployment != nil {
		t.Fatalf("missing economic block must leave all indicators nil")
	}
}

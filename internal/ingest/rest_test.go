package ingest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"riskwatch/internal/config"
	"riskwatch/internal/model"
)

func newRESTForTest(buffer int) (*RESTServer, chan model.EvidenceSet) {
	out := make(chan model.EvidenceSet, buffer)
	s := &RESTServer{cfg: config.NewStaticManager(config.DefaultConfig()), out: out}
	return s, out
}

func TestHandleEvidenceAccepted(t *testing.T) {
	s, out := newRESTForTest(1)
	body := `{"country_code": "SD", "news": [{"published_at": "2026-02-10", "title": "Unrest"}]}`
	rec := httptest.NewRecorder()
	s.handleEvidence(rec, httptest.NewRequest(http.MethodPost, "/evidence", strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	select {
	case ev := <-out:
		if ev.CountryCode != "SD" || len(ev.News) != 1 {
			t.Fatalf("unexpected evidence: %+v", ev)
		}
	default:
		t.Fatalf("evidence not forwarded")
	}
}

func TestHandleEvidenceBadJSON(t *testing.T) {
	s, _ := newRESTForTest(1)
	rec := httptest.NewRecorder()
	s.handleEvidence(rec, httptest.NewRequest(http.MethodPost, "/evidence", strings.NewReader("{nope")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleEvidenceMissingCountry(t *testing.T) {
	s, _ := newRESTForTest(1)
	rec := httptest.NewRecorder()
	s.handleEvidence(rec, httptest.NewRequest(http.MethodPost, "/evidence", strings.NewReader(`{"news": []}`)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestHandleEvidenceChannelFull(t *testing.T) {
	s, out := newRESTForTest(1)
	out <- model.EvidenceSet{CountryCode: "XX"}
	rec := httptest.NewRecorder()
	s.handleEvidence(rec, httptest.NewRequest(http.MethodPost, "/evidence", strings.NewReader(`{"country_code": "SD"}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandleEvidenceRejectsGet(t *testing.T) {
	s, _ := newRESTForTest(1)
	rec := httptest.NewRecorder()
	s.handleEvidence(rec, httptest.NewRequest(http.MethodGet, "/evidence", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

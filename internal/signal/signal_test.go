package signal

import (
	"math"
	"testing"
	"time"

	"riskwatch/internal/model"
)

func f(v float64) *float64 { return &v }

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestNewsNoArticlesAbsent(t *testing.T) {
	res := News(nil, -0.3)
	if res.Active() {
		t.Fatalf("expected absent signal")
	}
	if res.AbsentReason != AbsentNoArticles {
		t.Fatalf("unexpected absent reason %q", res.AbsentReason)
	}
	if res.Score != 0 {
		t.Fatalf("absent signal must score 0, got %v", res.Score)
	}
}

func TestNewsVolumeSaturates(t *testing.T) {
	now := time.Now().UTC()
	articles := make([]model.NewsArticle, 40)
	for i := range articles {
		articles[i] = model.NewsArticle{PublishedAt: now, Sentiment: 0.5}
	}
	res := News(articles, -0.3)
	if !res.Active() {
		t.Fatalf("expected active signal")
	}
	if res.Detail["volume_score"] != 50 {
		t.Fatalf("expected saturated volume 50, got %v", res.Detail["volume_score"])
	}
	if res.Score != 50 {
		t.Fatalf("no negatives means score equals volume, got %v", res.Score)
	}
}

func TestNewsNegativeShare(t *testing.T) {
	now := time.Now().UTC()
	articles := []model.NewsArticle{
		{PublishedAt: now, Sentiment: -0.8},
		{PublishedAt: now, Sentiment: 0.2, NegativeKeyword: true},
		{PublishedAt: now, Sentiment: 0.4},
		{PublishedAt: now, Sentiment: 0.1},
	}
	res := News(articles, -0.3)
	if res.Detail["negative_count"] != 2 {
		t.Fatalf("expected 2 negative articles, got %v", res.Detail["negative_count"])
	}
	// volume 4/20*50 = 10, negative 2/4*50 = 25
	if !approx(res.Score, 35) {
		t.Fatalf("expected score 35, got %v", res.Score)
	}
}

func TestNewsNewestItem(t *testing.T) {
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	res := News([]model.NewsArticle{
		{PublishedAt: recent},
		{PublishedAt: old},
	}, -0.3)
	if !res.NewestItem.Equal(recent) {
		t.Fatalf("expected newest item %v, got %v", recent, res.NewestItem)
	}
}

func TestConflictNoEventsAbsent(t *testing.T) {
	res := Conflict(nil, time.Now(), 30*24*time.Hour)
	if res.Active() || res.AbsentReason != AbsentNoEvents {
		t.Fatalf("expected absent conflict signal, got %+v", res)
	}
}

func TestConflictMoreFatalitiesScoreHigher(t *testing.T) {
	now := time.Now().UTC()
	window := 30 * 24 * time.Hour
	mk := func(fatalities int) []model.ConflictEvent {
		return []model.ConflictEvent{
			{OccurredAt: now.Add(-time.Hour), SeverityWeight: 10, Fatalities: fatalities},
			{OccurredAt: now.Add(-2 * time.Hour), SeverityWeight: 10, Fatalities: fatalities},
		}
	}
	low := Conflict(mk(0), now, window)
	mid := Conflict(mk(20), now, window)
	high := Conflict(mk(60), now, window)
	if !(low.Score < mid.Score && mid.Score < high.Score) {
		t.Fatalf("scores not monotone in fatalities: %v %v %v", low.Score, mid.Score, high.Score)
	}
	if high.Detail["high_casualty_events"] != 2 {
		t.Fatalf("expected 2 high casualty events, got %v", high.Detail["high_casualty_events"])
	}
}

func TestConflictEscalationBonus(t *testing.T) {
	now := time.Now().UTC()
	window := 30 * 24 * time.Hour
	// one event in the first half, three in the second: rate 200%, bonus capped at 5
	events := []model.ConflictEvent{
		{OccurredAt: now.Add(-20 * 24 * time.Hour), SeverityWeight: 4},
		{OccurredAt: now.Add(-3 * 24 * time.Hour), SeverityWeight: 4},
		{OccurredAt: now.Add(-2 * 24 * time.Hour), SeverityWeight: 4},
		{OccurredAt: now.Add(-1 * 24 * time.Hour), SeverityWeight: 4},
	}
	res := Conflict(events, now, window)
	if res.Detail["escalation_rate"] != 200 {
		t.Fatalf("expected escalation rate 200, got %v", res.Detail["escalation_rate"])
	}
	if res.Detail["escalation_bonus"] != 5 {
		t.Fatalf("expected bonus capped at 5, got %v", res.Detail["escalation_bonus"])
	}
}

func TestConflictDeescalationClamped(t *testing.T) {
	now := time.Now().UTC()
	window := 30 * 24 * time.Hour
	events := []model.ConflictEvent{
		{OccurredAt: now.Add(-25 * 24 * time.Hour), SeverityWeight: 4},
		{OccurredAt: now.Add(-20 * 24 * time.Hour), SeverityWeight: 4},
	}
	res := Conflict(events, now, window)
	if res.Detail["escalation_rate"] != -100 {
		t.Fatalf("expected rate clamped at -100, got %v", res.Detail["escalation_rate"])
	}
	if res.Detail["escalation_bonus"] != 0 {
		t.Fatalf("de-escalation must not add bonus, got %v", res.Detail["escalation_bonus"])
	}
}

func TestConflictScoreComposition(t *testing.T) {
	now := time.Now().UTC()
	window := 30 * 24 * time.Hour
	events := []model.ConflictEvent{
		{OccurredAt: now.Add(-time.Hour), SeverityWeight: 10, Fatalities: 5},
		{OccurredAt: now.Add(-2 * time.Hour), SeverityWeight: 7, Fatalities: 0},
		{OccurredAt: now.Add(-3 * time.Hour), SeverityWeight: 4, Fatalities: 0},
	}
	res := Conflict(events, now, window)
	// frequency 3/15*40 = 8
	// severity (10*1.1 + 7 + 4)/3 = 7.333.. -> /15*35 = 17.11
	// fatality 5/50*20 = 2
	// escalation: all in second half, rate 200, bonus 5
	want := 8 + (10*1.1+7+4)/3/15*35 + 2 + 5
	if !approx(res.Score, round2(want)) {
		t.Fatalf("expected score %v, got %v", round2(want), res.Score)
	}
}

func TestEconomicAllMissingAbsent(t *testing.T) {
	res := Economic(model.EconomicIndicators{})
	if res.Active() || res.AbsentReason != AbsentNoIndicators {
		t.Fatalf("expected absent economic signal, got %+v", res)
	}
}

func TestEconomicStepTables(t *testing.T) {
	cases := []struct {
		gdp, inflation, unemployment float64
		want                         float64
	}{
		{-1, 12, 16, 90*0.4 + 85*0.4 + 90*0.2},  // 88
		{1, 8, 10, 65*0.4 + 65*0.4 + 60*0.2},    // 64
		{3, 6, 8, 45*0.4 + 45*0.4 + 45*0.2},     // 45
		{5, 4, 6, 25*0.4 + 25*0.4 + 30*0.2},     // 26
		{7, 2.5, 4, 15*0.4 + 15*0.4 + 15*0.2},   // 15
		{9, 1, 2, 5*0.4 + 5*0.4 + 5*0.2},        // 5
	}
	for _, tc := range cases {
		res := Economic(model.EconomicIndicators{
			GDPGrowth:    f(tc.gdp),
			Inflation:    f(tc.inflation),
			Unemployment: f(tc.unemployment),
		})
		if !approx(res.Score, tc.want) {
			t.Fatalf("gdp=%v inf=%v unemp=%v: expected %v, got %v",
				tc.gdp, tc.inflation, tc.unemployment, tc.want, res.Score)
		}
	}
}

func TestEconomicMissingIndicatorNeutral(t *testing.T) {
	res := Economic(model.EconomicIndicators{GDPGrowth: f(-1)})
	// gdp 90, inflation and unemployment estimated at 50
	want := 90*0.4 + 50*0.4 + 50*0.2
	if !approx(res.Score, want) {
		t.Fatalf("expected %v, got %v", want, res.Score)
	}
	if res.Detail["gdp_estimated"] != 0 {
		t.Fatalf("gdp should not be estimated")
	}
	if res.Detail["inflation_estimated"] != 1 || res.Detail["unemployment_estimated"] != 1 {
		t.Fatalf("missing indicators must be flagged estimated: %+v", res.Detail)
	}
}

func TestGovernmentNoDocsAbsent(t *testing.T) {
	res := Government(nil)
	if res.Active() || res.AbsentReason != AbsentNoDocuments {
		t.Fatalf("expected absent government signal, got %+v", res)
	}
}

func TestGovernmentSentimentMapping(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		sentiments []float64
		want       float64
	}{
		{[]float64{1}, 0},
		{[]float64{0}, 50},
		{[]float64{-1}, 100},
		{[]float64{-0.5, 0.5}, 50},
		{[]float64{-0.4}, 70},
	}
	for _, tc := range cases {
		docs := make([]model.GovernmentDocument, len(tc.sentiments))
		for i, s := range tc.sentiments {
			docs[i] = model.GovernmentDocument{PublishedAt: now, Sentiment: s}
		}
		res := Government(docs)
		if !approx(res.Score, tc.want) {
			t.Fatalf("sentiments %v: expected %v, got %v", tc.sentiments, tc.want, res.Score)
		}
	}
}

package signal

import (
	"riskwatch/internal/model"
)

// Government scores official-communication sentiment. The mean document
// sentiment in [-1,1] maps to [0,100] with more negative tone scoring
// higher. Empty evidence means the signal is absent, not that the country
// is stable.
func Government(docs []model.GovernmentDocument) model.SignalResult {
	if len(docs) == 0 {
		return absent(model.SignalGovernment, AbsentNoDocuments)
	}

	var sum float64
	newestItem := docs[0].PublishedAt
	for _, d := range docs {
		sum += d.Sentiment
		newestItem = newest(newestItem, d.PublishedAt)
	}
	mean := sum / float64(len(docs))
	score := (1 - mean) / 2 * 100

	detail := map[string]float64{
		"document_count": float64(len(docs)),
		"mean_sentiment": round2(mean),
	}
	return active(model.SignalGovernment, score, detail, newestItem)
}

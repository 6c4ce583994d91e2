package signal

import (
	"riskwatch/internal/model"
)

// News scores a trailing window of articles. Volume contributes up to 50
// points (20 articles saturate it) and the negative share contributes the
// other 50. An article counts as negative when its keyword flag is set or its
// upstream sentiment falls below negThreshold.
func News(articles []model.NewsArticle, negThreshold float64) model.SignalResult {
	if len(articles) == 0 {
		return absent(model.SignalNews, AbsentNoArticles)
	}

	articleCount := len(articles)
	negativeCount := 0
	var newestItem = articles[0].PublishedAt
	for _, a := range articles {
		if a.NegativeKeyword || a.Sentiment < negThreshold {
			negativeCount++
		}
		newestItem = newest(newestItem, a.PublishedAt)
	}

	volumeScore := float64(articleCount) / 20.0 * 50
	if volumeScore > 50 {
		volumeScore = 50
	}
	negativeScore := float64(negativeCount) / float64(articleCount) * 50

	detail := map[string]float64{
		"article_count":  float64(articleCount),
		"negative_count": float64(negativeCount),
		"volume_score":   round2(volumeScore),
		"negative_score": round2(negativeScore),
	}
	return active(model.SignalNews, volumeScore+negativeScore, detail, newestItem)
}

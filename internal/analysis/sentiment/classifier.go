// Package sentiment holds the deterministic sentiment rules shared by the
// adapters and the aggregator: the headline keyword classifier, the
// score-to-label threshold and news digest construction.
package sentiment

import (
	"sort"
	"strings"

	"github.com/seenimoa/tickerscan/pkg/models"
)

// Keyword lists (lowercase). Matching is substring containment, so
// "surge" also matches "surges" and "surged".
var positiveWords = []string{
	"surge", "soar", "jump", "gain", "rise", "rally", "beat", "upgrade",
	"growth", "profit", "strong", "bullish", "record", "positive",
	"approval", "approved", "breakthrough", "success", "outperform",
	"boost", "expand", "partnership",
}

var negativeWords = []string{
	"fall", "drop", "plunge", "slump", "decline", "loss", "miss",
	"downgrade", "weak", "bearish", "crash", "cut", "lawsuit",
	"investigation", "fraud", "concern", "warning", "recall", "delay",
	"reject", "layoff", "bankrupt",
}

// ClassifyHeadline counts positive and negative terms contained in the
// lower-cased headline and returns the side with more matches, or neutral
// on a tie.
func ClassifyHeadline(headline string) models.NewsSentiment {
	lower := strings.ToLower(headline)
	pos, neg := countTerms(lower, positiveWords), countTerms(lower, negativeWords)
	switch {
	case pos > neg:
		return models.NewsPositive
	case neg > pos:
		return models.NewsNegative
	default:
		return models.NewsNeutral
	}
}

func countTerms(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}

// BuildDigest classifies each item from its headline (any sentiment set
// on the input is overwritten), keeps the newest models.MaxNewsItems and
// scores the digest as (positive - negative) / count.
func BuildDigest(items []models.NewsRecord) *models.NewsDigest {
	sorted := make([]models.NewsRecord, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if len(sorted) > models.MaxNewsItems {
		sorted = sorted[:models.MaxNewsItems]
	}

	d := &models.NewsDigest{Items: sorted, Label: models.LabelNeutral}
	for i := range d.Items {
		s := ClassifyHeadline(d.Items[i].Headline)
		d.Items[i].Sentiment = s
		switch s {
		case models.NewsPositive:
			d.Positive++
		case models.NewsNegative:
			d.Negative++
		default:
			d.Neutral++
		}
	}
	if n := len(d.Items); n > 0 {
		d.Score = Round(float64(d.Positive-d.Negative) / float64(n))
		d.Label = LabelForScore(d.Score)
	}
	return d
}

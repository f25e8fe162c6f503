package sentiment

import (
	"math"

	"github.com/seenimoa/tickerscan/pkg/models"
)

// Threshold separates neutral from directional labels. Scores exactly at
// ±Threshold are neutral.
const Threshold = 0.2

// LabelForScore maps a score to bullish (> Threshold), bearish
// (< -Threshold) or neutral.
func LabelForScore(score float64) models.Label {
	switch {
	case score > Threshold:
		return models.LabelBullish
	case score < -Threshold:
		return models.LabelBearish
	default:
		return models.LabelNeutral
	}
}

// Round rounds a score to four decimal places so that averages such as
// (0.5 + -0.1) / 2 land exactly on the threshold.
func Round(score float64) float64 {
	return math.Round(score*10000) / 10000
}

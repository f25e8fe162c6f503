package llmsentiment

import (
	"math"
	"sort"
	"strings"

	"github.com/seenimoa/tickerscan/internal/analysis/sentiment"
	"github.com/seenimoa/tickerscan/internal/provider"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// rawRecord mirrors the JSON a sentiment model is asked to return.
// Pointers separate absent fields from zero values.
type rawRecord struct {
	Score                 *float64      `json:"score"`
	Label                 *string       `json:"label"`
	Confidence            *float64      `json:"confidence"`
	MentionVolume         *float64      `json:"mentionVolume"`
	SentimentBreakdown    *rawBreakdown `json:"sentimentBreakdown"`
	Trending              *bool         `json:"trending"`
	BuzzLevel             *string       `json:"buzzLevel"`
	TopTakes              []string      `json:"topTakes"`
	RetailVsInstitutional *string       `json:"retailVsInstitutional"`
}

type rawBreakdown struct {
	Bullish *float64 `json:"bullish"`
	Neutral *float64 `json:"neutral"`
	Bearish *float64 `json:"bearish"`
}

// MaxMentionVolume bounds the mention count a model may report.
const MaxMentionVolume = math.MaxInt32

// ParseRecord extracts and validates a SentimentRecord from model output.
// Optional fields get their defaults here and nowhere else.
func ParseRecord(text string) (*models.SentimentRecord, error) {
	var raw rawRecord
	if err := provider.DecodeObject(text, &raw); err != nil {
		return nil, err
	}
	return raw.validate()
}

func (r rawRecord) validate() (*models.SentimentRecord, error) {
	if r.Score == nil {
		return nil, provider.SchemaError("score", "missing")
	}
	if *r.Score < -1 || *r.Score > 1 {
		return nil, provider.SchemaError("score", "%v outside [-1, 1]", *r.Score)
	}
	if r.Confidence == nil {
		return nil, provider.SchemaError("confidence", "missing")
	}
	if *r.Confidence < 0 || *r.Confidence > 100 {
		return nil, provider.SchemaError("confidence", "%v outside [0, 100]", *r.Confidence)
	}
	if r.Label != nil {
		if _, ok := models.ParseLabel(*r.Label); !ok {
			return nil, provider.SchemaError("label", "unknown value %q", *r.Label)
		}
	}
	breakdown, err := r.SentimentBreakdown.normalize()
	if err != nil {
		return nil, err
	}

	rec := &models.SentimentRecord{
		Score:      sentiment.Round(*r.Score),
		Confidence: *r.Confidence,
		Breakdown:  breakdown,
		// A model-supplied label is only checked for membership; the
		// stored label always follows the score.
		Label:                 sentiment.LabelForScore(*r.Score),
		BuzzLevel:             models.BuzzLow,
		RetailVsInstitutional: models.AudienceMixed,
		TopTakes:              []string{},
	}
	if r.MentionVolume != nil {
		v := *r.MentionVolume
		if math.IsNaN(v) || v > MaxMentionVolume {
			return nil, provider.SchemaError("mentionVolume", "%v outside [0, %d]", v, MaxMentionVolume)
		}
		if v > 0 {
			rec.MentionVolume = int(math.Round(v))
		}
	}
	if r.Trending != nil {
		rec.Trending = *r.Trending
	}
	if r.BuzzLevel != nil {
		if b, ok := models.ParseBuzzLevel(*r.BuzzLevel); ok {
			rec.BuzzLevel = b
		}
	}
	if r.RetailVsInstitutional != nil {
		if a, ok := models.ParseAudience(*r.RetailVsInstitutional); ok {
			rec.RetailVsInstitutional = a
		}
	}
	for _, take := range r.TopTakes {
		if take = strings.TrimSpace(take); take != "" {
			rec.TopTakes = append(rec.TopTakes, take)
		}
		if len(rec.TopTakes) == models.MaxTopTakes {
			break
		}
	}
	return rec, nil
}

// normalize validates the three shares and rescales them to integers
// summing to 100 by the largest-remainder method.
func (b *rawBreakdown) normalize() (models.Breakdown, error) {
	if b == nil || b.Bullish == nil || b.Neutral == nil || b.Bearish == nil {
		return models.Breakdown{}, provider.SchemaError("sentimentBreakdown", "missing share")
	}
	shares := [3]float64{*b.Bullish, *b.Neutral, *b.Bearish}
	var largest float64
	for _, v := range shares {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Breakdown{}, provider.SchemaError("sentimentBreakdown", "non-finite share %v", v)
		}
		if v < 0 {
			return models.Breakdown{}, provider.SchemaError("sentimentBreakdown", "negative share %v", v)
		}
		largest = math.Max(largest, v)
	}
	if largest <= 0 {
		return models.Breakdown{}, provider.SchemaError("sentimentBreakdown", "shares sum to zero")
	}
	// Scaling by the largest share keeps the sum finite for any finite input.
	var sum float64
	for i := range shares {
		shares[i] /= largest
		sum += shares[i]
	}

	var out [3]int
	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, 3)
	assigned := 0
	for i, v := range shares {
		exact := v * 100 / sum
		out[i] = int(math.Floor(exact))
		assigned += out[i]
		rems[i] = rem{idx: i, frac: exact - float64(out[i])}
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].frac > rems[j].frac })
	for i := 0; assigned < 100 && i < len(rems); i++ {
		out[rems[i].idx]++
		assigned++
	}
	return models.Breakdown{Bullish: out[0], Neutral: out[1], Bearish: out[2]}, nil
}

package models

import (
	"strings"
	"time"
)

// Label is the three-way sentiment label.
type Label string

const (
	LabelBullish Label = "bullish"
	LabelNeutral Label = "neutral"
	LabelBearish Label = "bearish"
)

// ParseLabel matches s (case-insensitive) against the label set.
func ParseLabel(s string) (Label, bool) {
	switch l := Label(strings.ToLower(strings.TrimSpace(s))); l {
	case LabelBullish, LabelNeutral, LabelBearish:
		return l, true
	}
	return "", false
}

// BuzzLevel is an advisory measure of discussion intensity.
type BuzzLevel string

const (
	BuzzLow    BuzzLevel = "low"
	BuzzMedium BuzzLevel = "medium"
	BuzzHigh   BuzzLevel = "high"
	BuzzViral  BuzzLevel = "viral"
)

// ParseBuzzLevel matches s against the buzz levels.
func ParseBuzzLevel(s string) (BuzzLevel, bool) {
	switch b := BuzzLevel(strings.ToLower(strings.TrimSpace(s))); b {
	case BuzzLow, BuzzMedium, BuzzHigh, BuzzViral:
		return b, true
	}
	return "", false
}

// Audience is an advisory classification of who drives the discussion.
type Audience string

const (
	AudienceRetail        Audience = "retail"
	AudienceInstitutional Audience = "institutional"
	AudienceMixed         Audience = "mixed"
)

// ParseAudience matches s against the audience set.
func ParseAudience(s string) (Audience, bool) {
	switch a := Audience(strings.ToLower(strings.TrimSpace(s))); a {
	case AudienceRetail, AudienceInstitutional, AudienceMixed:
		return a, true
	}
	return "", false
}

// Breakdown splits mentions into bullish/neutral/bearish percentages that
// sum to 100.
type Breakdown struct {
	Bullish int `json:"bullish"`
	Neutral int `json:"neutral"`
	Bearish int `json:"bearish"`
}

// Total returns the sum of the three shares.
func (b Breakdown) Total() int { return b.Bullish + b.Neutral + b.Bearish }

// MaxTopTakes bounds SentimentRecord.TopTakes.
const MaxTopTakes = 5

// SentimentRecord is the payload of the model-backed sentiment adapters.
type SentimentRecord struct {
	Score                 float64   `json:"score"`
	Label                 Label     `json:"label"`
	Confidence            float64   `json:"confidence"`
	MentionVolume         int       `json:"mention_volume"`
	Breakdown             Breakdown `json:"sentiment_breakdown"`
	Trending              bool      `json:"trending"`
	BuzzLevel             BuzzLevel `json:"buzz_level"`
	TopTakes              []string  `json:"top_takes"`
	RetailVsInstitutional Audience  `json:"retail_vs_institutional"`
}

func (*SentimentRecord) Kind() PayloadKind { return PayloadSentiment }

func (r *SentimentRecord) SentimentScore() (float64, bool) { return r.Score, true }

// NewsSentiment is the headline-derived sentiment of a news item.
type NewsSentiment string

const (
	NewsPositive NewsSentiment = "positive"
	NewsNeutral  NewsSentiment = "neutral"
	NewsNegative NewsSentiment = "negative"
)

// NewsRecord is one news item. Sentiment is always computed locally from
// the headline.
type NewsRecord struct {
	Headline  string        `json:"headline"`
	Summary   string        `json:"summary,omitempty"`
	Source    string        `json:"source"`
	URL       string        `json:"url"`
	Timestamp time.Time     `json:"timestamp"`
	Sentiment NewsSentiment `json:"sentiment"`
}

// MaxNewsItems bounds NewsDigest.Items.
const MaxNewsItems = 20

// NewsDigest is the payload of the news adapters.
type NewsDigest struct {
	Items    []NewsRecord `json:"items"`
	Positive int          `json:"positive"`
	Neutral  int          `json:"neutral"`
	Negative int          `json:"negative"`
	Score    float64      `json:"score"`
	Label    Label        `json:"label"`
}

func (*NewsDigest) Kind() PayloadKind { return PayloadNews }

// SentimentScore is absent for a digest without items.
func (d *NewsDigest) SentimentScore() (float64, bool) {
	if len(d.Items) == 0 {
		return 0, false
	}
	return d.Score, true
}

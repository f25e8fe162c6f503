package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/tickerscan/pkg/models"
)

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func feedXML(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Google News</title>` + strings.Join(items, "") + `</channel></rss>`
}

func item(title, desc string, published time.Time) string {
	return fmt.Sprintf(`<item><title>%s</title><link>https://example.com/%d</link><description><![CDATA[%s]]></description><pubDate>%s</pubDate></item>`,
		title, published.Unix(), desc, published.Format(time.RFC1123Z))
}

func request() models.ResearchRequest {
	return models.NewResearchRequest("ATYR", "aTyr Pharma", "", 0, models.Credentials{})
}

func TestInvokeParsesFeed(t *testing.T) {
	body := feedXML(
		item("aTyr stock jumps on FDA approval - Reuters", "<p>Shares <b>rose</b> sharply.</p>", fixedNow.Add(-time.Hour)),
		item("aTyr misses estimates - MarketWatch", "", fixedNow.Add(-30*time.Hour)),
		item("Old aTyr story - Archive", "", fixedNow.Add(-10*24*time.Hour)),
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "ATYR stock" {
			t.Errorf("q = %q", got)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	a := New(Options{URLTemplate: srv.URL + "/rss?q={query}", Now: func() time.Time { return fixedNow }}, nil)
	res := a.Invoke(context.Background(), "ignored", request())
	if !res.Succeeded() {
		t.Fatalf("result = %+v", res)
	}

	digest := res.Payload.(*models.NewsDigest)
	if len(digest.Items) != 2 {
		t.Fatalf("items = %d, want 2 (old item outside lookback)", len(digest.Items))
	}
	first := digest.Items[0]
	if first.Headline != "aTyr stock jumps on FDA approval" || first.Source != "Reuters" {
		t.Errorf("first = %+v", first)
	}
	if first.Summary != "Shares rose sharply." {
		t.Errorf("Summary = %q", first.Summary)
	}
	if first.Sentiment != models.NewsPositive || digest.Items[1].Sentiment != models.NewsNegative {
		t.Errorf("sentiments = %q, %q", first.Sentiment, digest.Items[1].Sentiment)
	}
	if digest.Score != 0 || digest.Label != models.LabelNeutral {
		t.Errorf("digest score = %v label = %q", digest.Score, digest.Label)
	}
}

func TestInvokeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := New(Options{URLTemplate: srv.URL + "?q={query}"}, nil)
	res := a.Invoke(context.Background(), "", request())
	if res.Status != models.StatusFailed || res.Error.Kind != models.ErrorRateLimited {
		t.Errorf("result = %+v", res)
	}
}

func TestInvokeNotAFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("just some text"))
	}))
	defer srv.Close()

	a := New(Options{URLTemplate: srv.URL + "?q={query}"}, nil)
	res := a.Invoke(context.Background(), "", request())
	if res.Error == nil || res.Error.Kind != models.ErrorMalformedResponse {
		t.Errorf("result = %+v", res)
	}
}

func TestSplitSource(t *testing.T) {
	tests := []struct{ in, headline, source string }{
		{"Headline - Reuters", "Headline", "Reuters"},
		{"A - B - Yahoo Finance", "A - B", "Yahoo Finance"},
		{"No source", "No source", ""},
		{" - Lead dash", " - Lead dash", ""},
	}
	for _, tt := range tests {
		h, s := splitSource(tt.in)
		if h != tt.headline || s != tt.source {
			t.Errorf("splitSource(%q) = %q, %q", tt.in, h, s)
		}
	}
}

func TestFeedURLEscapes(t *testing.T) {
	a := New(Options{}, nil)
	got := a.FeedURL(models.NewResearchRequest("brk.b", "", "", 0, models.Credentials{}))
	if !strings.Contains(got, "q=BRK.B+stock") {
		t.Errorf("FeedURL = %q", got)
	}
}

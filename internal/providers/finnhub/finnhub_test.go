package finnhub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seenimoa/tickerscan/pkg/models"
)

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newMockFinnhub(t *testing.T, status int, items []companyNews) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/company-news" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("symbol") != "ATYR" || q.Get("token") != "fh-key" {
			t.Errorf("query = %v", q)
		}
		if q.Get("from") != "2026-03-03" || q.Get("to") != "2026-03-10" {
			t.Errorf("window = %s..%s", q.Get("from"), q.Get("to"))
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(items)
		}
	}))
}

func request(key string) models.ResearchRequest {
	return models.NewResearchRequest("ATYR", "aTyr Pharma", "biotech", 6.42, models.Credentials{Finnhub: key})
}

func TestInvokeBuildsDigest(t *testing.T) {
	srv := newMockFinnhub(t, http.StatusOK, []companyNews{
		{Headline: "aTyr shares surge after positive trial data", DateTime: fixedNow.Add(-2 * time.Hour).Unix(), Source: "Reuters"},
		{Headline: "aTyr faces lawsuit over disclosure", DateTime: fixedNow.Add(-48 * time.Hour).Unix(), Source: "Bloomberg"},
		{Headline: "aTyr to present at conference", DateTime: fixedNow.Add(-24 * time.Hour).Unix(), Source: "PR"},
		{Headline: "  ", DateTime: fixedNow.Unix()},
	})
	defer srv.Close()

	a := New(Options{BaseURL: srv.URL, Now: func() time.Time { return fixedNow }}, nil)
	res := a.Invoke(context.Background(), "ignored", request("fh-key"))
	if !res.Succeeded() {
		t.Fatalf("result = %+v", res)
	}
	digest, ok := res.Payload.(*models.NewsDigest)
	if !ok {
		t.Fatalf("payload = %T", res.Payload)
	}
	if len(digest.Items) != 3 {
		t.Fatalf("items = %d, want 3 (blank headline dropped)", len(digest.Items))
	}
	if digest.Items[0].Sentiment != models.NewsPositive || digest.Items[2].Sentiment != models.NewsNegative {
		t.Errorf("items = %+v", digest.Items)
	}
	if digest.Positive != 1 || digest.Negative != 1 || digest.Neutral != 1 || digest.Score != 0 {
		t.Errorf("digest = %+v", digest)
	}
	if res.Usage != nil {
		t.Error("news slot is not metered")
	}
}

func TestInvokeNotConfigured(t *testing.T) {
	a := New(Options{BaseURL: "http://127.0.0.1:1"}, nil)
	res := a.Invoke(context.Background(), "", request(""))
	if res.Status != models.StatusNotConfigured {
		t.Errorf("Status = %q", res.Status)
	}
}

func TestInvokeErrors(t *testing.T) {
	tests := []struct {
		status int
		want   models.ErrorKind
	}{
		{http.StatusUnauthorized, models.ErrorAuth},
		{http.StatusForbidden, models.ErrorAuth},
		{http.StatusTooManyRequests, models.ErrorRateLimited},
		{http.StatusInternalServerError, models.ErrorTransport},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := newMockFinnhub(t, tt.status, nil)
			defer srv.Close()

			a := New(Options{BaseURL: srv.URL, Now: func() time.Time { return fixedNow }}, nil)
			res := a.Invoke(context.Background(), "", request("fh-key"))
			if res.Status != models.StatusFailed || res.Error.Kind != tt.want {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

func TestInvokeMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"not a list"}`))
	}))
	defer srv.Close()

	a := New(Options{BaseURL: srv.URL}, nil)
	res := a.Invoke(context.Background(), "", request("fh-key"))
	if res.Error == nil || res.Error.Kind != models.ErrorMalformedResponse {
		t.Errorf("result = %+v", res)
	}
}

package cost

import (
	"math"
	"testing"

	"github.com/seenimoa/tickerscan/pkg/models"
)

func TestCostZero(t *testing.T) {
	for name, r := range ProviderRates {
		if !Cost(0, 0, r).IsZero() {
			t.Errorf("%s: cost(0,0) should be zero", name)
		}
	}
	for tier, r := range OrchestratorRates {
		if !Cost(0, 0, r).IsZero() {
			t.Errorf("%s: cost(0,0) should be zero", tier)
		}
	}
}

func TestCostFormula(t *testing.T) {
	r := OrchestratorRates[TierPremium]
	// 1200/1000*0.003 + 800/1000*0.015 = 0.0036 + 0.012 = 0.0156
	got := Cost(1200, 800, r).InexactFloat64()
	if got != 0.0156 {
		t.Fatalf("premium cost: got %v, want 0.0156", got)
	}

	fast := OrchestratorRates[TierFast]
	// 1000*0.00025/1000 + 1000*0.00125/1000 = 0.0015
	if got := Cost(1000, 1000, fast).InexactFloat64(); got != 0.0015 {
		t.Fatalf("fast cost: got %v, want 0.0015", got)
	}
}

func TestCostRoundsToFourPlaces(t *testing.T) {
	r := NewRates("x", 0.00025, 0)
	// 333/1000*0.00025 = 0.00008325 → 0.0001
	if got := Cost(333, 0, r).String(); got != "0.0001" {
		t.Fatalf("got %s, want 0.0001", got)
	}
}

func TestCostMonotonic(t *testing.T) {
	r := OrchestratorRates[TierPremium]
	prev := Cost(0, 0, r)
	for in := int64(0); in <= 5000; in += 250 {
		c := Cost(in, 100, r)
		if c.LessThan(prev) && in > 0 {
			t.Fatalf("not monotonic in input at %d", in)
		}
		prev = c
	}
	prev = Cost(100, 0, r)
	for out := int64(0); out <= 5000; out += 250 {
		c := Cost(100, out, r)
		if c.LessThan(prev) {
			t.Fatalf("not monotonic in output at %d", out)
		}
		prev = c
	}
}

func TestCostAdditive(t *testing.T) {
	r := OrchestratorRates[TierPremium]
	pairs := [][2]int64{{1500, 400}, {900, 1200}, {37, 11}, {0, 5}}
	var sumIn, sumOut int64
	var separate float64
	for _, p := range pairs {
		separate += Cost(p[0], p[1], r).InexactFloat64()
		sumIn += p[0]
		sumOut += p[1]
	}
	combined := Cost(sumIn, sumOut, r).InexactFloat64()
	tol := float64(len(pairs)) * 0.00005
	if math.Abs(separate-combined) > tol+1e-12 {
		t.Fatalf("separate %v vs combined %v exceeds tolerance %v", separate, combined, tol)
	}
}

func TestNegativeUnitsClamp(t *testing.T) {
	r := ProviderRates[models.ProviderGrok]
	if !Cost(-10, -10, r).IsZero() {
		t.Fatal("negative units should cost nothing")
	}
}

func TestUsageDerivesCost(t *testing.T) {
	u := Usage(2000, 1000, ProviderRates[models.ProviderGrok])
	// 2*0.002 + 1*0.010 = 0.014
	if u.CostUSD != 0.014 || u.InputUnits != 2000 || u.OutputUnits != 1000 {
		t.Fatalf("unexpected usage: %+v", u)
	}
}

func TestLedger(t *testing.T) {
	var l Ledger
	l.Record(models.StageOrchestration, models.ProviderOrchestrator, nil)
	if len(l.Entries()) != 0 || !l.Total().IsZero() {
		t.Fatal("nil usage must not be recorded")
	}

	a := Usage(1200, 800, OrchestratorRates[TierPremium])      // 0.0156
	b := Usage(2000, 1000, ProviderRates[models.ProviderGrok]) // 0.014
	l.Record(models.StageOrchestration, models.ProviderOrchestrator, &a)
	l.Record(models.StageDispatch, models.ProviderGrok, &b)

	if got := l.TotalUSD(); got != 0.0296 {
		t.Fatalf("total: got %v, want 0.0296", got)
	}
	entries := l.Entries()
	if len(entries) != 2 || entries[0].Stage != models.StageOrchestration {
		t.Fatalf("entries: %+v", entries)
	}
	entries[0].Stage = "mutated"
	if l.Entries()[0].Stage != models.StageOrchestration {
		t.Fatal("Entries must return a copy")
	}
}

func TestParseTier(t *testing.T) {
	if ParseTier("premium") != TierPremium || ParseTier("fast") != TierFast || ParseTier("bogus") != TierFast {
		t.Fatal("ParseTier mapping wrong")
	}
}

func TestRatesFor(t *testing.T) {
	premium := OrchestratorRates[TierPremium]
	fast := OrchestratorRates[TierFast]
	tests := []struct {
		name      string
		model     string
		fallback  Rates
		wantIn    float64
		wantOut   float64
		wantKnown bool
	}{
		{"empty keeps fallback", "", fast, 0.00025, 0.00125, true},
		{"premium model on fast tier", "claude-sonnet-4-20250514", fast, 0.003, 0.015, true},
		{"dated release resolves to family", "gpt-4o-mini-2024-07-18", Rates{}, 0.00015, 0.0006, true},
		{"longest prefix wins", "gpt-4o-2024-11-20", Rates{}, 0.0025, 0.010, true},
		{"grok mini not grok", "grok-3-mini-fast", premium, 0.002, 0.010, true},
		{"unknown model keeps fallback", "claude-custom", fast, 0.00025, 0.00125, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := RatesFor(tt.model, tt.fallback)
			if known != tt.wantKnown {
				t.Errorf("known = %v, want %v", known, tt.wantKnown)
			}
			if in, _ := got.InputPerThousand.Float64(); in != tt.wantIn {
				t.Errorf("input rate = %v, want %v", in, tt.wantIn)
			}
			if out, _ := got.OutputPerThousand.Float64(); out != tt.wantOut {
				t.Errorf("output rate = %v, want %v", out, tt.wantOut)
			}
			if tt.model != "" && got.Model != tt.model {
				t.Errorf("Model = %q, want %q", got.Model, tt.model)
			}
		})
	}
}

func TestDefaultModelsMatchModelRates(t *testing.T) {
	defaults := []Rates{OrchestratorRates[TierPremium], OrchestratorRates[TierFast]}
	for _, r := range ProviderRates {
		defaults = append(defaults, r)
	}
	for _, want := range defaults {
		got, known := RatesFor(want.Model, Rates{})
		if !known {
			t.Errorf("%s: no ModelRates entry", want.Model)
			continue
		}
		if !got.InputPerThousand.Equal(want.InputPerThousand) || !got.OutputPerThousand.Equal(want.OutputPerThousand) {
			t.Errorf("%s: ModelRates %v/%v disagree with default %v/%v", want.Model,
				got.InputPerThousand, got.OutputPerThousand, want.InputPerThousand, want.OutputPerThousand)
		}
	}
}

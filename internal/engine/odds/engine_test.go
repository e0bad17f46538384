package odds

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/radieske/casino-wager-engine/internal/engine/exposure"
	"github.com/radieske/casino-wager-engine/internal/engine/profile"
)

func newTestEngine() (*Engine, *exposure.Ledger) {
	ledger := exposure.New(nil, nil)
	return New(profile.Defaults(), ledger), ledger
}

func testEvent(id string) Event {
	return Event{ID: id, HomeTeam: "Alfa FC", AwayTeam: "Beta FC", League: "serie-x", Status: StatusScheduled}
}

func TestQuoteDeterministic(t *testing.T) {
	eng, _ := newTestEngine()
	ev := testEvent("ev-determinism")

	q1, err := eng.Quote(ev, MarketMatchOdds, "GC")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	q2, err := eng.Quote(ev, MarketMatchOdds, "GC")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if q1 != q2 {
		t.Errorf("same event and unchanged ledger must give identical quotes:\n%+v\n%+v", q1, q2)
	}
}

func TestQuoteOddsAtLeastOne(t *testing.T) {
	eng, _ := newTestEngine()

	for i := 0; i < 200; i++ {
		ev := testEvent(fmt.Sprintf("ev-%d", i))
		for _, cur := range []string{"GC", "SC"} {
			q, err := eng.Quote(ev, MarketMatchOdds, cur)
			if err != nil {
				t.Fatalf("quote failed: %v", err)
			}
			for name, o := range map[string]float64{
				"home": q.HomeOdds, "draw": q.DrawOdds, "away": q.AwayOdds,
				"over": q.OverOdds, "under": q.UnderOdds,
			} {
				if o < 1.0 {
					t.Fatalf("event %s %s/%s: odds %s=%v below 1.0", ev.ID, cur, q.Market, name, o)
				}
			}
		}
	}
}

func TestQuoteRespectsRTPCap(t *testing.T) {
	eng, _ := newTestEngine()
	table := profile.Defaults()

	for i := 0; i < 200; i++ {
		ev := testEvent(fmt.Sprintf("cap-ev-%d", i))
		for _, cur := range []string{"GC", "SC"} {
			prof, _ := table.For(cur)
			q, err := eng.Quote(ev, MarketMatchOdds, cur)
			if err != nil {
				t.Fatalf("quote failed: %v", err)
			}
			eff := 1 / (1/q.HomeOdds + 1/q.DrawOdds + 1/q.AwayOdds)
			if eff > prof.RTPCap+1e-9 {
				t.Fatalf("event %s %s: effective RTP %v exceeds cap %v", ev.ID, cur, eff, prof.RTPCap)
			}
		}
	}
}

func TestExpectedValueNegativeForAllOutcomes(t *testing.T) {
	eng, _ := newTestEngine()

	for i := 0; i < 100; i++ {
		ev := testEvent(fmt.Sprintf("ev-edge-%d", i))
		q, err := eng.Quote(ev, MarketMatchOdds, "GC")
		if err != nil {
			t.Fatalf("quote failed: %v", err)
		}
		home, draw, away := BaseProbabilities(ev.ID)
		for name, pair := range map[string][2]float64{
			"home": {home, q.HomeOdds},
			"draw": {draw, q.DrawOdds},
			"away": {away, q.AwayOdds},
		} {
			if val := ExpectedValue(pair[0], pair[1]); val >= 0 {
				t.Fatalf("outcome %s: expected value %v not negative (prob=%v odds=%v)", name, val, pair[0], pair[1])
			}
		}
	}
}

func TestBaseProbabilitiesWellFormed(t *testing.T) {
	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("prob-ev-%d", i)
		home, draw, away := BaseProbabilities(id)
		if draw < 0.05 {
			t.Fatalf("event %s: draw prob %v below floor", id, draw)
		}
		sum := home + draw + away
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("event %s: probabilities sum to %v", id, sum)
		}
		if home <= 0 || away <= 0 {
			t.Fatalf("event %s: non-positive side prob home=%v away=%v", id, home, away)
		}
	}
}

func TestExposureShadingMovesOdds(t *testing.T) {
	eng, ledger := newTestEngine()
	ev := testEvent("ev-shade")

	before, err := eng.Quote(ev, MarketMatchOdds, "GC")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	// GC risk_threshold = 0.60; 90% do volume no home dispara o shading
	ctx := context.Background()
	ledger.Record(ctx, ev.ID, MarketMatchOdds, "GC", SelectionHome, 900_00)
	ledger.Record(ctx, ev.ID, MarketMatchOdds, "GC", SelectionAway, 100_00)

	after, err := eng.Quote(ev, MarketMatchOdds, "GC")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	if after.HomeOdds >= before.HomeOdds {
		t.Errorf("over-exposed home odds should drop: before=%v after=%v", before.HomeOdds, after.HomeOdds)
	}
	if after.AwayOdds <= before.AwayOdds {
		t.Errorf("opposing away odds should rise: before=%v after=%v", before.AwayOdds, after.AwayOdds)
	}
	if after.DrawOdds <= before.DrawOdds {
		t.Errorf("opposing draw odds should rise: before=%v after=%v", before.DrawOdds, after.DrawOdds)
	}
}

func TestShadingBelowThresholdIsNoop(t *testing.T) {
	eng, ledger := newTestEngine()
	ev := testEvent("ev-balanced")

	before, _ := eng.Quote(ev, MarketMatchOdds, "GC")

	ctx := context.Background()
	ledger.Record(ctx, ev.ID, MarketMatchOdds, "GC", SelectionHome, 500_00)
	ledger.Record(ctx, ev.ID, MarketMatchOdds, "GC", SelectionAway, 500_00)

	after, _ := eng.Quote(ev, MarketMatchOdds, "GC")
	if before != after {
		t.Errorf("balanced book must not shade odds:\n%+v\n%+v", before, after)
	}
}

func TestQuoteUnknownMarket(t *testing.T) {
	eng, _ := newTestEngine()

	_, err := eng.Quote(testEvent("ev-1"), "first_goal", "GC")
	if !errors.Is(err, ErrUnknownMarket) {
		t.Fatalf("expected ErrUnknownMarket, got %v", err)
	}
}

func TestQuoteUnknownCurrency(t *testing.T) {
	eng, _ := newTestEngine()

	_, err := eng.Quote(testEvent("ev-1"), MarketMatchOdds, "EUR")
	if !errors.Is(err, profile.ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", err)
	}
}

func TestSpreadBounded(t *testing.T) {
	eng, _ := newTestEngine()

	for i := 0; i < 500; i++ {
		q, err := eng.Quote(testEvent(fmt.Sprintf("spread-ev-%d", i)), MarketSpread, "GC")
		if err != nil {
			t.Fatalf("quote failed: %v", err)
		}
		if q.SpreadPoints < -6.5 || q.SpreadPoints > 6.5 {
			t.Fatalf("spread %v out of bounds", q.SpreadPoints)
		}
		if math.Mod(math.Abs(q.SpreadPoints*2), 1) != 0 {
			t.Fatalf("spread %v not in half-point steps", q.SpreadPoints)
		}
	}
}

func TestSelectionOdds(t *testing.T) {
	tests := []struct {
		market    string
		selection string
		ok        bool
	}{
		{MarketMatchOdds, SelectionHome, true},
		{MarketMatchOdds, SelectionDraw, true},
		{MarketMatchOdds, SelectionAway, true},
		{MarketMatchOdds, SelectionOver, false},
		{MarketSpread, SelectionHome, true},
		{MarketSpread, SelectionDraw, false},
		{MarketTotals, SelectionOver, true},
		{MarketTotals, SelectionUnder, true},
		{MarketTotals, SelectionHome, false},
		{MarketMatchOdds, "banana", false},
	}

	eng, _ := newTestEngine()
	for _, tt := range tests {
		q, err := eng.Quote(testEvent("sel-ev"), tt.market, "GC")
		if err != nil {
			t.Fatalf("quote failed: %v", err)
		}
		o, ok := q.SelectionOdds(tt.selection)
		if ok != tt.ok {
			t.Errorf("%s/%s: ok=%v want=%v", tt.market, tt.selection, ok, tt.ok)
		}
		if ok && o < 1.0 {
			t.Errorf("%s/%s: odds %v below 1.0", tt.market, tt.selection, o)
		}
	}
}

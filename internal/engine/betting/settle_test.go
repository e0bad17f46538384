package betting

import (
	"testing"

	"github.com/radieske/casino-wager-engine/internal/engine/odds"
)

func finishedEvent(homeScore, awayScore int) odds.Event {
	return odds.Event{ID: "ev-f", Status: odds.StatusFinished, HomeScore: homeScore, AwayScore: awayScore}
}

func pendingBet(market, selection string) Bet {
	return Bet{
		ID:          "bet-1",
		EventID:     "ev-f",
		Market:      market,
		Selection:   selection,
		StakeCents:  100_00,
		PayoutCents: 250_00,
		Status:      StatusPending,
	}
}

func TestSettleMatchOdds(t *testing.T) {
	tests := []struct {
		name       string
		selection  string
		home, away int
		status     string
		credit     int64
	}{
		{"home win pays", odds.SelectionHome, 2, 0, StatusWon, 250_00},
		{"home selection loses on draw", odds.SelectionHome, 1, 1, StatusLost, 0},
		{"draw selection wins on draw", odds.SelectionDraw, 1, 1, StatusWon, 250_00},
		{"away win pays", odds.SelectionAway, 0, 3, StatusWon, 250_00},
		{"away selection loses", odds.SelectionAway, 1, 0, StatusLost, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Settle(pendingBet(odds.MarketMatchOdds, tt.selection), finishedEvent(tt.home, tt.away))
			if err != nil {
				t.Fatalf("Settle failed: %v", err)
			}
			if res.Status != tt.status {
				t.Errorf("status=%s want=%s", res.Status, tt.status)
			}
			if res.CreditCents != tt.credit {
				t.Errorf("credit=%d want=%d", res.CreditCents, tt.credit)
			}
		})
	}
}

func TestSettleSpread(t *testing.T) {
	bet := pendingBet(odds.MarketSpread, odds.SelectionHome)
	bet.SpreadPoints = -1.5 // home dá 1.5 pontos

	// home 3x1: 3 - 1.5 = 1.5 > 1, cobre
	res, err := Settle(bet, finishedEvent(3, 1))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if res.Status != StatusWon {
		t.Errorf("expected WON, got %s", res.Status)
	}

	// home 2x1: 2 - 1.5 = 0.5 < 1, não cobre
	res, _ = Settle(bet, finishedEvent(2, 1))
	if res.Status != StatusLost {
		t.Errorf("expected LOST, got %s", res.Status)
	}
}

func TestSettleSpreadPushRefundsStake(t *testing.T) {
	bet := pendingBet(odds.MarketSpread, odds.SelectionHome)
	bet.SpreadPoints = -1.0

	res, err := Settle(bet, finishedEvent(2, 1))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if res.Status != StatusPush {
		t.Errorf("expected PUSH, got %s", res.Status)
	}
	if res.CreditCents != bet.StakeCents {
		t.Errorf("push must refund stake: credit=%d", res.CreditCents)
	}
}

func TestSettleTotals(t *testing.T) {
	bet := pendingBet(odds.MarketTotals, odds.SelectionOver)
	bet.TotalPoints = 2.5

	res, err := Settle(bet, finishedEvent(2, 1))
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if res.Status != StatusWon {
		t.Errorf("over 2.5 with 3 goals should win, got %s", res.Status)
	}

	under := pendingBet(odds.MarketTotals, odds.SelectionUnder)
	under.TotalPoints = 2.5
	res, _ = Settle(under, finishedEvent(1, 0))
	if res.Status != StatusWon {
		t.Errorf("under 2.5 with 1 goal should win, got %s", res.Status)
	}
}

func TestSettleRejectsUnfinishedEvent(t *testing.T) {
	ev := odds.Event{ID: "ev-f", Status: odds.StatusLive, HomeScore: 1}
	if _, err := Settle(pendingBet(odds.MarketMatchOdds, odds.SelectionHome), ev); err == nil {
		t.Fatal("expected error for unfinished event")
	}
}

func TestSettleRejectsAlreadySettledBet(t *testing.T) {
	bet := pendingBet(odds.MarketMatchOdds, odds.SelectionHome)
	bet.Status = StatusWon
	if _, err := Settle(bet, finishedEvent(1, 0)); err == nil {
		t.Fatal("expected error for already settled bet")
	}
}

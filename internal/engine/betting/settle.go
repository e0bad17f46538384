package betting

import (
	"fmt"

	"github.com/radieske/casino-wager-engine/internal/engine/odds"
)

// SettlementResult é o desfecho de uma aposta liquidada. CreditCents é o
// valor a creditar na carteira (payout em WON, estorno da stake em PUSH).
type SettlementResult struct {
	Status      string
	CreditCents int64
}

// Settle resolve uma aposta pendente contra o placar final do evento.
// Usa as linhas congeladas na própria aposta (spread/total), nunca um
// quote recalculado.
func Settle(b Bet, ev odds.Event) (SettlementResult, error) {
	if ev.Status != odds.StatusFinished {
		return SettlementResult{}, fmt.Errorf("event %s not finished", ev.ID)
	}
	if b.Status != StatusPending {
		return SettlementResult{}, fmt.Errorf("bet %s already settled: %s", b.ID, b.Status)
	}

	var won, push bool
	switch b.Market {
	case odds.MarketMatchOdds:
		winner := odds.SelectionDraw
		if ev.HomeScore > ev.AwayScore {
			winner = odds.SelectionHome
		} else if ev.AwayScore > ev.HomeScore {
			winner = odds.SelectionAway
		}
		won = b.Selection == winner

	case odds.MarketSpread:
		adjusted := float64(ev.HomeScore) + b.SpreadPoints
		away := float64(ev.AwayScore)
		switch {
		case adjusted == away:
			push = true
		case b.Selection == odds.SelectionHome:
			won = adjusted > away
		case b.Selection == odds.SelectionAway:
			won = adjusted < away
		}

	case odds.MarketTotals:
		total := float64(ev.HomeScore + ev.AwayScore)
		switch {
		case total == b.TotalPoints:
			push = true
		case b.Selection == odds.SelectionOver:
			won = total > b.TotalPoints
		case b.Selection == odds.SelectionUnder:
			won = total < b.TotalPoints
		}

	default:
		return SettlementResult{}, fmt.Errorf("%w: %s", odds.ErrUnknownMarket, b.Market)
	}

	switch {
	case push:
		return SettlementResult{Status: StatusPush, CreditCents: b.StakeCents}, nil
	case won:
		return SettlementResult{Status: StatusWon, CreditCents: b.PayoutCents}, nil
	default:
		return SettlementResult{Status: StatusLost}, nil
	}
}

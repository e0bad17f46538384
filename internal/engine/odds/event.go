package odds

import "time"

// Status de um evento esportivo.
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinished  = "finished"
)

// Mercados precificados pelo engine.
const (
	MarketMatchOdds = "match_odds" // 1x2
	MarketSpread    = "spread"
	MarketTotals    = "totals"
)

// Seleções aceitas numa aposta.
const (
	SelectionHome  = "home"
	SelectionDraw  = "draw"
	SelectionAway  = "away"
	SelectionOver  = "over"
	SelectionUnder = "under"
)

// Event representa um evento esportivo (partida). Criado e atualizado pelo
// coletor de feed externo; o engine só lê.
type Event struct {
	ID        string    `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	League    string    `json:"league"`
	Status    string    `json:"status"` // scheduled | live | finished
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	StartTime time.Time `json:"start_time"`
}

func ValidMarket(market string) bool {
	switch market {
	case MarketMatchOdds, MarketSpread, MarketTotals:
		return true
	}
	return false
}

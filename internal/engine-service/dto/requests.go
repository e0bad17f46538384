package dto

type PlaceBetRequest struct {
	UserID    string `json:"userId"`
	EventID   string `json:"eventId"`
	Market    string `json:"market"`    // "match_odds" | "spread" | "totals"
	Selection string `json:"selection"` // "home" | "draw" | "away" | "over" | "under"
	Currency  string `json:"currency"`  // "GC" | "SC"
	StakeCents int64 `json:"stake_cents"`
}

type SpinRequest struct {
	UserID    string `json:"userId"`
	MachineID string `json:"machineId"`
	Currency  string `json:"currency"`
	BetCents  int64  `json:"bet_cents"`

	// Estado corrente do caller, devolvido atualizado na resposta
	Multiplier int `json:"multiplier"`
	FreeSpins  int `json:"free_spins"`
}

type UpsertEventRequest struct {
	ID        string `json:"id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	League    string `json:"league"`
	Status    string `json:"status"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	StartTime string `json:"start_time"` // RFC3339, opcional
}

package dto

type PlaceBetResponse struct {
	BetID           string  `json:"betId"`
	Status          string  `json:"status"`
	OddValue        float64 `json:"odd_value"`
	PayoutCents     int64   `json:"potential_payout_cents"`
	PayoutCapped    bool    `json:"payout_capped"` // informacional, não é falha
	NewBalanceCents int64   `json:"new_balance_cents"`
}

type BetStatusResponse struct {
	BetID  string `json:"betId"`
	Status string `json:"status"`
}

type SpinResponse struct {
	Grid             [][]string `json:"grid"`
	TotalWinCents    int64      `json:"total_win_cents"`
	LineWinCents     int64      `json:"line_win_cents"`
	BonusPrizeCents  int64      `json:"bonus_prize_cents"`
	BonusTriggered   bool       `json:"bonus_triggered"`
	FreeSpinsAwarded int        `json:"free_spins_awarded"`
	FreeSpin         bool       `json:"free_spin"` // este spin foi grátis

	// Estado para o próximo spin
	Multiplier int `json:"multiplier"`
	FreeSpins  int `json:"free_spins"`

	NewBalanceCents int64 `json:"new_balance_cents"`
}

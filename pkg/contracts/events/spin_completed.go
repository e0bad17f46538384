package events

type SpinCompleted struct {
	SpinID           string `json:"spin_id"`
	UserID           string `json:"user_id"`
	MachineID        string `json:"machine_id"`
	Currency         string `json:"currency"`
	BetCents         int64  `json:"bet_cents"`
	TotalWinCents    int64  `json:"total_win_cents"`
	BonusPrizeCents  int64  `json:"bonus_prize_cents"`
	FreeSpinsAwarded int    `json:"free_spins_awarded"`
	Multiplier       int    `json:"multiplier"`
	BonusTriggered   bool   `json:"bonus_triggered"`
	TsUnixMs         int64  `json:"ts_unix_ms"`
}

package events

type BetPlaced struct {
	BetID           string  `json:"bet_id"`
	UserID          string  `json:"user_id"`
	EventID         string  `json:"event_id"`
	Market          string  `json:"market"`
	Selection       string  `json:"selection"`
	Currency        string  `json:"currency"`
	StakeCents      int64   `json:"stake_cents"`
	OddValue        float64 `json:"odd_value"`
	PayoutCents     int64   `json:"payout_cents"` // payout potencial, já com teto aplicado
	PayoutCapped    bool    `json:"payout_capped"`
	NewBalanceCents int64   `json:"new_balance_cents"`
	TsUnixMs        int64   `json:"ts_unix_ms"`
}

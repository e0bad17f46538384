package betting

import (
	"errors"
	"time"
)

// Status de uma aposta.
const (
	StatusPending = "PENDING"
	StatusWon     = "WON"
	StatusLost    = "LOST"
	StatusPush    = "PUSH" // linha bateu exata: devolve a stake
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBetLimitExceeded  = errors.New("bet limit exceeded")
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrEventFinished     = errors.New("event already finished")
)

// Bet é a aposta registrada. Odd e payout são congelados na criação e
// nunca recalculados retroativamente.
type Bet struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	Market       string    `json:"market"`
	Selection    string    `json:"selection"`
	Currency     string    `json:"currency"`
	OddValue     float64   `json:"odd_value"` // odd efetiva (pós-teto de payout)
	StakeCents   int64     `json:"stake_cents"`
	PayoutCents  int64     `json:"payout_cents"`
	PayoutCapped bool      `json:"payout_capped"`
	SpreadPoints float64   `json:"spread_points"` // linha congelada p/ liquidação
	TotalPoints  float64   `json:"total_points"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

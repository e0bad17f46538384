package events

import "time"

// Evento emitido pelo settlement-worker após liquidar uma aposta.
type BetSettled struct {
	BetID       string    `json:"betId"`
	UserID      string    `json:"userId"`
	EventID     string    `json:"eventId"`
	Status      string    `json:"status"`       // "WON" | "LOST" | "PUSH"
	PayoutCents int64     `json:"payout_cents"` // valor creditado (estorno em PUSH)
	Ts          time.Time `json:"ts"`
}

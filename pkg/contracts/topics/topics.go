package topics

const (
	// Resultados de eventos esportivos (vindos do feed externo)
	EventResults = "event_results"

	// Bets
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// Slots
	SpinCompleted = "spin_completed"

	// DLQs
	EventResultsDLQ = "event_results_dlq"
)

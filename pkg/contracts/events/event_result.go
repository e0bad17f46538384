package events

import "time"

// Evento publicado no tópico "event_results" quando uma partida termina.
// Produzido pelo coletor de feed (colaborador externo) ou pelo simulador.
type EventResult struct {
	EventID    string    `json:"event_id"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	League     string    `json:"league"`
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
	FinishedAt time.Time `json:"finished_at"`
	Source     string    `json:"source"` // ex: "feed-collector"
}

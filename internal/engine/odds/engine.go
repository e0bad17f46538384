// Package odds transforma um evento esportivo em odds decimais negociáveis:
// probabilidades-base determinísticas por evento, margem da casa, teto de RTP
// e shading pela exposição acumulada no ledger.
package odds

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/radieske/casino-wager-engine/internal/engine/exposure"
	"github.com/radieske/casino-wager-engine/internal/engine/profile"
)

var ErrUnknownMarket = errors.New("unknown market")

// minOdds é o piso das odds decimais oferecidas, mesmo depois do shading.
const minOdds = 1.01

// Quote é o preço corrente de um evento/mercado/moeda. Valor derivado,
// recalculado a cada chamada — nunca cacheado, para refletir o ledger.
type Quote struct {
	EventID  string `json:"event_id"`
	Market   string `json:"market"`
	Currency string `json:"currency"`

	HomeOdds float64 `json:"home_odds"`
	DrawOdds float64 `json:"draw_odds"`
	AwayOdds float64 `json:"away_odds"`

	SpreadPoints float64 `json:"spread_points"`

	TotalPoints float64 `json:"total_points"`
	OverOdds    float64 `json:"over_odds"`
	UnderOdds   float64 `json:"under_odds"`
}

// SelectionOdds resolve a odd de uma seleção contra o mercado do quote.
// ok=false para seleção que não existe nesse mercado.
func (q Quote) SelectionOdds(selection string) (float64, bool) {
	switch q.Market {
	case MarketMatchOdds:
		switch selection {
		case SelectionHome:
			return q.HomeOdds, true
		case SelectionDraw:
			return q.DrawOdds, true
		case SelectionAway:
			return q.AwayOdds, true
		}
	case MarketSpread:
		// spread não tem empate: a linha decide
		switch selection {
		case SelectionHome:
			return q.HomeOdds, true
		case SelectionAway:
			return q.AwayOdds, true
		}
	case MarketTotals:
		switch selection {
		case SelectionOver:
			return q.OverOdds, true
		case SelectionUnder:
			return q.UnderOdds, true
		}
	}
	return 0, false
}

// Engine precifica eventos usando a tabela de profiles e o ledger de
// exposição. Computação pura fora do ledger; seguro para uso concorrente.
type Engine struct {
	profiles *profile.Table
	ledger   *exposure.Ledger
}

func New(profiles *profile.Table, ledger *exposure.Ledger) *Engine {
	return &Engine{profiles: profiles, ledger: ledger}
}

// Quote calcula as odds correntes de um evento/mercado/moeda.
// Mesmo evento + ledger inalterado => mesmo quote (determinismo).
func (e *Engine) Quote(ev Event, market, currency string) (Quote, error) {
	if !ValidMarket(market) {
		return Quote{}, fmt.Errorf("%w: %s", ErrUnknownMarket, market)
	}
	prof, err := e.profiles.For(currency)
	if err != nil {
		return Quote{}, err
	}

	seed := eventSeed(ev.ID)
	home, draw, away := BaseProbabilities(ev.ID)

	// margem da casa: odd oferecida = justa / (1 + edge)
	margin := 1 + prof.HouseEdge
	q := Quote{
		EventID:  ev.ID,
		Market:   market,
		Currency: currency,
		HomeOdds: (1 / home) / margin,
		DrawOdds: (1 / draw) / margin,
		AwayOdds: (1 / away) / margin,
	}

	// teto de RTP: escala as três odds para bater exatamente no cap
	if eff := effectiveRTP(q.HomeOdds, q.DrawOdds, q.AwayOdds); eff > prof.RTPCap {
		f := eff / prof.RTPCap
		q.HomeOdds /= f
		q.DrawOdds /= f
		q.AwayOdds /= f
	}

	// shading pela exposição; roda depois do cap e pode estourá-lo de leve
	// (trade-off aceito de controle de risco, não re-capado)
	if rec, ok := e.ledger.For(ev.ID, market, currency); ok && rec.TotalCents > 0 {
		e.shade(&q, rec, prof.RiskThreshold)
	}

	q.HomeOdds = math.Max(q.HomeOdds, minOdds)
	q.DrawOdds = math.Max(q.DrawOdds, minOdds)
	q.AwayOdds = math.Max(q.AwayOdds, minOdds)

	// spread e totals: mesma margem, sem cap nem shading
	q.SpreadPoints = spreadPoints(home, away)
	q.TotalPoints = totalPoints(seed)
	overProb := 0.48 + float64((seed>>40)%1000)/999.0*0.04
	q.OverOdds = math.Max((1/overProb)/margin, minOdds)
	q.UnderOdds = math.Max((1/(1-overProb))/margin, minOdds)

	return q, nil
}

// shade reduz em 10% a odd do resultado sobre-exposto e sobe as demais em
// 5–10% conforme o excesso, empurrando o fluxo para o outro lado do book.
func (e *Engine) shade(q *Quote, rec exposure.Record, threshold float64) {
	total := float64(rec.TotalCents)
	outcomes := []struct {
		name string
		odds *float64
	}{
		{SelectionHome, &q.HomeOdds},
		{SelectionDraw, &q.DrawOdds},
		{SelectionAway, &q.AwayOdds},
	}

	for _, over := range outcomes {
		share := float64(rec.OutcomeCents[over.name]) / total
		if share <= threshold {
			continue
		}
		boost := 1.05 + 0.05*math.Min(1, (share-threshold)/(1-threshold))
		*over.odds *= 0.90
		for _, other := range outcomes {
			if other.name != over.name {
				*other.odds *= boost
			}
		}
	}
}

// eventSeed deriva uma seed estável do id do evento (FNV-1a 64).
func eventSeed(eventID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(eventID))
	return h.Sum64()
}

// BaseProbabilities gera as probabilidades implícitas home/draw/away de um
// evento. Determinístico por id: a reprodutibilidade do preço-base é
// contrato, não acidente. Empate nunca fica abaixo de 5%.
func BaseProbabilities(eventID string) (home, draw, away float64) {
	seed := eventSeed(eventID)

	// três fatias independentes do hash viram pesos brutos
	homeW := 0.20 + float64(seed%1000)/999.0*0.60
	drawW := 0.05 + float64((seed>>10)%1000)/999.0*0.30
	awayW := 0.20 + float64((seed>>20)%1000)/999.0*0.60

	sum := homeW + drawW + awayW
	home = homeW / sum
	draw = drawW / sum
	away = awayW / sum

	// piso do empate: redistribui o déficit proporcionalmente entre os lados
	if draw < 0.05 {
		scale := (1 - 0.05) / (home + away)
		home *= scale
		away *= scale
		draw = 0.05
	}
	return home, draw, away
}

// effectiveRTP é o retorno implícito do book de três saídas:
// 1 / soma das probabilidades implícitas das odds oferecidas.
func effectiveRTP(homeOdds, drawOdds, awayOdds float64) float64 {
	return 1 / (1/homeOdds + 1/drawOdds + 1/awayOdds)
}

// ExpectedValue de uma unidade apostada a uma odd, dada a probabilidade
// real do resultado. Negativo para qualquer odd com margem aplicada.
func ExpectedValue(trueProb, offeredOdds float64) float64 {
	return trueProb*offeredOdds - 1
}

// spreadPoints converte a diferença de força em pontos de handicap,
// em passos de 0.5 num intervalo simétrico limitado.
func spreadPoints(homeProb, awayProb float64) float64 {
	raw := (homeProb - awayProb) * 10
	pts := math.Round(raw*2) / 2
	if pts > 6.5 {
		pts = 6.5
	}
	if pts < -6.5 {
		pts = -6.5
	}
	return pts
}

// totalPoints deriva a linha de gols do mesmo seed do evento.
func totalPoints(seed uint64) float64 {
	return 1.5 + float64((seed>>30)%4)
}

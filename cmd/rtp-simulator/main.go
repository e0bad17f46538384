// Binário offline de calibração: roda um volume grande de spins contra uma
// máquina e compara o RTP observado com o alvo configurado, e demonstra o
// efeito do shading de odds sob exposição crescente num só lado do book.
package main

import (
	"context"
	"flag"
	"math/rand"

	"go.uber.org/zap"

	"github.com/radieske/casino-wager-engine/internal/engine/exposure"
	"github.com/radieske/casino-wager-engine/internal/engine/odds"
	"github.com/radieske/casino-wager-engine/internal/engine/profile"
	"github.com/radieske/casino-wager-engine/internal/engine/slots"
	"github.com/radieske/casino-wager-engine/internal/shared/logger"
)

func main() {
	var (
		machineID = flag.String("machine", "classic-3", "id da máquina")
		spins     = flag.Int("spins", 1_000_000, "quantidade de spins")
		betCents  = flag.Int64("bet", 100, "aposta por spin, em centavos")
		seed      = flag.Int64("seed", 1, "seed do RNG")
		currency  = flag.String("currency", "GC", "moeda para a demo de shading")
	)
	flag.Parse()

	log, err := logger.New("rtp-simulator", "local")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	machines := slots.Defaults()
	machine, err := machines.Machine(*machineID)
	if err != nil {
		log.Fatal("machine", zap.Error(err))
	}

	simulateSlots(log, machine, *spins, *betCents, *seed)
	simulateShading(log, *currency)
}

func simulateSlots(log *zap.Logger, m *slots.Machine, spins int, betCents, seed int64) {
	rng := rand.New(rand.NewSource(seed))

	var wagered, paid, bonusPaid int64
	var bonusHits, freeSpinAwards int
	st := slots.State{Multiplier: 1}

	for i := 0; i < spins; i++ {
		out := slots.Spin(m, betCents, st, rng)
		wagered += betCents
		paid += out.TotalWinCents
		bonusPaid += out.BonusPrizeCents
		if out.BonusTriggered {
			bonusHits++
		}
		freeSpinAwards += out.FreeSpinsAwarded
	}

	log.Info("slot simulation",
		zap.String("machine", m.ID),
		zap.Int("spins", spins),
		zap.Float64("rtp_target", m.RTPTarget/100),
		zap.Float64("rtp_observed", float64(paid)/float64(wagered)),
		zap.Int64("wagered_cents", wagered),
		zap.Int64("paid_cents", paid),
		zap.Int64("bonus_paid_cents", bonusPaid),
		zap.Int("bonus_hits", bonusHits),
		zap.Int("free_spins_awarded", freeSpinAwards),
	)
}

// simulateShading mostra as odds de um evento antes e depois de carga
// pesada num lado só: o lado exposto encurta, os outros alongam.
func simulateShading(log *zap.Logger, currency string) {
	profiles := profile.Defaults()
	ledger := exposure.New(nil, log)
	engine := odds.New(profiles, ledger)

	ev := odds.Event{ID: "sim-evt-1", HomeTeam: "Home", AwayTeam: "Away", Status: odds.StatusScheduled}

	before, err := engine.Quote(ev, odds.MarketMatchOdds, currency)
	if err != nil {
		log.Fatal("quote", zap.Error(err))
	}

	// 90% do volume no mandante, em lotes, como uma corrida de apostas
	ctx := context.Background()
	for i := 0; i < 90; i++ {
		ledger.Record(ctx, ev.ID, odds.MarketMatchOdds, currency, odds.SelectionHome, 100_00)
	}
	for i := 0; i < 10; i++ {
		ledger.Record(ctx, ev.ID, odds.MarketMatchOdds, currency, odds.SelectionAway, 100_00)
	}

	after, err := engine.Quote(ev, odds.MarketMatchOdds, currency)
	if err != nil {
		log.Fatal("quote", zap.Error(err))
	}

	log.Info("shading simulation",
		zap.String("currency", currency),
		zap.Float64("home_before", before.HomeOdds),
		zap.Float64("home_after", after.HomeOdds),
		zap.Float64("draw_before", before.DrawOdds),
		zap.Float64("draw_after", after.DrawOdds),
		zap.Float64("away_before", before.AwayOdds),
		zap.Float64("away_after", after.AwayOdds),
	)
}

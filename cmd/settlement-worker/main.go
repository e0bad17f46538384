package main

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	betrepo "github.com/radieske/casino-wager-engine/internal/engine-service/repo"
	"github.com/radieske/casino-wager-engine/internal/engine/betting"
	"github.com/radieske/casino-wager-engine/internal/engine/odds"
	"github.com/radieske/casino-wager-engine/internal/shared/config"
	"github.com/radieske/casino-wager-engine/internal/shared/db"
	"github.com/radieske/casino-wager-engine/internal/shared/kafka"
	"github.com/radieske/casino-wager-engine/internal/shared/logger"
	"github.com/radieske/casino-wager-engine/internal/shared/metrics"
	ev "github.com/radieske/casino-wager-engine/pkg/contracts/events"
)

var (
	resultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_results_total", Help: "Resultados de eventos consumidos.",
	})
	settledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_bets_total", Help: "Apostas liquidadas por desfecho.",
	}, []string{"status"})
	dlqTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_dlq_total", Help: "Resultados enviados para a DLQ.",
	})
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "settlement-worker"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Consome event_results; publica bet_settled e, em falha, DLQ
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicEventResults, "settlement")
	defer reader.Close()

	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicEventResultsDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicEventResultsDLQ)
		defer dlqWriter.Close()
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := betrepo.NewPostgres(pg)
	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicEventResults),
		zap.String("publish", cfg.TopicBetSettled),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("shutting down")
				return
			}
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var result ev.EventResult
		if jerr := json.Unmarshal(msg.Value, &result); jerr != nil {
			log.Error("unmarshal event_result", zap.Error(jerr))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
				dlqTotal.Inc()
			}
			continue
		}
		resultsTotal.Inc()

		if err := settleEvent(ctx, log, repo, settledWriter, &result); err != nil {
			log.Error("settle event", zap.String("eventId", result.EventID), zap.Error(err))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, result.EventID, msg.Value)
				dlqTotal.Inc()
			}
		}
	}
}

// settleEvent liquida todas as apostas pendentes de um evento encerrado.
// Cada aposta é uma transação própria; falha numa não bloqueia as demais.
func settleEvent(
	ctx context.Context,
	log *zap.Logger,
	repo *betrepo.Postgres,
	settledWriter *kafkago.Writer,
	result *ev.EventResult,
) error {
	finished := odds.Event{
		ID:        result.EventID,
		HomeTeam:  result.HomeTeam,
		AwayTeam:  result.AwayTeam,
		League:    result.League,
		Status:    odds.StatusFinished,
		HomeScore: result.HomeScore,
		AwayScore: result.AwayScore,
	}

	pending, err := repo.PendingByEvent(ctx, result.EventID)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	var failed int
	for _, bet := range pending {
		outcome, err := betting.Settle(bet, finished)
		if err != nil {
			log.Error("grade bet", zap.String("betId", bet.ID), zap.Error(err))
			failed++
			continue
		}
		if err := repo.Settle(ctx, bet.ID, outcome.Status, outcome.CreditCents); err != nil {
			log.Error("persist settlement", zap.String("betId", bet.ID), zap.Error(err))
			failed++
			continue
		}
		settledTotal.WithLabelValues(outcome.Status).Inc()

		payload, _ := json.Marshal(ev.BetSettled{
			BetID:       bet.ID,
			UserID:      bet.UserID,
			EventID:     bet.EventID,
			Status:      outcome.Status,
			PayoutCents: outcome.CreditCents,
			Ts:          time.Now(),
		})
		if err := kafka.WriteJSON(ctx, settledWriter, bet.ID, payload); err != nil {
			// liquidação já persistida; só o evento se perdeu
			log.Warn("publish bet_settled", zap.String("betId", bet.ID), zap.Error(err))
		}
	}

	log.Info("event settled",
		zap.String("eventId", result.EventID),
		zap.Int("bets", len(pending)),
		zap.Int("failed", failed),
	)
	if failed > 0 {
		return errors.New("some bets failed to settle")
	}
	return nil
}

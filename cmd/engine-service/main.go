package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	ehttp "github.com/radieske/casino-wager-engine/internal/engine-service/http"
	"github.com/radieske/casino-wager-engine/internal/engine-service/eventstore"
	"github.com/radieske/casino-wager-engine/internal/engine-service/exposurestore"
	"github.com/radieske/casino-wager-engine/internal/engine-service/producer"
	betrepo "github.com/radieske/casino-wager-engine/internal/engine-service/repo"
	"github.com/radieske/casino-wager-engine/internal/engine/betting"
	"github.com/radieske/casino-wager-engine/internal/engine/exposure"
	"github.com/radieske/casino-wager-engine/internal/engine/odds"
	"github.com/radieske/casino-wager-engine/internal/engine/profile"
	"github.com/radieske/casino-wager-engine/internal/engine/slots"
	"github.com/radieske/casino-wager-engine/internal/shared/cache"
	"github.com/radieske/casino-wager-engine/internal/shared/config"
	"github.com/radieske/casino-wager-engine/internal/shared/db"
	"github.com/radieske/casino-wager-engine/internal/shared/kafka"
	"github.com/radieske/casino-wager-engine/internal/shared/logger"
	"github.com/radieske/casino-wager-engine/internal/shared/metrics"
	walletrepo "github.com/radieske/casino-wager-engine/internal/wallet/repo"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "engine-service"
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres (apostas + carteiras)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (snapshot do ledger de exposição)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers
	betWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer betWriter.Close()
	spinWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicSpinCompleted)
	defer spinWriter.Close()

	// Perfis de moeda e máquinas: YAML opcional, senão defaults embutidos
	profiles, machines := loadEngineConfig(log, cfg.EngineConfigPath)

	// Ledger de exposição, restaurado do último snapshot
	store := exposurestore.New(rdb)
	ledger := exposure.New(store, log)
	if recs, err := store.LoadAll(context.Background()); err != nil {
		log.Warn("exposure snapshot load failed, starting empty", zap.Error(err))
	} else if len(recs) > 0 {
		ledger.Restore(recs)
		log.Info("exposure ledger restored", zap.Int("records", len(recs)))
	}

	bets := betrepo.NewPostgres(pg)
	wallets := walletrepo.NewPostgres(pg)
	quoter := odds.New(profiles, ledger)
	placer := betting.NewService(profiles, ledger, bets, log)
	publ := producer.NewKafkaPublisher(betWriter, spinWriter)

	api := ehttp.NewServer(log, eventstore.New(), quoter, placer, profiles, machines, ledger, bets, wallets, publ)

	// Métricas de negócio; os handlers só chamam os hooks
	quotesTotal := promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_quotes_total", Help: "Quotes servidas.",
	})
	betsTotal := promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_bets_total", Help: "Apostas por resultado da colocação.",
	}, []string{"result"})
	spinsTotal := promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_spins_total", Help: "Spins executados.",
	})
	api.OnQuote = quotesTotal.Inc
	api.OnBet = func(result string) { betsTotal.WithLabelValues(result).Inc() }
	api.OnSpin = spinsTotal.Inc

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	addr := ":" + cfg.HTTPPort
	log.Info("engine-service listening", zap.String("addr", addr))
	srv := &http.Server{Addr: addr, Handler: api.Router()}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}

func loadEngineConfig(log *zap.Logger, path string) (*profile.Table, *slots.Registry) {
	if path == "" {
		return profile.Defaults(), slots.Defaults()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("read engine config", zap.String("path", path), zap.Error(err))
	}
	profiles, err := profile.LoadYAML(data)
	if err != nil {
		log.Fatal("parse currency profiles", zap.String("path", path), zap.Error(err))
	}
	machines, err := slots.LoadYAML(data)
	if err != nil {
		log.Fatal("parse slot machines", zap.String("path", path), zap.Error(err))
	}
	log.Info("engine config loaded", zap.String("path", path))
	return profiles, machines
}

package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/casino-wager-engine/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de domínio do engine-service.
type KafkaPublisher struct {
	BetWriter  *kafka.Writer
	SpinWriter *kafka.Writer
}

func NewKafkaPublisher(betWriter, spinWriter *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{BetWriter: betWriter, SpinWriter: spinWriter}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.BetWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.BetID), Value: b})
}

func (p *KafkaPublisher) PublishSpinCompleted(ctx context.Context, e events.SpinCompleted) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.SpinWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.SpinID), Value: b})
}

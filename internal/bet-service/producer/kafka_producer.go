package producer

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	skafka "github.com/solbet/solbet-platform/internal/shared/kafka"
	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

// KafkaPublisher publica eventos de apostas no tópico bet_events, com a aposta como chave
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e events.BetEvent) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now().UTC()
	}
	return skafka.WriteJSON(ctx, p.Writer, e.BetID, e)
}

package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

// MessageReader é a parte do kafka.Reader usada pelo processor
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// StatsRecomputer recalcula a visão materializada de um usuário
type StatsRecomputer interface {
	RecomputeStats(ctx context.Context, userID string) error
}

// Processor consome bet_events e atualiza user_stats dos usuários afetados
type Processor struct {
	Log    *zap.Logger
	Reader MessageReader
	Stats  StatsRecomputer

	OnConsumed   func()       // métricas
	OnRecomputed func()       // métricas
	OnError      func(string) // métricas por fase
}

// Run inicia o loop de consumo até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.BetEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			p.fail("decode")
			continue
		}
		p.Handle(ctx, ev)
	}
}

// Handle recalcula as estatísticas de cada usuário do evento. Falha de um
// usuário não impede os demais.
func (p *Processor) Handle(ctx context.Context, ev events.BetEvent) {
	for _, id := range affectedUsers(ev) {
		if err := p.Stats.RecomputeStats(ctx, id); err != nil {
			p.Log.Warn("stats recompute failed",
				zap.String("userId", id),
				zap.String("betId", ev.BetID),
				zap.String("type", string(ev.Type)),
				zap.Error(err),
			)
			p.fail("recompute")
			continue
		}
		if p.OnRecomputed != nil {
			p.OnRecomputed()
		}
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

// affectedUsers usa a lista do evento; eventos sem lista afetam só o ator
func affectedUsers(ev events.BetEvent) []string {
	if len(ev.UserIDs) > 0 {
		return ev.UserIDs
	}
	if ev.ActorID != "" {
		return []string{ev.ActorID}
	}
	return nil
}

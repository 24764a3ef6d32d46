// Package confirmer acompanha as assinaturas on-chain das transações pendentes
// e grava o resultado no ledger.
package confirmer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/tx-confirmation/dto"
	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

type StatusFetcher interface {
	SignatureStatus(ctx context.Context, signature string) (*dto.SignatureStatus, error)
}

type TxConfirmer interface {
	ConfirmTransaction(ctx context.Context, id string, status domain.TransactionStatus) (bool, error)
}

// DeadLetter recebe os eventos que esgotaram as tentativas
type DeadLetter interface {
	Publish(ctx context.Context, e events.BetEvent) error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Confirmer struct {
	Log         *zap.Logger
	RPC         StatusFetcher
	Tx          TxConfirmer
	DLQ         DeadLetter // opcional
	MaxAttempts int
	Backoff     time.Duration // espera base, multiplicada pela tentativa

	OnResult func(result string) // métricas: confirmed | failed | stale | dlq
}

// Classify traduz o status da rede. done=false quando ainda não há decisão.
func Classify(st *dto.SignatureStatus) (status domain.TransactionStatus, done bool) {
	switch {
	case st == nil:
		return domain.TxPending, false
	case st.Err != nil:
		return domain.TxFailed, true
	case st.ConfirmationStatus == "confirmed" || st.ConfirmationStatus == "finalized":
		return domain.TxConfirmed, true
	default:
		return domain.TxPending, false
	}
}

// Run consome bet_events até o contexto ser cancelado
func (c *Confirmer) Run(ctx context.Context, r MessageReader) error {
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Log.Warn("kafka read failed", zap.Error(err))
			time.Sleep(500 * time.Millisecond)
			continue
		}
		var ev events.BetEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.Log.Warn("invalid message", zap.Error(err))
			continue
		}
		if !ev.NeedsConfirmation() {
			continue
		}
		if err := c.Handle(ctx, ev); err != nil && ctx.Err() == nil {
			c.Log.Error("confirm transaction", zap.String("txId", ev.TransactionID), zap.Error(err))
		}
	}
}

// Handle consulta a assinatura com retry e backoff linear; sem decisão depois
// de MaxAttempts o evento vai para a DLQ.
func (c *Confirmer) Handle(ctx context.Context, ev events.BetEvent) error {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		st, err := c.RPC.SignatureStatus(ctx, ev.TxHash)
		if err == nil {
			if status, done := Classify(st); done {
				return c.record(ctx, ev, status)
			}
		} else {
			lastErr = err
			c.Log.Debug("signature status failed", zap.String("sig", ev.TxHash), zap.Int("attempt", i), zap.Error(err))
		}
		if i < attempts {
			if err := sleep(ctx, c.Backoff*time.Duration(i)); err != nil {
				return err
			}
		}
	}

	ev.Attempt += attempts
	c.Log.Warn("signature undecided, sending to dlq",
		zap.String("txId", ev.TransactionID),
		zap.String("sig", ev.TxHash),
		zap.Int("attempts", ev.Attempt),
		zap.NamedError("lastError", lastErr),
	)
	c.result("dlq")
	if c.DLQ == nil {
		return nil
	}
	return c.DLQ.Publish(ctx, ev)
}

func (c *Confirmer) record(ctx context.Context, ev events.BetEvent, status domain.TransactionStatus) error {
	ok, err := c.Tx.ConfirmTransaction(ctx, ev.TransactionID, status)
	if err != nil {
		return err
	}
	if !ok {
		// já decidida por outra entrega do mesmo evento
		c.result("stale")
		return nil
	}
	c.Log.Info("transaction "+string(status), zap.String("txId", ev.TransactionID), zap.String("betId", ev.BetID))
	c.result(string(status))
	return nil
}

func (c *Confirmer) result(r string) {
	if c.OnResult != nil {
		c.OnResult(r)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package events

import "time"

type BetEventType string

const (
	BetCreated   BetEventType = "created"
	BetPlaced    BetEventType = "placed"
	BetResolved  BetEventType = "resolved"
	BetClosed    BetEventType = "closed"
	BetCancelled BetEventType = "cancelled"
	BetDisputed  BetEventType = "disputed"
	BetWithdrawn BetEventType = "withdrawn"
)

// BetEvent é publicado no tópico "bet_events", chave = betId.
// Valores monetários vão como string decimal.
type BetEvent struct {
	Type          BetEventType `json:"type"`
	BetID         string       `json:"betId"`
	ActorID       string       `json:"actorId,omitempty"`
	ActorAddress  string       `json:"actorAddress,omitempty"`
	UserIDs       []string     `json:"userIds,omitempty"` // usuários cujas estatísticas mudam
	Status        string       `json:"status"`
	Position      string       `json:"position,omitempty"`
	Outcome       string       `json:"outcome,omitempty"`
	Amount        string       `json:"amount,omitempty"`
	TransactionID string       `json:"transactionId,omitempty"`
	TxHash        string       `json:"txHash,omitempty"`
	Attempt       int          `json:"attempt,omitempty"`
	Ts            time.Time    `json:"ts"`
}

// NeedsConfirmation indica se o evento carrega uma transação on-chain a confirmar
func (e BetEvent) NeedsConfirmation() bool {
	return e.TransactionID != "" && e.TxHash != ""
}

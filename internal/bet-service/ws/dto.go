package ws

import "github.com/solbet/solbet-platform/pkg/contracts/events"

// ClientMsg representa uma mensagem recebida do cliente WebSocket
type ClientMsg struct {
	Type  string `json:"type"`  // subscribe | unsubscribe | ping
	BetID string `json:"betId"` // requerido em subscribe/unsubscribe
}

// ServerMsg é o envelope enviado aos clientes
type ServerMsg struct {
	Type    string             `json:"type"` // pool | pong | error
	BetID   string             `json:"betId,omitempty"`
	Payload *events.PoolUpdate `json:"payload,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Package api define os corpos JSON da API REST do bet-service, compartilhados
// entre o servidor e o pkg/client.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nas mutações a carteira vem do token; o campo no corpo é opcional e, se
// presente, precisa bater com a sessão.

type CreateBetRequest struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Category    string           `json:"category" validate:"required"`
	MinimumBet  *decimal.Decimal `json:"minimumBet,omitempty"`
	MaximumBet  *decimal.Decimal `json:"maximumBet,omitempty"`
	EndTime     *time.Time       `json:"endTime,omitempty"`
	Creator     string           `json:"creator,omitempty"`
}

type PlaceBetRequest struct {
	Position      string           `json:"position" validate:"required"` // yes | no
	Amount        *decimal.Decimal `json:"amount" validate:"required"`   // em SOL
	WalletAddress string           `json:"walletAddress,omitempty"`
	OnChainTxID   *string          `json:"onChainTxId,omitempty"`
}

type WithdrawRequest struct {
	WalletAddress string  `json:"walletAddress,omitempty"`
	OnChainTxID   *string `json:"onChainTxId,omitempty"`
}

type ResolveBetRequest struct {
	WalletAddress string  `json:"walletAddress,omitempty"`
	Outcome       string  `json:"outcome" validate:"required"`
	OnChainTxID   *string `json:"onChainTxId,omitempty"`
}

// ActorRequest serve close, cancel e dispute
type ActorRequest struct {
	WalletAddress string `json:"walletAddress,omitempty"`
}

type ConnectWalletRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
}

// LoginRequest carrega a assinatura base58 da mensagem devolvida por /auth/nonce
type LoginRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	Signature     string `json:"signature" validate:"required"`
}

type DevLoginRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
}

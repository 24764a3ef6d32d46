package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type Participant struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	BetID         string          `json:"betId"`
	WalletAddress string          `json:"walletAddress"`
	Position      string          `json:"position"`
	Amount        decimal.Decimal `json:"amount"`
	Claimed       bool            `json:"claimed"`
	OnChainTxID   *string         `json:"onChainTxId,omitempty"`
	CreatedAt     time.Time       `json:"timestamp"`
}

// Bet é a aposta como a API devolve, já com as odds derivadas dos pools
type Bet struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	Category             string          `json:"category"`
	Status               string          `json:"status"`
	Outcome              *string         `json:"outcome"`
	YesPool              decimal.Decimal `json:"yesPool"`
	NoPool               decimal.Decimal `json:"noPool"`
	TotalPool            decimal.Decimal `json:"totalPool"`
	YesPercentage        float64         `json:"yesPercentage"`
	NoPercentage         float64         `json:"noPercentage"`
	MinimumBet           decimal.Decimal `json:"minimumBet"`
	MaximumBet           decimal.Decimal `json:"maximumBet"`
	StartTime            time.Time       `json:"startTime"`
	EndTime              time.Time       `json:"endTime"`
	CreatorID            string          `json:"creatorId"`
	Creator              string          `json:"creator"`
	CreatorName          *string         `json:"creatorName"`
	ParticipantCount     int             `json:"participantCount"`
	Participants         []Participant   `json:"participants"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
	ResolvedAt           *time.Time      `json:"resolvedAt,omitempty"`
	ResolutionTxID       *string         `json:"resolutionTxId,omitempty"`
	OnChainBetAddress    *string         `json:"onChainBetAddress,omitempty"`
	OnChainEscrowAddress *string         `json:"onChainEscrowAddress,omitempty"`
}

type BetList struct {
	Bets        []Bet `json:"bets"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	TotalBets   int   `json:"totalBets"`
}

type Odds struct {
	YesPercentage float64         `json:"yesPercentage"`
	NoPercentage  float64         `json:"noPercentage"`
	TotalPool     decimal.Decimal `json:"totalPool"`
}

// Quote simula uma colocação sem alterar a aposta
type Quote struct {
	Position        string          `json:"position"`
	Amount          decimal.Decimal `json:"amount"`
	PotentialPayout decimal.Decimal `json:"potentialPayout"`
	Multiplier      decimal.Decimal `json:"multiplier"`
	OddsAfter       Odds            `json:"oddsAfter"`
}

type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	BetID     *string         `json:"betId,omitempty"`
	BetTitle  *string         `json:"betTitle,omitempty"`
	TxHash    *string         `json:"txHash,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type WithdrawResponse struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Payout      decimal.Decimal `json:"payout"`
	UserBet     Participant     `json:"userBet"`
	Transaction Transaction     `json:"transaction"`
}

type UserStats struct {
	BetsCreated   int             `json:"betsCreated"`
	BetsJoined    int             `json:"betsJoined"`
	WinRate       int             `json:"winRate"`
	TotalWinnings decimal.Decimal `json:"totalWinnings"`
}

// UserBet é uma participação com o resultado visto pelo apostador
type UserBet struct {
	ID              string          `json:"id"`
	BetID           string          `json:"betId"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Position        string          `json:"position"`
	Amount          decimal.Decimal `json:"amount"`
	PotentialReturn decimal.Decimal `json:"potentialReturn"`
	Outcome         string          `json:"outcome"` // win | loss | pending
	Status          string          `json:"status"`
	Claimed         bool            `json:"claimed"`
	ExpiresAt       time.Time       `json:"expiresAt"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type UserBetsResponse struct {
	Bets []UserBet `json:"bets"`
}

// ChainAddresses são as contas on-chain da aposta e do escrow
type ChainAddresses struct {
	BetAccount    string `json:"betAccount"`
	EscrowAccount string `json:"escrowAccount"`
}

// NonceResponse traz a mensagem exata que a carteira deve assinar
type NonceResponse struct {
	WalletAddress string    `json:"walletAddress"`
	Nonce         string    `json:"nonce"`
	Message       string    `json:"message"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type User struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	DisplayName   *string   `json:"displayName,omitempty"`
	Avatar        *string   `json:"avatar,omitempty"`
	Theme         string    `json:"theme"`
	Notifications bool      `json:"notifications"`
	CreatedAt     time.Time `json:"createdAt"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

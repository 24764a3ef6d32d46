package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BetStatus string

const (
	StatusActive    BetStatus = "active"
	StatusClosed    BetStatus = "closed"
	StatusResolved  BetStatus = "resolved"
	StatusDisputed  BetStatus = "disputed"
	StatusCancelled BetStatus = "cancelled"
)

// ParseStatus aceita o status em qualquer caixa ("ACTIVE", "active")
func ParseStatus(s string) (BetStatus, error) {
	st := BetStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusActive, StatusClosed, StatusResolved, StatusDisputed, StatusCancelled:
		return st, nil
	}
	return "", Validation("invalid status %q", s)
}

// IsTerminal indica se nenhuma transição é possível a partir do status
func (s BetStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusCancelled
}

type Position string

const (
	PositionYes Position = "yes"
	PositionNo  Position = "no"
)

func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if p != PositionYes && p != PositionNo {
		return "", Validation("position must be yes or no")
	}
	return p, nil
}

type Category string

const (
	CategorySports        Category = "sports"
	CategoryPolitics      Category = "politics"
	CategoryEntertainment Category = "entertainment"
	CategoryCrypto        Category = "crypto"
	CategoryWeather       Category = "weather"
	CategoryOther         Category = "other"
)

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategorySports, CategoryPolitics, CategoryEntertainment, CategoryCrypto, CategoryWeather, CategoryOther:
		return c, nil
	}
	return "", Validation("invalid category %q", s)
}

// Bet é o espelho off-chain de um mercado binário
type Bet struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       Category        `json:"category"`
	Status         BetStatus       `json:"status"`
	Outcome        *Position       `json:"outcome"`
	YesPool        decimal.Decimal `json:"yesPool"`
	NoPool         decimal.Decimal `json:"noPool"`
	MinimumBet     decimal.Decimal `json:"minimumBet"`
	MaximumBet     decimal.Decimal `json:"maximumBet"`
	StartTime      time.Time       `json:"startTime"`
	EndTime        time.Time       `json:"endTime"`
	CreatorID      string          `json:"creatorId"`
	CreatorAddress string          `json:"creator"`
	CreatorName    *string         `json:"creatorName"`
	// ParticipantCount vem do banco e independe de Participants ter sido carregado
	ParticipantCount int           `json:"participantCount"`
	Participants     []Participant `json:"participants"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	ResolvedAt       *time.Time    `json:"resolvedAt,omitempty"`
	// assinatura on-chain do settlement, quando o resolvedor informa
	ResolutionTxID       *string `json:"resolutionTxId,omitempty"`
	OnChainBetAddress    *string `json:"onChainBetAddress,omitempty"`
	OnChainEscrowAddress *string `json:"onChainEscrowAddress,omitempty"`
}

func (b *Bet) TotalPool() decimal.Decimal {
	return b.YesPool.Add(b.NoPool)
}

// PoolFor devolve o pool do lado informado
func (b *Bet) PoolFor(p Position) decimal.Decimal {
	if p == PositionYes {
		return b.YesPool
	}
	return b.NoPool
}

// Participant (UserBet) registra a posição de um usuário em uma aposta
type Participant struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	BetID         string          `json:"betId"`
	WalletAddress string          `json:"walletAddress"`
	Position      Position        `json:"position"`
	Amount        decimal.Decimal `json:"amount"`
	Claimed       bool            `json:"claimed"`
	OnChainTxID   *string         `json:"onChainTxId,omitempty"`
	CreatedAt     time.Time       `json:"timestamp"`
}

type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxBet        TransactionType = "bet"
	TxWinnings   TransactionType = "winnings"
)

type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxConfirmed TransactionStatus = "confirmed"
	TxFailed    TransactionStatus = "failed"
)

// InitialStatus devolve o status de uma transação recém-registrada:
// com assinatura on-chain fica pendente até a confirmação da rede.
func InitialStatus(txHash *string) TransactionStatus {
	if txHash != nil && *txHash != "" {
		return TxPending
	}
	return TxConfirmed
}

// CanTransition permite apenas pending -> confirmed/failed
func (s TransactionStatus) CanTransition(to TransactionStatus) bool {
	return s == TxPending && (to == TxConfirmed || to == TxFailed)
}

// Transaction é uma entrada append-only do ledger
type Transaction struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      TransactionType   `json:"type"`
	Amount    decimal.Decimal   `json:"amount"`
	Status    TransactionStatus `json:"status"`
	BetID     *string           `json:"betId,omitempty"`
	BetTitle  *string           `json:"betTitle,omitempty"`
	TxHash    *string           `json:"txHash,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
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

// UserStats é a visão materializada das estatísticas do usuário
type UserStats struct {
	BetsCreated   int             `json:"betsCreated"`
	BetsJoined    int             `json:"betsJoined"`
	WinRate       int             `json:"winRate"`
	TotalWinnings decimal.Decimal `json:"totalWinnings"`
}

// Participation junta uma participação com o estado da aposta correspondente
type Participation struct {
	Participant
	BetTitle       string
	BetDescription string
	BetCategory    Category
	BetStatus      BetStatus
	Outcome        *Position
	YesPool        decimal.Decimal
	NoPool         decimal.Decimal
	BetEndTime     time.Time
	ResolvedAt     *time.Time
	BetUpdated     time.Time
}

// Won indica se a participação venceu: aposta resolvida e outcome igual à posição
func (p Participation) Won() bool {
	return p.BetStatus == StatusResolved && p.Outcome != nil && *p.Outcome == p.Position
}

// Lost indica aposta resolvida com outcome diferente da posição
func (p Participation) Lost() bool {
	return p.BetStatus == StatusResolved && p.Outcome != nil && *p.Outcome != p.Position
}

// Payout devolve quanto a participação recebe; zero se não venceu
func (p Participation) Payout() decimal.Decimal {
	if !p.Won() {
		return decimal.Zero
	}
	winning := p.NoPool
	if p.Position == PositionYes {
		winning = p.YesPool
	}
	return Payout(p.Amount, winning, p.YesPool.Add(p.NoPool))
}

// BetPage é uma página da listagem de apostas
type BetPage struct {
	Bets  []Bet `json:"bets"`
	Total int   `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// TotalPages arredonda para cima; sem resultados, zero páginas
func (p BetPage) TotalPages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/pkg/contracts/api"
)

// BetResponse é a aposta com as odds derivadas dos pools
type BetResponse struct {
	*domain.Bet
	TotalPool     decimal.Decimal `json:"totalPool"`
	YesPercentage float64         `json:"yesPercentage"`
	NoPercentage  float64         `json:"noPercentage"`
}

func NewBetResponse(b *domain.Bet) BetResponse {
	odds := domain.ComputeOdds(b.YesPool, b.NoPool)
	if b.Participants == nil {
		b.Participants = []domain.Participant{}
	}
	return BetResponse{
		Bet:           b,
		TotalPool:     odds.TotalPool,
		YesPercentage: odds.YesPercentage,
		NoPercentage:  odds.NoPercentage,
	}
}

type BetListResponse struct {
	Bets        []BetResponse `json:"bets"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	TotalBets   int           `json:"totalBets"`
}

func NewBetListResponse(p *domain.BetPage) BetListResponse {
	out := BetListResponse{
		Bets:        make([]BetResponse, 0, len(p.Bets)),
		TotalPages:  p.TotalPages(),
		CurrentPage: p.Page,
		TotalBets:   p.Total,
	}
	for i := range p.Bets {
		out.Bets = append(out.Bets, NewBetResponse(&p.Bets[i]))
	}
	return out
}

type WithdrawResponse struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	Payout      decimal.Decimal    `json:"payout"`
	UserBet     domain.Participant `json:"userBet"`
	Transaction domain.Transaction `json:"transaction"`
}

type ConnectWalletResponse struct {
	User    *domain.User `json:"user"`
	Created bool         `json:"created"`
}

type ProfileResponse struct {
	*domain.User
	Stats domain.UserStats `json:"stats"`
}

type ErrorResponse = api.ErrorResponse

// UserBetsResponse: GET /users/bets
type UserBetsResponse struct {
	Bets []domain.UserBet `json:"bets"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BetOutcome string

const (
	OutcomeWin     BetOutcome = "win"
	OutcomeLoss    BetOutcome = "loss"
	OutcomePending BetOutcome = "pending"
)

// UserBet é a participação do usuário como aparece na carteira do frontend
type UserBet struct {
	ID              string          `json:"id"`
	BetID           string          `json:"betId"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Category        Category        `json:"category"`
	Position        Position        `json:"position"`
	Amount          decimal.Decimal `json:"amount"`
	PotentialReturn decimal.Decimal `json:"potentialReturn"`
	Outcome         BetOutcome      `json:"outcome"`
	Status          BetStatus       `json:"status"`
	Claimed         bool            `json:"claimed"`
	ExpiresAt       time.Time       `json:"expiresAt"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Result classifica a participação: win/loss só depois da resolução
func (p Participation) Result() BetOutcome {
	switch {
	case p.Won():
		return OutcomeWin
	case p.Lost():
		return OutcomeLoss
	default:
		return OutcomePending
	}
}

// PotentialReturn é o payout se a posição vencer com os pools atuais,
// arredondado em centavos de SOL
func (p Participation) PotentialReturn() decimal.Decimal {
	winning := p.NoPool
	if p.Position == PositionYes {
		winning = p.YesPool
	}
	return Payout(p.Amount, winning, p.YesPool.Add(p.NoPool)).Round(2)
}

func NewUserBet(p Participation) UserBet {
	return UserBet{
		ID:              p.ID,
		BetID:           p.BetID,
		Title:           p.BetTitle,
		Description:     p.BetDescription,
		Category:        p.BetCategory,
		Position:        p.Position,
		Amount:          p.Amount,
		PotentialReturn: p.PotentialReturn(),
		Outcome:         p.Result(),
		Status:          p.BetStatus,
		Claimed:         p.Claimed,
		ExpiresAt:       p.BetEndTime,
		CreatedAt:       p.CreatedAt,
	}
}

// UserBets converte as participações mantendo a ordem
func UserBets(parts []Participation) []UserBet {
	out := make([]UserBet, 0, len(parts))
	for _, p := range parts {
		out = append(out, NewUserBet(p))
	}
	return out
}

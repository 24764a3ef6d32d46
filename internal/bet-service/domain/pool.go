package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Odds é a divisão percentual dos pools de uma aposta
type Odds struct {
	YesPercentage float64         `json:"yesPercentage"`
	NoPercentage  float64         `json:"noPercentage"`
	TotalPool     decimal.Decimal `json:"totalPool"`
}

// ComputeOdds calcula as porcentagens de yes/no. Sem volume, 50/50.
func ComputeOdds(yesPool, noPool decimal.Decimal) Odds {
	total := yesPool.Add(noPool)
	if !total.IsPositive() {
		return Odds{YesPercentage: 50, NoPercentage: 50, TotalPool: decimal.Zero}
	}
	yes := yesPool.Div(total).Mul(hundred).InexactFloat64()
	return Odds{
		YesPercentage: yes,
		NoPercentage:  100 - yes,
		TotalPool:     total,
	}
}

// Payout é a regra de rateio do programa on-chain: stake * total / pool vencedor.
// Com pool vencedor vazio o stake volta inteiro.
func Payout(stake, winningPool, totalPool decimal.Decimal) decimal.Decimal {
	if !winningPool.IsPositive() {
		return stake
	}
	return stake.Mul(totalPool).Div(winningPool).Truncate(9)
}

// QuoteResult simula a entrada de amount no lado position
type QuoteResult struct {
	Position        Position        `json:"position"`
	Amount          decimal.Decimal `json:"amount"`
	PotentialPayout decimal.Decimal `json:"potentialPayout"`
	Multiplier      decimal.Decimal `json:"multiplier"`
	OddsAfter       Odds            `json:"oddsAfter"`
}

func Quote(b *Bet, position Position, amount decimal.Decimal) (QuoteResult, error) {
	if !amount.IsPositive() {
		return QuoteResult{}, Validation("amount must be positive")
	}
	yes, no := b.YesPool, b.NoPool
	if position == PositionYes {
		yes = yes.Add(amount)
	} else {
		no = no.Add(amount)
	}
	winning := no
	if position == PositionYes {
		winning = yes
	}
	payout := Payout(amount, winning, yes.Add(no))
	return QuoteResult{
		Position:        position,
		Amount:          amount,
		PotentialPayout: payout,
		Multiplier:      payout.Div(amount).Round(4),
		OddsAfter:       ComputeOdds(yes, no),
	}, nil
}

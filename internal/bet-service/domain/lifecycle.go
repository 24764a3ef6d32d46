package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Regras de transição de status de uma aposta. As funções validam e aplicam a
// transição sobre o valor em memória; a persistência fica com o repositório.

// CanAcceptBets indica se a aposta ainda recebe participações em now
func (b *Bet) CanAcceptBets(now time.Time) bool {
	return b.Status == StatusActive && b.EndTime.After(now)
}

func (b *Bet) IsExpired(now time.Time) bool {
	return !b.EndTime.After(now)
}

// CheckPlacement valida status, prazo e limites antes de registrar a participação
func (b *Bet) CheckPlacement(amount decimal.Decimal, now time.Time) error {
	if b.Status != StatusActive {
		return ErrBetNotActive
	}
	if b.IsExpired(now) {
		return ErrBetExpired
	}
	if !amount.IsPositive() {
		return Validation("amount must be positive")
	}
	if amount.LessThan(b.MinimumBet) {
		return Validation("minimum bet amount is %s SOL", b.MinimumBet.String())
	}
	if amount.GreaterThan(b.MaximumBet) {
		return Validation("maximum bet amount is %s SOL", b.MaximumBet.String())
	}
	return nil
}

// Close leva active -> closed. Pelo criador só sem participantes; pelo job só
// depois do endTime.
func (b *Bet) Close(now time.Time, byCreator bool) error {
	if b.Status != StatusActive {
		return ErrBetNotActive
	}
	if byCreator {
		if b.ParticipantCount > 0 {
			return ErrHasParticipants
		}
	} else if !b.IsExpired(now) {
		return ErrBetNotExpired
	}
	b.Status = StatusClosed
	b.UpdatedAt = now
	return nil
}

// Resolve define o outcome; irreversível
func (b *Bet) Resolve(outcome Position, now time.Time) error {
	switch b.Status {
	case StatusActive, StatusClosed, StatusDisputed:
	case StatusResolved:
		return ErrBetAlreadyResolved
	default:
		return ErrInvalidBetState
	}
	o := outcome
	b.Outcome = &o
	b.Status = StatusResolved
	b.ResolvedAt = &now
	b.UpdatedAt = now
	return nil
}

func (b *Bet) Dispute(now time.Time) error {
	if b.Status != StatusActive && b.Status != StatusClosed {
		return ErrInvalidBetState
	}
	b.Status = StatusDisputed
	b.UpdatedAt = now
	return nil
}

// Cancel: active sem participantes, ou disputed após adjudicação externa
func (b *Bet) Cancel(now time.Time) error {
	switch b.Status {
	case StatusActive:
		if b.ParticipantCount > 0 {
			return ErrHasParticipants
		}
	case StatusDisputed:
	default:
		return ErrInvalidBetState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now
	return nil
}

// CheckWithdrawal valida o saque de p. A posição é checada antes do claimed:
// posição perdedora é rejeitada independente de já ter sacado.
func (b *Bet) CheckWithdrawal(p *Participant) error {
	if b.Status != StatusResolved || b.Outcome == nil {
		return ErrBetNotResolved
	}
	if p.Position != *b.Outcome {
		return ErrNotWinner
	}
	if p.Claimed {
		return ErrAlreadyClaimed
	}
	return nil
}

// WinningsFor devolve o payout de p numa aposta resolvida
func (b *Bet) WinningsFor(p *Participant) decimal.Decimal {
	if b.Outcome == nil {
		return decimal.Zero
	}
	return Payout(p.Amount, b.PoolFor(*b.Outcome), b.TotalPool())
}

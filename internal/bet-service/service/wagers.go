package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

type PlaceBetInput struct {
	BetID         string
	Position      string
	Amount        decimal.Decimal
	WalletAddress string
	OnChainTxID   *string
}

// PlaceBet registra a participação e soma o valor ao pool numa única transação,
// com a linha da aposta travada. Devolve a aposta atualizada.
func (s *Service) PlaceBet(ctx context.Context, in PlaceBetInput) (*domain.Bet, error) {
	pos, err := domain.ParsePosition(in.Position)
	if err != nil {
		return nil, err
	}
	if in.WalletAddress == "" {
		return nil, domain.ErrMissingActor
	}

	var (
		user *domain.User
		part domain.Participant
		tx   domain.Transaction
	)
	err = s.store.InTx(ctx, func(q repo.Queries) error {
		bet, err := q.LockBet(ctx, in.BetID)
		if err != nil {
			return err
		}
		if err := bet.CheckPlacement(in.Amount, s.now()); err != nil {
			return err
		}
		// o apostador pode não ter passado pelo connect ainda; o usuário só
		// é criado junto com uma participação aceita
		if user, _, err = q.GetOrCreateUser(ctx, in.WalletAddress); err != nil {
			return err
		}

		part = domain.Participant{
			UserID:        user.ID,
			BetID:         bet.ID,
			WalletAddress: user.WalletAddress,
			Position:      pos,
			Amount:        in.Amount,
			OnChainTxID:   in.OnChainTxID,
		}
		if err := q.InsertParticipant(ctx, &part); err != nil {
			return err
		}
		if _, _, err := q.AddToPool(ctx, bet.ID, pos, in.Amount); err != nil {
			return err
		}

		betID := bet.ID
		tx = domain.Transaction{
			UserID: user.ID,
			Type:   domain.TxBet,
			Amount: in.Amount,
			BetID:  &betID,
			TxHash: in.OnChainTxID,
		}
		return q.InsertTransaction(ctx, &tx)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bet placed",
		zap.String("betId", part.BetID),
		zap.String("wallet", user.WalletAddress),
		zap.String("position", string(pos)),
		zap.String("amount", in.Amount.String()),
	)
	s.count("place")

	bet, err := s.store.GetBet(ctx, part.BetID)
	if err != nil {
		return nil, err
	}
	ev := events.BetEvent{
		Type:          events.BetPlaced,
		BetID:         bet.ID,
		ActorID:       user.ID,
		ActorAddress:  user.WalletAddress,
		UserIDs:       []string{user.ID},
		Status:        string(bet.Status),
		Position:      string(pos),
		Amount:        in.Amount.String(),
		TransactionID: tx.ID,
	}
	if tx.TxHash != nil {
		ev.TxHash = *tx.TxHash
	}
	s.afterCommit(ctx, ev, bet)
	return bet, nil
}

type WithdrawInput struct {
	BetID         string
	WalletAddress string
	OnChainTxID   *string
}

type WithdrawResult struct {
	Payout      decimal.Decimal
	Participant domain.Participant
	Transaction domain.Transaction
}

// Withdraw marca a participação vencedora como sacada e registra a transação
// de saque com o valor do payout. Só funciona uma vez por participação.
func (s *Service) Withdraw(ctx context.Context, in WithdrawInput) (*WithdrawResult, error) {
	user, err := s.actor(ctx, in.WalletAddress)
	if err != nil {
		return nil, err
	}

	var res WithdrawResult
	err = s.store.InTx(ctx, func(q repo.Queries) error {
		bet, err := q.LockBet(ctx, in.BetID)
		if err != nil {
			return err
		}
		p, err := q.GetParticipant(ctx, bet.ID, user.ID)
		if err != nil {
			return err
		}
		if err := bet.CheckWithdrawal(p); err != nil {
			return err
		}
		res.Payout = bet.WinningsFor(p)

		if err := q.MarkClaimed(ctx, p.ID, in.OnChainTxID); err != nil {
			return err
		}
		p.Claimed = true
		if in.OnChainTxID != nil {
			p.OnChainTxID = in.OnChainTxID
		}
		res.Participant = *p

		betID := bet.ID
		res.Transaction = domain.Transaction{
			UserID: user.ID,
			Type:   domain.TxWithdrawal,
			Amount: res.Payout,
			BetID:  &betID,
			TxHash: in.OnChainTxID,
		}
		return q.InsertTransaction(ctx, &res.Transaction)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("winnings withdrawn",
		zap.String("betId", res.Participant.BetID),
		zap.String("wallet", user.WalletAddress),
		zap.String("payout", res.Payout.String()),
	)
	s.count("withdraw")

	ev := events.BetEvent{
		Type:          events.BetWithdrawn,
		BetID:         res.Participant.BetID,
		ActorID:       user.ID,
		ActorAddress:  user.WalletAddress,
		UserIDs:       []string{user.ID},
		Status:        string(domain.StatusResolved),
		Position:      string(res.Participant.Position),
		Amount:        res.Payout.String(),
		TransactionID: res.Transaction.ID,
	}
	if in.OnChainTxID != nil {
		ev.TxHash = *in.OnChainTxID
	}
	s.afterCommit(ctx, ev, nil)
	return &res, nil
}

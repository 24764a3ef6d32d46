package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

type ActorInput struct {
	BetID         string
	WalletAddress string
}

type ResolveInput struct {
	BetID         string
	WalletAddress string
	Outcome       string
	OnChainTxID   *string
}

// canAdjudicate: aposta em disputa só é decidida pelas carteiras resolvedoras;
// nos demais status o criador também pode. Sem resolvedores configurados a
// disputa volta para o criador, senão ela nunca sairia de disputed.
func (s *Service) canAdjudicate(bet *domain.Bet, user *domain.User) bool {
	if s.isResolver(user.WalletAddress) {
		return true
	}
	if bet.CreatorID != user.ID {
		return false
	}
	return bet.Status != domain.StatusDisputed || len(s.resolvers) == 0
}

// ResolveBet define o outcome. Na mesma transação cada participação vencedora
// ganha uma transação de winnings com o payout.
func (s *Service) ResolveBet(ctx context.Context, in ResolveInput) (*domain.Bet, error) {
	outcome, err := domain.ParsePosition(in.Outcome)
	if err != nil {
		return nil, err
	}
	user, err := s.actor(ctx, in.WalletAddress)
	if err != nil {
		return nil, err
	}

	var affected []string
	err = s.store.InTx(ctx, func(q repo.Queries) error {
		bet, err := q.LockBet(ctx, in.BetID)
		if err != nil {
			return err
		}
		if !s.canAdjudicate(bet, user) {
			return domain.ErrNotResolver
		}
		if err := bet.Resolve(outcome, s.now()); err != nil {
			return err
		}
		bet.ResolutionTxID = in.OnChainTxID
		if err := q.UpdateBetStatus(ctx, bet); err != nil {
			return err
		}

		parts, err := q.ListParticipants(ctx, bet.ID)
		if err != nil {
			return err
		}
		affected = append(affected, bet.CreatorID)
		for i := range parts {
			p := &parts[i]
			affected = append(affected, p.UserID)
			if p.Position != outcome {
				continue
			}
			betID := bet.ID
			if err := q.InsertTransaction(ctx, &domain.Transaction{
				UserID: p.UserID,
				Type:   domain.TxWinnings,
				Amount: bet.WinningsFor(p),
				Status: domain.TxConfirmed,
				BetID:  &betID,
			}); err != nil {
				return errors.Wrap(err, "record winnings")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bet resolved", zap.String("betId", in.BetID), zap.String("outcome", string(outcome)), zap.String("by", user.WalletAddress))
	s.count("resolve")

	bet, err := s.store.GetBet(ctx, in.BetID)
	if err != nil {
		return nil, err
	}
	ev := events.BetEvent{
		Type:         events.BetResolved,
		BetID:        bet.ID,
		ActorID:      user.ID,
		ActorAddress: user.WalletAddress,
		UserIDs:      dedupe(affected),
		Status:       string(bet.Status),
		Outcome:      string(outcome),
	}
	if in.OnChainTxID != nil {
		ev.TxHash = *in.OnChainTxID
	}
	s.afterCommit(ctx, ev, bet)
	return bet, nil
}

// transition aplica uma mudança de status simples (close, cancel, dispute)
func (s *Service) transition(ctx context.Context, in ActorInput, typ events.BetEventType,
	apply func(q repo.Queries, bet *domain.Bet, user *domain.User) error) (*domain.Bet, error) {
	user, err := s.actor(ctx, in.WalletAddress)
	if err != nil {
		return nil, err
	}

	var affected []string
	err = s.store.InTx(ctx, func(q repo.Queries) error {
		bet, err := q.LockBet(ctx, in.BetID)
		if err != nil {
			return err
		}
		if err := apply(q, bet, user); err != nil {
			return err
		}
		if err := q.UpdateBetStatus(ctx, bet); err != nil {
			return err
		}
		ids, err := q.ListParticipantUserIDs(ctx, bet.ID)
		if err != nil {
			return err
		}
		affected = append(ids, bet.CreatorID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bet "+string(typ), zap.String("betId", in.BetID), zap.String("by", user.WalletAddress))
	s.count(string(typ))

	bet, err := s.store.GetBet(ctx, in.BetID)
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, events.BetEvent{
		Type:         typ,
		BetID:        bet.ID,
		ActorID:      user.ID,
		ActorAddress: user.WalletAddress,
		UserIDs:      dedupe(affected),
		Status:       string(bet.Status),
	}, bet)
	return bet, nil
}

// CloseBet: o criador encerra antecipadamente uma aposta sem participantes
func (s *Service) CloseBet(ctx context.Context, in ActorInput) (*domain.Bet, error) {
	return s.transition(ctx, in, events.BetClosed, func(_ repo.Queries, bet *domain.Bet, user *domain.User) error {
		if bet.CreatorID != user.ID {
			return domain.ErrNotCreator
		}
		return bet.Close(s.now(), true)
	})
}

// CancelBet: ativa sem participantes (criador ou resolvedor) ou em disputa
// (resolvedor, ou o criador quando não há resolvedores)
func (s *Service) CancelBet(ctx context.Context, in ActorInput) (*domain.Bet, error) {
	return s.transition(ctx, in, events.BetCancelled, func(_ repo.Queries, bet *domain.Bet, user *domain.User) error {
		if !s.canAdjudicate(bet, user) {
			if bet.Status == domain.StatusDisputed {
				return domain.ErrNotResolver
			}
			return domain.ErrNotCreator
		}
		return bet.Cancel(s.now())
	})
}

// DisputeBet pode ser aberta pelo criador, por um resolvedor ou por um participante
func (s *Service) DisputeBet(ctx context.Context, in ActorInput) (*domain.Bet, error) {
	return s.transition(ctx, in, events.BetDisputed, func(q repo.Queries, bet *domain.Bet, user *domain.User) error {
		if bet.CreatorID != user.ID && !s.isResolver(user.WalletAddress) {
			if _, err := q.GetParticipant(ctx, bet.ID, user.ID); err != nil {
				if errors.Is(err, domain.ErrParticipantNotFound) {
					return domain.ErrNotInvolved
				}
				return err
			}
		}
		return bet.Dispute(s.now())
	})
}

// CloseExpired fecha as apostas vencidas e propaga cada uma. Devolve os ids fechados.
func (s *Service) CloseExpired(ctx context.Context) ([]string, error) {
	ids, err := s.store.CloseExpired(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		bet, err := s.store.GetBet(ctx, id)
		if err != nil {
			s.log.Warn("closed bet reload failed", zap.String("betId", id), zap.Error(err))
			continue
		}
		s.count(string(events.BetClosed))
		s.afterCommit(ctx, events.BetEvent{
			Type:   events.BetClosed,
			BetID:  id,
			Status: string(bet.Status),
		}, bet)
	}
	if len(ids) > 0 {
		s.log.Info("expired bets closed", zap.Int("count", len(ids)))
	}
	return ids, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

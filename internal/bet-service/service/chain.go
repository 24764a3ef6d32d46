package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/chain"
)

// ChainAddresses devolve as contas on-chain da aposta. Na primeira consulta
// os endereços são derivados e gravados; depois o valor gravado prevalece.
func (s *Service) ChainAddresses(ctx context.Context, betID string) (chain.Addresses, error) {
	bet, err := s.store.GetBet(ctx, betID)
	if err != nil {
		return chain.Addresses{}, err
	}
	if bet.OnChainBetAddress != nil && bet.OnChainEscrowAddress != nil {
		return chain.Addresses{BetAccount: *bet.OnChainBetAddress, EscrowAccount: *bet.OnChainEscrowAddress}, nil
	}

	derived := chain.DeriveAddresses(bet.ID, bet.CreatedAt, bet.CreatorID)
	betAddr, escrow, err := s.store.SetChainAddresses(ctx, bet.ID, derived.BetAccount, derived.EscrowAccount)
	if err != nil {
		return chain.Addresses{}, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, bet.ID); err != nil {
			s.log.Warn("cache invalidate failed", zap.String("betId", bet.ID), zap.Error(err))
			s.publishFailed("cache")
		}
	}
	return chain.Addresses{BetAccount: betAddr, EscrowAccount: escrow}, nil
}

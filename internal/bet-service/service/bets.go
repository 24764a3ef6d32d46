package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/bet-service/domain"
	"github.com/solbet/solbet-platform/internal/bet-service/repo"
	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type CreateBetInput struct {
	Title       string
	Description string
	Category    string
	MinimumBet  *decimal.Decimal
	MaximumBet  *decimal.Decimal
	EndTime     *time.Time
	Creator     string
}

// CreateBet cria uma aposta ativa. O criador precisa ter conectado a carteira.
func (s *Service) CreateBet(ctx context.Context, in CreateBetInput) (*domain.Bet, error) {
	title, desc := strings.TrimSpace(in.Title), strings.TrimSpace(in.Description)
	if title == "" || desc == "" || in.Creator == "" {
		return nil, domain.Validation("missing required fields")
	}
	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &domain.Bet{
		Title:       title,
		Description: desc,
		Category:    category,
		MinimumBet:  s.rules.DefaultMinBet,
		MaximumBet:  s.rules.DefaultMaxBet,
		StartTime:   now,
		EndTime:     now.Add(s.rules.DefaultBetDuration),
	}
	if in.MinimumBet != nil {
		b.MinimumBet = *in.MinimumBet
	}
	if in.MaximumBet != nil {
		b.MaximumBet = *in.MaximumBet
	}
	if in.EndTime != nil {
		b.EndTime = in.EndTime.UTC()
	}
	if !b.MinimumBet.IsPositive() {
		return nil, domain.Validation("minimumBet must be positive")
	}
	if b.MaximumBet.LessThan(b.MinimumBet) {
		return nil, domain.Validation("maximumBet must be greater than or equal to minimumBet")
	}
	if !b.EndTime.After(now) {
		return nil, domain.Validation("endTime must be in the future")
	}

	creator, err := s.store.GetUserByAddress(ctx, in.Creator)
	if err != nil {
		return nil, err
	}
	b.CreatorID = creator.ID
	b.CreatorAddress = creator.WalletAddress
	b.CreatorName = creator.DisplayName

	if err := s.store.CreateBet(ctx, b); err != nil {
		return nil, err
	}
	b.Participants = []domain.Participant{}

	s.log.Info("bet created", zap.String("betId", b.ID), zap.String("creator", creator.WalletAddress))
	s.count("create")
	s.afterCommit(ctx, events.BetEvent{
		Type:         events.BetCreated,
		BetID:        b.ID,
		ActorID:      creator.ID,
		ActorAddress: creator.WalletAddress,
		UserIDs:      []string{creator.ID},
		Status:       string(b.Status),
	}, b)
	return b, nil
}

// ListBets pagina as apostas; filtros vazios não filtram
func (s *Service) ListBets(ctx context.Context, f repo.BetFilter) (*domain.BetPage, error) {
	if f.Category != "" {
		c, err := domain.ParseCategory(f.Category)
		if err != nil {
			return nil, err
		}
		f.Category = string(c)
	}
	if f.Status != "" {
		st, err := domain.ParseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		f.Status = string(st)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}

	// a versão é lida antes do banco; sem versão confiável não se grava
	cacheable := false
	var version int64
	if s.cache != nil {
		p, v, ok, err := s.cache.GetList(ctx, f)
		switch {
		case err != nil:
			s.log.Warn("cache list read failed", zap.Error(err))
		case ok:
			return p, nil
		default:
			cacheable, version = true, v
		}
	}

	bets, total, err := s.store.ListBets(ctx, f)
	if err != nil {
		return nil, err
	}
	page := &domain.BetPage{Bets: bets, Total: total, Page: f.Page, Limit: f.Limit}

	if cacheable {
		if err := s.cache.SetList(ctx, version, f, page); err != nil {
			s.log.Warn("cache list write failed", zap.Error(err))
		}
	}
	return page, nil
}

// GetBet devolve a aposta com participantes, preferencialmente do cache
func (s *Service) GetBet(ctx context.Context, id string) (*domain.Bet, error) {
	if id == "" {
		return nil, domain.Validation("bet id is required")
	}
	cacheable := false
	var version int64
	if s.cache != nil {
		b, v, ok, err := s.cache.GetBet(ctx, id)
		switch {
		case err != nil:
			s.log.Warn("cache bet read failed", zap.String("betId", id), zap.Error(err))
		case ok:
			return b, nil
		default:
			cacheable, version = true, v
		}
	}

	b, err := s.store.GetBet(ctx, id)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := s.cache.SetBet(ctx, version, b); err != nil {
			s.log.Warn("cache bet write failed", zap.String("betId", id), zap.Error(err))
		}
	}
	return b, nil
}

// Quote simula o payout de amount no lado position com os pools atuais
func (s *Service) Quote(ctx context.Context, id, position string, amount decimal.Decimal) (domain.QuoteResult, error) {
	pos, err := domain.ParsePosition(position)
	if err != nil {
		return domain.QuoteResult{}, err
	}
	b, err := s.GetBet(ctx, id)
	if err != nil {
		return domain.QuoteResult{}, err
	}
	return domain.Quote(b, pos, amount)
}

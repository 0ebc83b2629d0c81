package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vbonduro/poseidon/internal/domain"
	"github.com/vbonduro/poseidon/internal/store"
	"github.com/vbonduro/poseidon/internal/validation"
)

// tradeRepository is the subset of store.TradeStore that TradeService requires.
type tradeRepository interface {
	Create(ctx context.Context, t *domain.Trade) (*domain.Trade, error)
	GetByID(ctx context.Context, id int64) (*domain.Trade, error)
	List(ctx context.Context) ([]*domain.Trade, error)
	Update(ctx context.Context, t *domain.Trade) error
	Delete(ctx context.Context, id int64) error
}

type TradeService struct {
	store     tradeRepository
	validator *validation.Validator
	logger    zerolog.Logger
	clock     clock
}

func NewTradeService(store tradeRepository, v *validation.Validator, logger zerolog.Logger) *TradeService {
	return &TradeService{
		store:     store,
		validator: v,
		logger:    logger.With().Str("entity", "trade").Logger(),
		clock:     time.Now,
	}
}

func (s *TradeService) List(ctx context.Context) ([]*domain.Trade, error) {
	return s.store.List(ctx)
}

func (s *TradeService) Get(ctx context.Context, id int64) (*domain.Trade, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFound("trade", id)
	}
	return t, nil
}

func (s *TradeService) Create(ctx context.Context, actor string, t *domain.Trade) (*domain.Trade, error) {
	if err := s.validator.Struct(t); err != nil {
		return nil, err
	}

	now := s.clock.now()
	t.ID = 0
	t.CreationName = actor
	t.CreationDate = now
	t.RevisionName = ""
	t.RevisionDate = nil
	if t.TradeDate == nil {
		t.TradeDate = now
	}

	created, err := s.store.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("id", created.ID).Str("actor", actor).Msg("created")
	return created, nil
}

func (s *TradeService) Update(ctx context.Context, actor string, id int64, t *domain.Trade) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.validator.Struct(t); err != nil {
		return err
	}

	t.ID = id
	t.CreationName = existing.CreationName
	t.CreationDate = existing.CreationDate
	if t.TradeDate == nil {
		t.TradeDate = existing.TradeDate
	}
	t.RevisionName = actor
	t.RevisionDate = s.clock.now()

	if err := s.store.Update(ctx, t); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("trade", id)
		}
		return fmt.Errorf("update trade %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Str("actor", actor).Msg("updated")
	return nil
}

func (s *TradeService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("trade", id)
		}
		return fmt.Errorf("delete trade %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Msg("deleted")
	return nil
}

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

// bidRepository is the subset of store.BidStore that BidService requires.
type bidRepository interface {
	Create(ctx context.Context, b *domain.BidList) (*domain.BidList, error)
	GetByID(ctx context.Context, id int64) (*domain.BidList, error)
	List(ctx context.Context) ([]*domain.BidList, error)
	Update(ctx context.Context, b *domain.BidList) error
	Delete(ctx context.Context, id int64) error
}

type BidService struct {
	store     bidRepository
	validator *validation.Validator
	logger    zerolog.Logger
	clock     clock
}

func NewBidService(store bidRepository, v *validation.Validator, logger zerolog.Logger) *BidService {
	return &BidService{
		store:     store,
		validator: v,
		logger:    logger.With().Str("entity", "bid").Logger(),
		clock:     time.Now,
	}
}

func (s *BidService) List(ctx context.Context) ([]*domain.BidList, error) {
	return s.store.List(ctx)
}

func (s *BidService) Get(ctx context.Context, id int64) (*domain.BidList, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, notFound("bid", id)
	}
	return b, nil
}

func (s *BidService) Create(ctx context.Context, actor string, b *domain.BidList) (*domain.BidList, error) {
	if err := s.validator.Struct(b); err != nil {
		return nil, err
	}

	now := s.clock.now()
	b.ID = 0
	b.CreationName = actor
	b.CreationDate = now
	b.RevisionName = ""
	b.RevisionDate = nil
	if b.BidListDate == nil {
		b.BidListDate = now
	}

	created, err := s.store.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("id", created.ID).Str("actor", actor).Msg("created")
	return created, nil
}

func (s *BidService) Update(ctx context.Context, actor string, id int64, b *domain.BidList) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.validator.Struct(b); err != nil {
		return err
	}

	b.ID = id
	b.CreationName = existing.CreationName
	b.CreationDate = existing.CreationDate
	if b.BidListDate == nil {
		b.BidListDate = existing.BidListDate
	}
	b.RevisionName = actor
	b.RevisionDate = s.clock.now()

	if err := s.store.Update(ctx, b); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("bid", id)
		}
		return fmt.Errorf("update bid %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Str("actor", actor).Msg("updated")
	return nil
}

func (s *BidService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("bid", id)
		}
		return fmt.Errorf("delete bid %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Msg("deleted")
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vbonduro/poseidon/internal/domain"
	"github.com/vbonduro/poseidon/internal/store"
	"github.com/vbonduro/poseidon/internal/validation"
)

// ratingRepository is the subset of store.RatingStore that RatingService requires.
type ratingRepository interface {
	Create(ctx context.Context, r *domain.Rating) (*domain.Rating, error)
	GetByID(ctx context.Context, id int64) (*domain.Rating, error)
	List(ctx context.Context) ([]*domain.Rating, error)
	Update(ctx context.Context, r *domain.Rating) error
	Delete(ctx context.Context, id int64) error
}

type RatingService struct {
	store     ratingRepository
	validator *validation.Validator
	logger    zerolog.Logger
}

func NewRatingService(store ratingRepository, v *validation.Validator, logger zerolog.Logger) *RatingService {
	return &RatingService{
		store:     store,
		validator: v,
		logger:    logger.With().Str("entity", "rating").Logger(),
	}
}

func (s *RatingService) List(ctx context.Context) ([]*domain.Rating, error) {
	return s.store.List(ctx)
}

func (s *RatingService) Get(ctx context.Context, id int64) (*domain.Rating, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound("rating", id)
	}
	return r, nil
}

func (s *RatingService) Create(ctx context.Context, actor string, r *domain.Rating) (*domain.Rating, error) {
	if err := s.validator.Struct(r); err != nil {
		return nil, err
	}

	r.ID = 0
	created, err := s.store.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("id", created.ID).Str("actor", actor).Msg("created")
	return created, nil
}

func (s *RatingService) Update(ctx context.Context, actor string, id int64, r *domain.Rating) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.validator.Struct(r); err != nil {
		return err
	}

	r.ID = id
	if err := s.store.Update(ctx, r); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("rating", id)
		}
		return fmt.Errorf("update rating %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Str("actor", actor).Msg("updated")
	return nil
}

func (s *RatingService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("rating", id)
		}
		return fmt.Errorf("delete rating %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Msg("deleted")
	return nil
}

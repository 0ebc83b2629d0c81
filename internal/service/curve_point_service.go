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

// curvePointRepository is the subset of store.CurvePointStore that CurvePointService requires.
type curvePointRepository interface {
	Create(ctx context.Context, cp *domain.CurvePoint) (*domain.CurvePoint, error)
	GetByID(ctx context.Context, id int64) (*domain.CurvePoint, error)
	List(ctx context.Context) ([]*domain.CurvePoint, error)
	Update(ctx context.Context, cp *domain.CurvePoint) error
	Delete(ctx context.Context, id int64) error
}

type CurvePointService struct {
	store     curvePointRepository
	validator *validation.Validator
	logger    zerolog.Logger
	clock     clock
}

func NewCurvePointService(store curvePointRepository, v *validation.Validator, logger zerolog.Logger) *CurvePointService {
	return &CurvePointService{
		store:     store,
		validator: v,
		logger:    logger.With().Str("entity", "curvePoint").Logger(),
		clock:     time.Now,
	}
}

func (s *CurvePointService) List(ctx context.Context) ([]*domain.CurvePoint, error) {
	return s.store.List(ctx)
}

func (s *CurvePointService) Get(ctx context.Context, id int64) (*domain.CurvePoint, error) {
	cp, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, notFound("curvePoint", id)
	}
	return cp, nil
}

func (s *CurvePointService) Create(ctx context.Context, actor string, cp *domain.CurvePoint) (*domain.CurvePoint, error) {
	if err := s.validator.Struct(cp); err != nil {
		return nil, err
	}

	cp.ID = 0
	cp.CreationDate = s.clock.now()

	created, err := s.store.Create(ctx, cp)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("id", created.ID).Str("actor", actor).Msg("created")
	return created, nil
}

func (s *CurvePointService) Update(ctx context.Context, actor string, id int64, cp *domain.CurvePoint) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.validator.Struct(cp); err != nil {
		return err
	}

	cp.ID = id
	cp.CreationDate = existing.CreationDate

	if err := s.store.Update(ctx, cp); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("curvePoint", id)
		}
		return fmt.Errorf("update curve point %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Str("actor", actor).Msg("updated")
	return nil
}

func (s *CurvePointService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("curvePoint", id)
		}
		return fmt.Errorf("delete curve point %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Msg("deleted")
	return nil
}

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

// ruleRepository is the subset of store.RuleStore that RuleService requires.
type ruleRepository interface {
	Create(ctx context.Context, r *domain.RuleName) (*domain.RuleName, error)
	GetByID(ctx context.Context, id int64) (*domain.RuleName, error)
	List(ctx context.Context) ([]*domain.RuleName, error)
	Update(ctx context.Context, r *domain.RuleName) error
	Delete(ctx context.Context, id int64) error
}

type RuleService struct {
	store     ruleRepository
	validator *validation.Validator
	logger    zerolog.Logger
}

func NewRuleService(store ruleRepository, v *validation.Validator, logger zerolog.Logger) *RuleService {
	return &RuleService{
		store:     store,
		validator: v,
		logger:    logger.With().Str("entity", "rule").Logger(),
	}
}

func (s *RuleService) List(ctx context.Context) ([]*domain.RuleName, error) {
	return s.store.List(ctx)
}

func (s *RuleService) Get(ctx context.Context, id int64) (*domain.RuleName, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound("rule", id)
	}
	return r, nil
}

func (s *RuleService) Create(ctx context.Context, actor string, r *domain.RuleName) (*domain.RuleName, error) {
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

func (s *RuleService) Update(ctx context.Context, actor string, id int64, r *domain.RuleName) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.validator.Struct(r); err != nil {
		return err
	}

	r.ID = id
	if err := s.store.Update(ctx, r); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("rule", id)
		}
		return fmt.Errorf("update rule %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Str("actor", actor).Msg("updated")
	return nil
}

func (s *RuleService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("rule", id)
		}
		return fmt.Errorf("delete rule %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Msg("deleted")
	return nil
}

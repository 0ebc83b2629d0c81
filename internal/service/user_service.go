package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vbonduro/poseidon/internal/auth"
	"github.com/vbonduro/poseidon/internal/domain"
	"github.com/vbonduro/poseidon/internal/store"
	"github.com/vbonduro/poseidon/internal/validation"
)

// userRepository is the subset of store.UserStore that UserService requires.
type userRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// UserService manages accounts. Passwords arrive in plain text and are stored
// as bcrypt hashes.
type UserService struct {
	store     userRepository
	hasher    *auth.Hasher
	validator *validation.Validator
	logger    zerolog.Logger
	dummyHash string
}

func NewUserService(store userRepository, hasher *auth.Hasher, v *validation.Validator, logger zerolog.Logger) (*UserService, error) {
	dummy, err := hasher.Hash("poseidon-unknown-user")
	if err != nil {
		return nil, err
	}
	return &UserService{
		store:     store,
		hasher:    hasher,
		validator: v,
		logger:    logger.With().Str("entity", "user").Logger(),
		dummyHash: dummy,
	}, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.store.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("user", id)
	}
	return u, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.store.GetByUsername(ctx, username)
}

func (s *UserService) Create(ctx context.Context, actor string, u *domain.User) (*domain.User, error) {
	if err := s.prepare(u); err != nil {
		return nil, err
	}

	u.ID = 0
	created, err := s.store.Create(ctx, u)
	if err != nil {
		return nil, duplicateUsername(err)
	}
	s.logger.Info().Int64("id", created.ID).Str("username", created.Username).Str("actor", actor).Msg("created")
	return created, nil
}

func (s *UserService) Update(ctx context.Context, actor string, id int64, u *domain.User) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.prepare(u); err != nil {
		return err
	}

	u.ID = id
	if err := s.store.Update(ctx, u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("user", id)
		}
		return duplicateUsername(err)
	}
	s.logger.Info().Int64("id", id).Str("username", u.Username).Str("actor", actor).Msg("updated")
	return nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("user", id)
		}
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	s.logger.Info().Int64("id", id).Msg("deleted")
	return nil
}

// Authenticate checks username and password. Unknown users still cost one
// bcrypt comparison.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.hasher.Matches(s.dummyHash, password)
		return nil, ErrBadCredentials
	}
	if !s.hasher.Matches(u.Password, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// prepare validates u and replaces its plain-text password with a hash.
func (s *UserService) prepare(u *domain.User) error {
	if err := s.validator.Struct(u); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(u.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return validation.Errors{"password": "must not exceed 72 bytes"}
		}
		return err
	}
	u.Password = hash
	return nil
}

func duplicateUsername(err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return validation.Errors{"username": "Username already exists"}
	}
	return err
}

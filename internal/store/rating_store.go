package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/poseidon/internal/domain"
)

type RatingStore struct {
	db DBTX
}

func NewRatingStore(db DBTX) *RatingStore {
	return &RatingStore{db: db}
}

func (s *RatingStore) Create(ctx context.Context, r *domain.Rating) (*domain.Rating, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO rating (moodys_rating, sandp_rating, fitch_rating, order_number) VALUES (?, ?, ?, ?)
	`, r.MoodysRating, r.SandPRating, r.FitchRating, r.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to create rating: %w", translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *RatingStore) GetByID(ctx context.Context, id int64) (*domain.Rating, error) {
	r := &domain.Rating{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, moodys_rating, sandp_rating, fitch_rating, order_number FROM rating WHERE id = ?
	`, id).Scan(&r.ID, &r.MoodysRating, &r.SandPRating, &r.FitchRating, &r.OrderNumber)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	return r, nil
}

func (s *RatingStore) List(ctx context.Context) ([]*domain.Rating, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, moodys_rating, sandp_rating, fitch_rating, order_number FROM rating ORDER BY order_number ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*domain.Rating
	for rows.Next() {
		r := &domain.Rating{}
		if err := rows.Scan(&r.ID, &r.MoodysRating, &r.SandPRating, &r.FitchRating, &r.OrderNumber); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}

	return ratings, nil
}

func (s *RatingStore) Update(ctx context.Context, r *domain.Rating) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE rating SET moodys_rating = ?, sandp_rating = ?, fitch_rating = ?, order_number = ? WHERE id = ?
	`, r.MoodysRating, r.SandPRating, r.FitchRating, r.OrderNumber, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", translateError(err))
	}
	return checkAffected(result)
}

func (s *RatingStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rating WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	return checkAffected(result)
}

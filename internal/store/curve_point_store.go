package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/poseidon/internal/domain"
)

type CurvePointStore struct {
	db DBTX
}

func NewCurvePointStore(db DBTX) *CurvePointStore {
	return &CurvePointStore{db: db}
}

func (s *CurvePointStore) Create(ctx context.Context, cp *domain.CurvePoint) (*domain.CurvePoint, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO curvepoint (curve_id, as_of_date, term, value, creation_date) VALUES (?, ?, ?, ?, ?)
	`, cp.CurveID, nullTime(cp.AsOfDate), cp.Term, cp.Value, nullTime(cp.CreationDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create curve point: %w", translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *CurvePointStore) GetByID(ctx context.Context, id int64) (*domain.CurvePoint, error) {
	cp, err := scanCurvePoint(s.db.QueryRowContext(ctx, `
		SELECT id, curve_id, as_of_date, term, value, creation_date FROM curvepoint WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get curve point: %w", err)
	}
	return cp, nil
}

func (s *CurvePointStore) List(ctx context.Context) ([]*domain.CurvePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, curve_id, as_of_date, term, value, creation_date FROM curvepoint ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list curve points: %w", err)
	}
	defer rows.Close()

	var points []*domain.CurvePoint
	for rows.Next() {
		cp, err := scanCurvePoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan curve point: %w", err)
		}
		points = append(points, cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating curve points: %w", err)
	}

	return points, nil
}

func (s *CurvePointStore) Update(ctx context.Context, cp *domain.CurvePoint) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE curvepoint SET curve_id = ?, as_of_date = ?, term = ?, value = ?, creation_date = ? WHERE id = ?
	`, cp.CurveID, nullTime(cp.AsOfDate), cp.Term, cp.Value, nullTime(cp.CreationDate), cp.ID)
	if err != nil {
		return fmt.Errorf("failed to update curve point: %w", translateError(err))
	}
	return checkAffected(result)
}

func (s *CurvePointStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM curvepoint WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete curve point: %w", err)
	}
	return checkAffected(result)
}

func scanCurvePoint(row scanner) (*domain.CurvePoint, error) {
	cp := &domain.CurvePoint{}
	var asOf, created sql.NullTime
	if err := row.Scan(&cp.ID, &cp.CurveID, &asOf, &cp.Term, &cp.Value, &created); err != nil {
		return nil, err
	}
	cp.AsOfDate = timePtr(asOf)
	cp.CreationDate = timePtr(created)
	return cp, nil
}

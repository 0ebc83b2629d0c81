package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/poseidon/internal/domain"
)

type RuleStore struct {
	db DBTX
}

func NewRuleStore(db DBTX) *RuleStore {
	return &RuleStore{db: db}
}

func (s *RuleStore) Create(ctx context.Context, r *domain.RuleName) (*domain.RuleName, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO rulename (name, description, json, template, sql_str, sql_part) VALUES (?, ?, ?, ?, ?, ?)
	`, r.Name, r.Description, r.JSON, r.Template, r.SQLStr, r.SQLPart)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *RuleStore) GetByID(ctx context.Context, id int64) (*domain.RuleName, error) {
	r := &domain.RuleName{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, json, template, sql_str, sql_part FROM rulename WHERE id = ?
	`, id).Scan(&r.ID, &r.Name, &r.Description, &r.JSON, &r.Template, &r.SQLStr, &r.SQLPart)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return r, nil
}

func (s *RuleStore) List(ctx context.Context) ([]*domain.RuleName, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, json, template, sql_str, sql_part FROM rulename ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []*domain.RuleName
	for rows.Next() {
		r := &domain.RuleName{}
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.JSON, &r.Template, &r.SQLStr, &r.SQLPart); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

func (s *RuleStore) Update(ctx context.Context, r *domain.RuleName) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE rulename SET name = ?, description = ?, json = ?, template = ?, sql_str = ?, sql_part = ? WHERE id = ?
	`, r.Name, r.Description, r.JSON, r.Template, r.SQLStr, r.SQLPart, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", translateError(err))
	}
	return checkAffected(result)
}

func (s *RuleStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rulename WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return checkAffected(result)
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/poseidon/internal/domain"
)

const tradeColumns = `id, account, type, buy_quantity, sell_quantity, buy_price, sell_price, benchmark,
	trade_date, security, status, trader, book,
	creation_name, creation_date, revision_name, revision_date,
	deal_name, deal_type, source_list_id, side`

type TradeStore struct {
	db DBTX
}

func NewTradeStore(db DBTX) *TradeStore {
	return &TradeStore{db: db}
}

func (s *TradeStore) Create(ctx context.Context, t *domain.Trade) (*domain.Trade, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO trade (account, type, buy_quantity, sell_quantity, buy_price, sell_price, benchmark,
			trade_date, security, status, trader, book,
			creation_name, creation_date, revision_name, revision_date,
			deal_name, deal_type, source_list_id, side)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Account, t.Type, t.BuyQuantity, t.SellQuantity, t.BuyPrice, t.SellPrice, t.Benchmark,
		nullTime(t.TradeDate), t.Security, t.Status, t.Trader, t.Book,
		t.CreationName, nullTime(t.CreationDate), t.RevisionName, nullTime(t.RevisionDate),
		t.DealName, t.DealType, t.SourceListID, t.Side)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *TradeStore) GetByID(ctx context.Context, id int64) (*domain.Trade, error) {
	t, err := scanTrade(s.db.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trade WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return t, nil
}

func (s *TradeStore) List(ctx context.Context) ([]*domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tradeColumns+` FROM trade ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

func (s *TradeStore) Update(ctx context.Context, t *domain.Trade) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE trade SET account = ?, type = ?, buy_quantity = ?, sell_quantity = ?, buy_price = ?,
			sell_price = ?, benchmark = ?, trade_date = ?, security = ?, status = ?, trader = ?, book = ?,
			creation_name = ?, creation_date = ?, revision_name = ?, revision_date = ?,
			deal_name = ?, deal_type = ?, source_list_id = ?, side = ?
		WHERE id = ?
	`, t.Account, t.Type, t.BuyQuantity, t.SellQuantity, t.BuyPrice,
		t.SellPrice, t.Benchmark, nullTime(t.TradeDate), t.Security, t.Status, t.Trader, t.Book,
		t.CreationName, nullTime(t.CreationDate), t.RevisionName, nullTime(t.RevisionDate),
		t.DealName, t.DealType, t.SourceListID, t.Side,
		t.ID)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", translateError(err))
	}
	return checkAffected(result)
}

func (s *TradeStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM trade WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	return checkAffected(result)
}

func scanTrade(row scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var tradeDate, creationDate, revisionDate sql.NullTime
	err := row.Scan(&t.ID, &t.Account, &t.Type, &t.BuyQuantity, &t.SellQuantity, &t.BuyPrice, &t.SellPrice, &t.Benchmark,
		&tradeDate, &t.Security, &t.Status, &t.Trader, &t.Book,
		&t.CreationName, &creationDate, &t.RevisionName, &revisionDate,
		&t.DealName, &t.DealType, &t.SourceListID, &t.Side)
	if err != nil {
		return nil, err
	}
	t.TradeDate = timePtr(tradeDate)
	t.CreationDate = timePtr(creationDate)
	t.RevisionDate = timePtr(revisionDate)
	return t, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/poseidon/internal/domain"
)

const bidColumns = `id, account, type, bid_quantity, ask_quantity, bid, ask, benchmark,
	bid_list_date, commentary, security, status, trader, book,
	creation_name, creation_date, revision_name, revision_date,
	deal_name, deal_type, source_list_id, side`

type BidStore struct {
	db DBTX
}

func NewBidStore(db DBTX) *BidStore {
	return &BidStore{db: db}
}

func (s *BidStore) Create(ctx context.Context, b *domain.BidList) (*domain.BidList, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO bidlist (account, type, bid_quantity, ask_quantity, bid, ask, benchmark,
			bid_list_date, commentary, security, status, trader, book,
			creation_name, creation_date, revision_name, revision_date,
			deal_name, deal_type, source_list_id, side)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.Account, b.Type, b.BidQuantity, b.AskQuantity, b.Bid, b.Ask, b.Benchmark,
		nullTime(b.BidListDate), b.Commentary, b.Security, b.Status, b.Trader, b.Book,
		b.CreationName, nullTime(b.CreationDate), b.RevisionName, nullTime(b.RevisionDate),
		b.DealName, b.DealType, b.SourceListID, b.Side)
	if err != nil {
		return nil, fmt.Errorf("failed to create bid: %w", translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *BidStore) GetByID(ctx context.Context, id int64) (*domain.BidList, error) {
	b, err := scanBid(s.db.QueryRowContext(ctx, `SELECT `+bidColumns+` FROM bidlist WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return b, nil
}

func (s *BidStore) List(ctx context.Context) ([]*domain.BidList, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bidColumns+` FROM bidlist ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	var bids []*domain.BidList
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return bids, nil
}

func (s *BidStore) Update(ctx context.Context, b *domain.BidList) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE bidlist SET account = ?, type = ?, bid_quantity = ?, ask_quantity = ?, bid = ?, ask = ?,
			benchmark = ?, bid_list_date = ?, commentary = ?, security = ?, status = ?, trader = ?,
			book = ?, creation_name = ?, creation_date = ?, revision_name = ?, revision_date = ?,
			deal_name = ?, deal_type = ?, source_list_id = ?, side = ?
		WHERE id = ?
	`, b.Account, b.Type, b.BidQuantity, b.AskQuantity, b.Bid, b.Ask,
		b.Benchmark, nullTime(b.BidListDate), b.Commentary, b.Security, b.Status, b.Trader,
		b.Book, b.CreationName, nullTime(b.CreationDate), b.RevisionName, nullTime(b.RevisionDate),
		b.DealName, b.DealType, b.SourceListID, b.Side,
		b.ID)
	if err != nil {
		return fmt.Errorf("failed to update bid: %w", translateError(err))
	}
	return checkAffected(result)
}

func (s *BidStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bidlist WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bid: %w", err)
	}
	return checkAffected(result)
}

func scanBid(row scanner) (*domain.BidList, error) {
	b := &domain.BidList{}
	var bidListDate, creationDate, revisionDate sql.NullTime
	err := row.Scan(&b.ID, &b.Account, &b.Type, &b.BidQuantity, &b.AskQuantity, &b.Bid, &b.Ask, &b.Benchmark,
		&bidListDate, &b.Commentary, &b.Security, &b.Status, &b.Trader, &b.Book,
		&b.CreationName, &creationDate, &b.RevisionName, &revisionDate,
		&b.DealName, &b.DealType, &b.SourceListID, &b.Side)
	if err != nil {
		return nil, err
	}
	b.BidListDate = timePtr(bidListDate)
	b.CreationDate = timePtr(creationDate)
	b.RevisionDate = timePtr(revisionDate)
	return b, nil
}

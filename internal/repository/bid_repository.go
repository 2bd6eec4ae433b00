package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/auction-house/internal/model"
)

// BidRepo provides persistence for bids.  Bids are append-only.
type BidRepo struct{ DB *sql.DB }

func NewBidRepo(db *sql.DB) *BidRepo { return &BidRepo{DB: db} }

// Create records an accepted bid and returns it with its assigned id.
// Amount validation happens in the handler before this is reached.
func (r *BidRepo) Create(ctx context.Context, auctionID, bidderID uint64, amount float64) (model.Bid, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO bids (auction_id, bidder_id, bid_amount) VALUES (?,?,?)",
		auctionID, bidderID, amount)
	if err != nil {
		return model.Bid{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Bid{}, err
	}
	return model.Bid{
		ID:        uint64(id),
		AuctionID: auctionID,
		BidderID:  bidderID,
		BidAmount: amount,
	}, nil
}

// HighestForAuction returns the current highest bid amount for an auction
// and whether any bid exists yet.
func (r *BidRepo) HighestForAuction(ctx context.Context, auctionID uint64) (float64, bool, error) {
	var amount sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		"SELECT MAX(bid_amount) FROM bids WHERE auction_id=?", auctionID).Scan(&amount)
	if err != nil {
		return 0, false, err
	}
	return amount.Float64, amount.Valid, nil
}

// ListForAuction returns the bid history of an auction, highest first.
func (r *BidRepo) ListForAuction(ctx context.Context, auctionID uint64) ([]model.Bid, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,auction_id,bidder_id,bid_amount,created_at FROM bids WHERE auction_id=? ORDER BY bid_amount DESC, created_at ASC",
		auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.BidAmount, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/auction-house/internal/model"
)

const auctionColumns = "id,item_id,seller_id,item_title,item_description,starting_bid,image_filename,start_time,end_time,is_approved,created_at,updated_at"

// AuctionRepo provides persistence for auction items.
type AuctionRepo struct{ DB *sql.DB }

func NewAuctionRepo(db *sql.DB) *AuctionRepo { return &AuctionRepo{DB: db} }

// Create inserts an auction for the given seller and returns the stored
// record.  The public item id is generated here.
func (r *AuctionRepo) Create(ctx context.Context, sellerID uint64, title, description string, startingBid float64, imageFilename string, endTime *time.Time) (model.Auction, error) {
	itemID := uuid.NewString()
	var end sql.NullTime
	if endTime != nil {
		end = sql.NullTime{Time: endTime.UTC(), Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO auctions (item_id, seller_id, item_title, item_description, starting_bid, image_filename, end_time) VALUES (?,?,?,?,?,?,?)",
		itemID, sellerID, title, description, startingBid, imageFilename, end)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Auction{}, ErrItemExists
		}
		return model.Auction{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Auction{}, err
	}
	return model.Auction{
		ID:              uint64(id),
		ItemID:          itemID,
		SellerID:        sellerID,
		ItemTitle:       title,
		ItemDescription: description,
		StartingBid:     startingBid,
		ImageFilename:   imageFilename,
		EndTime:         end,
	}, nil
}

// GetByItemID fetches an auction by its public item id.
func (r *AuctionRepo) GetByItemID(ctx context.Context, itemID string) (model.Auction, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+auctionColumns+" FROM auctions WHERE item_id=? LIMIT 1", itemID)
	return scanAuction(row)
}

// List returns all auctions, newest first.
func (r *AuctionRepo) List(ctx context.Context) ([]model.Auction, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+auctionColumns+" FROM auctions ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Auction
	for rows.Next() {
		var a model.Auction
		if err := rows.Scan(&a.ID, &a.ItemID, &a.SellerID, &a.ItemTitle, &a.ItemDescription,
			&a.StartingBid, &a.ImageFilename, &a.StartTime, &a.EndTime, &a.IsApproved,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of an auction.  Ownership is checked
// by the caller; the image filename is only replaced when non-empty.
func (r *AuctionRepo) Update(ctx context.Context, itemID, title, description string, startingBid float64, imageFilename string, endTime *time.Time) error {
	var end sql.NullTime
	if endTime != nil {
		end = sql.NullTime{Time: endTime.UTC(), Valid: true}
	}
	query := "UPDATE auctions SET item_title=?, item_description=?, starting_bid=?, end_time=?"
	args := []interface{}{title, description, startingBid, end}
	if imageFilename != "" {
		query += ", image_filename=?"
		args = append(args, imageFilename)
	}
	query += " WHERE item_id=?"
	args = append(args, itemID)

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	// Zero affected rows is fine when values are unchanged; existence is
	// verified by the caller's preceding fetch.
	_ = n
	return nil
}

// SetApproved marks an auction as approved for listing.  Existence is
// verified by the caller's preceding fetch; an unchanged flag reports zero
// affected rows on MySQL and must not be treated as missing.
func (r *AuctionRepo) SetApproved(ctx context.Context, itemID string, approved bool) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE auctions SET is_approved=? WHERE item_id=?", approved, itemID)
	return err
}

func scanAuction(row *sql.Row) (model.Auction, error) {
	var a model.Auction
	err := row.Scan(&a.ID, &a.ItemID, &a.SellerID, &a.ItemTitle, &a.ItemDescription,
		&a.StartingBid, &a.ImageFilename, &a.StartTime, &a.EndTime, &a.IsApproved,
		&a.CreatedAt, &a.UpdatedAt)
	return a, err
}

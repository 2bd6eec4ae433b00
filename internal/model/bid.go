package model

import "time"

// Bid mirrors the `bids` table.  Bids are append-only: once accepted they
// are never edited or deleted, so the table doubles as the bid history.
type Bid struct {
	ID        uint64    // bids.id
	AuctionID uint64    // bids.auction_id
	BidderID  uint64    // bids.bidder_id
	BidAmount float64   // bids.bid_amount
	CreatedAt time.Time // bids.created_at
}

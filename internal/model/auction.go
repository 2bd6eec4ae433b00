package model

import (
	"database/sql"
	"time"
)

// Auction mirrors the `auctions` table.  ItemID is the public identifier
// used in URLs; SellerID references users.id.  ImageFilename holds the name
// returned by the image store and is empty when no image was uploaded.
type Auction struct {
	ID              uint64       // auctions.id
	ItemID          string       // auctions.item_id (UUID)
	SellerID        uint64       // auctions.seller_id
	ItemTitle       string       // auctions.item_title
	ItemDescription string       // auctions.item_description
	StartingBid     float64      // auctions.starting_bid
	ImageFilename   string       // auctions.image_filename
	StartTime       time.Time    // auctions.start_time
	EndTime         sql.NullTime // auctions.end_time (nullable)
	IsApproved      bool         // auctions.is_approved
	CreatedAt       time.Time    // auctions.created_at
	UpdatedAt       time.Time    // auctions.updated_at
}

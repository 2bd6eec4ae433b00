// Package queue defines message payloads exchanged over the message broker.
package queue

// BidPlacedEvent is published after a bid is accepted.  It carries enough
// information for downstream consumers (live auction pages, analytics) to
// act without querying the primary database.  Delivery is fire-and-forget:
// the bid itself is already committed when this is sent.
type BidPlacedEvent struct {
	ItemID    string  `json:"item_id"`
	ItemTitle string  `json:"item_title"`
	BidderID  string  `json:"bidder_id"`
	BidAmount float64 `json:"bid_amount"`
	PlacedAt  string  `json:"placed_at"`
}

package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-house/internal/model"
	"github.com/iliyamo/auction-house/internal/queue"
	"github.com/iliyamo/auction-house/internal/repository"
	queue_publisher "github.com/iliyamo/auction-house/internal/service"
	"github.com/iliyamo/auction-house/internal/storage"
)

// AuctionHandler bundles dependencies for auction CRUD and bidding.
// Publish defaults to the RabbitMQ publisher and is a field so tests can
// intercept broadcast events.
type AuctionHandler struct {
	Auctions *repository.AuctionRepo
	Bids     *repository.BidRepo
	Images   storage.Store
	Publish  func(ctx context.Context, ev queue.BidPlacedEvent) error
}

func NewAuctionHandler(auctions *repository.AuctionRepo, bids *repository.BidRepo, images storage.Store) *AuctionHandler {
	return &AuctionHandler{
		Auctions: auctions,
		Bids:     bids,
		Images:   images,
		Publish:  queue_publisher.PublishBidPlaced,
	}
}

// ----- DTOs -----

type auctionReq struct {
	ItemTitle       string  `json:"item_title" form:"item_title"`
	ItemDescription string  `json:"item_description" form:"item_description"`
	StartingBid     float64 `json:"starting_bid" form:"starting_bid"`
	EndTime         string  `json:"end_time" form:"end_time"` // RFC3339, optional
}

type auctionResp struct {
	ItemID          string     `json:"item_id"`
	SellerID        uint64     `json:"seller_id"`
	ItemTitle       string     `json:"item_title"`
	ItemDescription string     `json:"item_description"`
	StartingBid     float64    `json:"starting_bid"`
	ImageFilename   string     `json:"image_filename,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	IsApproved      bool       `json:"is_approved"`
}

func toAuctionResp(a model.Auction) auctionResp {
	resp := auctionResp{
		ItemID:          a.ItemID,
		SellerID:        a.SellerID,
		ItemTitle:       a.ItemTitle,
		ItemDescription: a.ItemDescription,
		StartingBid:     a.StartingBid,
		ImageFilename:   a.ImageFilename,
		StartTime:       a.StartTime,
		IsApproved:      a.IsApproved,
	}
	if a.EndTime.Valid {
		t := a.EndTime.Time
		resp.EndTime = &t
	}
	return resp
}

type bidReq struct {
	BidAmount float64 `json:"bid_amount"`
}

type bidResp struct {
	AuctionID string    `json:"auction_id"`
	BidderID  uint64    `json:"bidder_id"`
	BidAmount float64   `json:"bid_amount"`
	CreatedAt time.Time `json:"created_at"`
}

// bindAuctionReq reads the request either as JSON or as a multipart form
// with an optional "image" file.  The multipart path is what the browser
// upload form uses.
func bindAuctionReq(c echo.Context) (auctionReq, *multipart.FileHeader, error) {
	var req auctionReq
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		req.ItemTitle = c.FormValue("item_title")
		req.ItemDescription = c.FormValue("item_description")
		req.EndTime = c.FormValue("end_time")
		if v := c.FormValue("starting_bid"); v != "" {
			bid, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return req, nil, fmt.Errorf("invalid starting_bid")
			}
			req.StartingBid = bid
		}
		file, err := c.FormFile("image")
		if err != nil {
			// No file part is fine; images are optional.
			return req, nil, nil
		}
		return req, file, nil
	}
	if err := c.Bind(&req); err != nil {
		return req, nil, fmt.Errorf("invalid body")
	}
	return req, nil, nil
}

func parseEndTime(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid end_time, expected RFC3339")
	}
	return &t, nil
}

// saveImage validates the upload against the extension whitelist, assigns
// a random filename and hands the bytes to the configured store.
func (h *AuctionHandler) saveImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if !storage.AllowedExtension(file.Filename) {
		return "", fmt.Errorf("unsupported image type")
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	return h.Images.Save(ctx, name, src)
}

// Create opens a new auction owned by the caller.  Seller role required.
func (h *AuctionHandler) Create(c echo.Context) error {
	req, file, err := bindAuctionReq(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	req.ItemTitle = strings.TrimSpace(req.ItemTitle)
	req.ItemDescription = strings.TrimSpace(req.ItemDescription)
	if req.ItemTitle == "" || req.ItemDescription == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "item_title and item_description are required"})
	}
	if req.StartingBid <= 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "starting_bid must be positive"})
	}
	endTime, err := parseEndTime(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	var imageName string
	if file != nil {
		imageName, err = h.saveImage(ctx, file)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
	}

	a, err := h.Auctions.Create(ctx, uid, req.ItemTitle, req.ItemDescription, req.StartingBid, imageName, endTime)
	if err != nil {
		return httpError(c, err, "Auction not found")
	}
	return c.JSON(http.StatusCreated, toAuctionResp(a))
}

// Get returns a single auction by its public item id.
func (h *AuctionHandler) Get(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	a, err := h.Auctions.GetByItemID(ctx, c.Param("item_id"))
	if err != nil {
		return httpError(c, err, "Auction not found")
	}
	return c.JSON(http.StatusOK, toAuctionResp(a))
}

// List returns all auctions, newest first.  The route sits behind the
// Redis response cache.
func (h *AuctionHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	auctions, err := h.Auctions.List(ctx)
	if err != nil {
		return httpError(c, err, "Auction not found")
	}
	resp := make([]auctionResp, 0, len(auctions))
	for _, a := range auctions {
		resp = append(resp, toAuctionResp(a))
	}
	return c.JSON(http.StatusOK, resp)
}

// Edit updates an auction.  Only the owning seller or an admin may edit;
// omitted fields keep their stored values.
func (h *AuctionHandler) Edit(c echo.Context) error {
	req, file, err := bindAuctionReq(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	a, err := h.Auctions.GetByItemID(ctx, c.Param("item_id"))
	if err != nil {
		return httpError(c, err, "Auction not found")
	}
	if a.SellerID != uid && !currentRoles(c).Admin() {
		return httpError(c, repository.ErrForbidden, "Auction not found")
	}

	title := a.ItemTitle
	if strings.TrimSpace(req.ItemTitle) != "" {
		title = strings.TrimSpace(req.ItemTitle)
	}
	description := a.ItemDescription
	if strings.TrimSpace(req.ItemDescription) != "" {
		description = strings.TrimSpace(req.ItemDescription)
	}
	startingBid := a.StartingBid
	if req.StartingBid > 0 {
		startingBid = req.StartingBid
	}
	endTime, err := parseEndTime(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	if endTime == nil && a.EndTime.Valid {
		t := a.EndTime.Time
		endTime = &t
	}

	var imageName string
	if file != nil {
		imageName, err = h.saveImage(ctx, file)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
	}

	if err := h.Auctions.Update(ctx, a.ItemID, title, description, startingBid, imageName, endTime); err != nil {
		return httpError(c, err, "Auction not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Item updated successfully."})
}

// Approve marks an auction as approved for listing.  Admin only.
func (h *AuctionHandler) Approve(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	a, err := h.Auctions.GetByItemID(ctx, c.Param("item_id"))
	if err != nil {
		return httpError(c, err, "Auction not found")
	}
	if err := h.Auctions.SetApproved(ctx, a.ItemID, true); err != nil {
		return httpError(c, err, "Auction not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Auction approved successfully."})
}

// PlaceBid records a bid on an auction.  Buyer role required.  The amount
// must beat both the starting bid and the current highest bid; a rejected
// bid leaves the auction untouched.  Accepted bids are broadcast on the
// bid channel; a publish failure never fails the request.
func (h *AuctionHandler) PlaceBid(c echo.Context) error {
	var req bidReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	a, err := h.Auctions.GetByItemID(ctx, c.Param("item_id"))
	if err != nil {
		return httpError(c, err, "Auction not found")
	}
	if req.BidAmount <= a.StartingBid {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Bid must be higher than the starting bid."})
	}
	highest, exists, err := h.Bids.HighestForAuction(ctx, a.ID)
	if err != nil {
		return httpError(c, err, "Auction not found")
	}
	if exists && req.BidAmount <= highest {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "Bid must be higher than the current highest bid."})
	}

	bid, err := h.Bids.Create(ctx, a.ID, uid, req.BidAmount)
	if err != nil {
		return httpError(c, err, "Auction not found")
	}

	publicID, _ := c.Get("public_id").(string)
	_ = h.Publish(c.Request().Context(), queue.BidPlacedEvent{
		ItemID:    a.ItemID,
		ItemTitle: a.ItemTitle,
		BidderID:  publicID,
		BidAmount: bid.BidAmount,
		PlacedAt:  time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"message": "Bid placed successfully."})
}

// BidHistory returns all bids on an auction, highest first.
func (h *AuctionHandler) BidHistory(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	a, err := h.Auctions.GetByItemID(ctx, c.Param("item_id"))
	if err != nil {
		return httpError(c, err, "Auction not found")
	}
	bids, err := h.Bids.ListForAuction(ctx, a.ID)
	if err != nil {
		return httpError(c, err, "Auction not found")
	}
	resp := make([]bidResp, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, bidResp{
			AuctionID: a.ItemID,
			BidderID:  b.BidderID,
			BidAmount: b.BidAmount,
			CreatedAt: b.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-house/internal/config"
	"github.com/iliyamo/auction-house/internal/model"
	"github.com/iliyamo/auction-house/internal/repository"
)

// AdminHandler bundles the role-gated account management endpoints and the
// auction report.  Role enforcement happens in middleware; handlers here
// only implement the operations.
type AdminHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Auctions *repository.AuctionRepo
	Bids     *repository.BidRepo
}

func NewAdminHandler(cfg config.Config, users *repository.UserRepo, auctions *repository.AuctionRepo, bids *repository.BidRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: users, Auctions: auctions, Bids: bids}
}

// GetUser returns a sanitized account record by public id.
func (h *AdminHandler) GetUser(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByPublicID(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// BlockUser marks an account as blocked and bumps its token_version so the
// user's live sessions stop authenticating immediately instead of riding
// out their token TTL.
func (h *AdminHandler) BlockUser(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	target, err := h.Users.GetByPublicID(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err, "User not found")
	}
	if err := h.Users.SetBlocked(ctx, target.PublicID, true); err != nil {
		return httpError(c, err, "User not found")
	}
	if err := h.Users.BumpTokenVersion(ctx, target.ID); err != nil {
		return httpError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User blocked successfully."})
}

// UnblockUser lifts a block.  Tokens revoked by the block stay revoked;
// the user simply logs in again.
func (h *AdminHandler) UnblockUser(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	target, err := h.Users.GetByPublicID(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err, "User not found")
	}
	if err := h.Users.SetBlocked(ctx, target.PublicID, false); err != nil {
		return httpError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User unblocked successfully."})
}

// CreateAdmin creates an account carrying the admin flag.  The route is
// gated to super admins only.
func (h *AdminHandler) CreateAdmin(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "username, email and password are required"})
	}

	roles := model.DefaultRoles()
	roles.IsAdmin = true

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, roles, h.Cfg.BcryptCost); err != nil {
		return httpError(c, err, "User not found")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Admin created successfully"})
}

// reportRow is one auction in the marketplace report with its bid summary.
type reportRow struct {
	auctionResp
	BidCount   int     `json:"bid_count"`
	HighestBid float64 `json:"highest_bid"`
}

// AuctionReport returns every auction with bid statistics.  Accessible to
// admins and super admins.
func (h *AdminHandler) AuctionReport(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	auctions, err := h.Auctions.List(ctx)
	if err != nil {
		return httpError(c, err, "Auction not found")
	}

	report := make([]reportRow, 0, len(auctions))
	for _, a := range auctions {
		bids, err := h.Bids.ListForAuction(ctx, a.ID)
		if err != nil {
			return httpError(c, err, "Auction not found")
		}
		row := reportRow{auctionResp: toAuctionResp(a), BidCount: len(bids)}
		if len(bids) > 0 {
			row.HighestBid = bids[0].BidAmount
		}
		report = append(report, row)
	}
	return c.JSON(http.StatusOK, report)
}

// DeleteUser permanently removes an account.  Super admin only.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Users.Delete(ctx, c.Param("id")); err != nil {
		return httpError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

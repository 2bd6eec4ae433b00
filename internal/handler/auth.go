package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-house/internal/auth"
	"github.com/iliyamo/auction-house/internal/config"
	"github.com/iliyamo/auction-house/internal/model"
	"github.com/iliyamo/auction-house/internal/repository"
	"github.com/iliyamo/auction-house/internal/utils"
)

// AuthHandler bundles dependencies for registration, login and logout.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userResp struct {
	UserID    string      `json:"user_id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Roles     model.Roles `json:"roles"`
	IsBlocked bool        `json:"is_blocked"`
	CreatedAt time.Time   `json:"created_at"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		UserID:    u.PublicID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     u.Roles,
		IsBlocked: u.IsBlocked,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates a user account with the default buyer/seller roles.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "username, email and password are required"})
	}
	if !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid email address"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, model.DefaultRoles(), h.Cfg.BcryptCost); err != nil {
		return httpError(c, err, "User not found")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully"})
}

// Login verifies credentials and issues an access token.  Unknown username
// and wrong password are deliberately indistinguishable so the status code
// cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "username and password are required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
		}
		return httpError(c, err, "User not found")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}
	if u.IsBlocked {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Account is blocked"})
	}

	token, err := auth.NewAccessToken(h.Cfg.JWTSecret, u, h.Cfg.AccessTTLSec)
	if err != nil {
		return httpError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, loginResp{Token: token.Token, Expires: token.Exp})
}

// Logout bumps the caller's token_version, which invalidates every access
// token issued to them so far.  Protected by the auth gate.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Users.BumpTokenVersion(ctx, uid); err != nil {
		return httpError(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Me returns the authenticated caller's identity as resolved by the gate.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  c.Get("public_id"),
		"username": c.Get("username"),
		"roles":    currentRoles(c),
	})
}

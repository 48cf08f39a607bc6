package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/config"
	"github.com/iliyamo/smm-webpanel/internal/mail"
	"github.com/iliyamo/smm-webpanel/internal/middleware"
	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
	"github.com/iliyamo/smm-webpanel/internal/utils"
)

// resetTokenTTL is how long a password reset link stays valid.
const resetTokenTTL = time.Hour

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens ResetTokenStore
	Logs   LogStore
	Mail   mail.Sender
	Log    *logrus.Logger
}

func NewAuthHandler(cfg config.Config, users UserStore, tokens ResetTokenStore, logs LogStore, sender mail.Sender, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens, Logs: logs, Mail: sender, Log: log}
}

type registerReq struct {
	Username     string `json:"username" validate:"required,username"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	ReferralCode string `json:"referral_code"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotReq struct {
	Email string `json:"email"`
}

type resetReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type userPart struct {
	ID       uint64          `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Role     model.Role      `json:"role"`
	Balance  decimal.Decimal `json:"balance"`
}

func toUserPart(u *model.User) userPart {
	return userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, Balance: u.Balance}
}

// logLogin records an attempt; failures only reach the log.
func (h *AuthHandler) logLogin(c echo.Context, userID *uint64, email, status string) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Logs.LogLogin(ctx, userID, email, c.RealIP(), c.Request().UserAgent(), status); err != nil {
		h.Log.WithError(err).Warn("login log not written")
	}
}

func (h *AuthHandler) issue(u *model.User) (string, error) {
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), h.Cfg.JWTTTL)
	return tok.Token, err
}

// Register creates a client account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = repository.NormalizeEmail(req.Email)

	ctx, cancel := reqCtx(c)
	defer cancel()

	taken, err := h.Users.Taken(ctx, req.Username, req.Email, 0)
	if err != nil {
		return serverError(c, h.Log, err, "register")
	}
	if taken {
		return fail(c, http.StatusBadRequest, "Username or email already exists")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return serverError(c, h.Log, err, "register")
	}
	u := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleClient,
		Balance:      decimal.Zero,
		Status:       model.UserActive,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, http.StatusBadRequest, "Username or email already exists")
		}
		return serverError(c, h.Log, err, "register")
	}

	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		if _, err := h.Users.AttachReferral(ctx, code, u.ID); err != nil {
			h.Log.WithError(err).WithField("user_id", u.ID).Warn("referral not recorded")
		}
	}

	token, err := h.issue(u)
	if err != nil {
		return serverError(c, h.Log, err, "register")
	}
	h.logLogin(c, &u.ID, u.Email, model.LoginSuccess)

	return ok(c, http.StatusCreated, echo.Map{
		"message": "Registration successful",
		"token":   token,
		"user":    toUserPart(u),
	})
}

// Login checks credentials. Every attempt lands in login_logs.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Email = repository.NormalizeEmail(req.Email)

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		h.logLogin(c, nil, req.Email, model.LoginFailed)
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return serverError(c, h.Log, err, "login")
	}
	if !u.IsActive() {
		h.logLogin(c, &u.ID, req.Email, model.LoginFailed)
		return fail(c, http.StatusForbidden, "Account is suspended or banned")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		h.logLogin(c, &u.ID, req.Email, model.LoginFailed)
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}

	if err := h.Users.TouchLastLogin(ctx, u.ID); err != nil {
		return serverError(c, h.Log, err, "login")
	}
	token, err := h.issue(u)
	if err != nil {
		return serverError(c, h.Log, err, "login")
	}
	h.logLogin(c, &u.ID, req.Email, model.LoginSuccess)

	return ok(c, http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   token,
		"user":    toUserPart(u),
	})
}

// Me returns the profile of the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	id, _ := middleware.UserID(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "User not found")
	}
	if err != nil {
		return serverError(c, h.Log, err, "me")
	}
	return ok(c, http.StatusOK, echo.Map{"user": u})
}

// ForgotPassword answers the same way whether or not the email exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	const answer = "If the email exists, a password reset link has been sent."
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return ok(c, http.StatusOK, echo.Map{"message": answer})
	}
	if err != nil {
		return serverError(c, h.Log, err, "forgot password")
	}

	raw, err := utils.NewResetToken()
	if err != nil {
		return serverError(c, h.Log, err, "forgot password")
	}
	if err := h.Tokens.ReplaceReset(ctx, u.ID, utils.HashToken(raw), time.Now().UTC().Add(resetTokenTTL)); err != nil {
		return serverError(c, h.Log, err, "forgot password")
	}
	subject, body := mail.ResetPasswordMessage(h.Cfg.BaseURL, raw)
	if err := h.Mail.Send(ctx, u.Email, subject, body); err != nil {
		h.Log.WithError(err).WithField("user_id", u.ID).Error("reset mail not sent")
	}
	return ok(c, http.StatusOK, echo.Map{"message": answer})
}

// ResetPassword consumes a reset token and stores the new password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || req.Token == "" || len(req.NewPassword) < 6 {
		return fail(c, http.StatusBadRequest, "Invalid token or password")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hash := utils.HashToken(req.Token)
	userID, err := h.Tokens.ValidateReset(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusBadRequest, "Invalid or expired token")
	}
	if err != nil {
		return serverError(c, h.Log, err, "reset password")
	}
	pw, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return serverError(c, h.Log, err, "reset password")
	}
	// the token is burned only together with the password write
	if err := h.Tokens.Consume(ctx, hash, userID, pw); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusBadRequest, "Invalid or expired token")
		}
		return serverError(c, h.Log, err, "reset password")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Password reset successful"})
}

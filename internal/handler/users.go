package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
	"github.com/iliyamo/smm-webpanel/internal/utils"
)

// UserHandler serves profile management and the admin user list.
type UserHandler struct {
	Users      UserStore
	BcryptCost int
	Log        *logrus.Logger
}

func NewUserHandler(users UserStore, bcryptCost int, log *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, BcryptCost: bcryptCost, Log: log}
}

type profileReq struct {
	Username *string `json:"username" validate:"omitempty,username"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type passwordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type userStatusReq struct {
	Status string `json:"status"`
}

func (h *UserHandler) Profile(c echo.Context) error {
	id, _ := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "User not found")
	}
	if err != nil {
		return serverError(c, h.Log, err, "get profile")
	}
	return ok(c, http.StatusOK, echo.Map{"user": u})
}

// UpdateProfile changes username and/or email; both stay unique.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Username != nil {
		v := strings.TrimSpace(*req.Username)
		req.Username = &v
	}
	if req.Email != nil {
		v := repository.NormalizeEmail(*req.Email)
		req.Email = &v
	}
	if req.Username == nil && req.Email == nil {
		return fail(c, http.StatusBadRequest, "No fields to update")
	}

	id, _ := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	var username, email string
	if req.Username != nil {
		username = *req.Username
	}
	if req.Email != nil {
		email = *req.Email
	}
	taken, err := h.Users.Taken(ctx, username, email, id)
	if err != nil {
		return serverError(c, h.Log, err, "update profile")
	}
	if taken {
		return fail(c, http.StatusBadRequest, "Username or email already exists")
	}

	if err := h.Users.UpdateProfile(ctx, id, req.Username, req.Email); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, http.StatusBadRequest, "Username or email already exists")
		}
		return serverError(c, h.Log, err, "update profile")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Profile updated successfully"})
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fail(c, http.StatusBadRequest, "Current password and new password are required")
	}
	if len(req.NewPassword) < 6 {
		return fail(c, http.StatusBadRequest, "New password must be at least 6 characters")
	}

	id, _ := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return serverError(c, h.Log, err, "change password")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return fail(c, http.StatusBadRequest, "Current password is incorrect")
	}
	hash, err := utils.HashPassword(req.NewPassword, h.BcryptCost)
	if err != nil {
		return serverError(c, h.Log, err, "change password")
	}
	if err := h.Users.UpdatePassword(ctx, id, hash); err != nil {
		return serverError(c, h.Log, err, "change password")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

// GenerateAPIKey replaces the caller's API key. The raw key is only ever
// shown in this response.
func (h *UserHandler) GenerateAPIKey(c echo.Context) error {
	id, _ := caller(c)
	key, err := utils.NewAPIKey()
	if err != nil {
		return serverError(c, h.Log, err, "generate api key")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.SetAPIKeyHash(ctx, id, utils.HashToken(key)); err != nil {
		return serverError(c, h.Log, err, "generate api key")
	}
	return ok(c, http.StatusCreated, echo.Map{
		"message": "API key generated. Store it now, it will not be shown again.",
		"api_key": key,
	})
}

// List is the admin user directory.
func (h *UserHandler) List(c echo.Context) error {
	page := pageFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, total, err := h.Users.List(ctx, repository.UserFilter{
		Role:   c.QueryParam("role"),
		Status: c.QueryParam("status"),
		Search: strings.TrimSpace(c.QueryParam("search")),
		Page:   page,
	})
	if err != nil {
		return serverError(c, h.Log, err, "list users")
	}
	return ok(c, http.StatusOK, echo.Map{"users": users, "pagination": page.Paginate(total)})
}

// UpdateStatus bans, suspends or reactivates an account. Admins cannot
// change their own status.
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	target, okID := paramID(c)
	if !okID {
		return fail(c, http.StatusBadRequest, "Invalid user id")
	}
	var req userStatusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	status, valid := model.ParseUserStatus(req.Status)
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}
	if id, _ := caller(c); id == target {
		return fail(c, http.StatusBadRequest, "You cannot change your own status")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.UpdateStatus(ctx, target, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "User not found")
		}
		return serverError(c, h.Log, err, "update user status")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "User status updated successfully"})
}

package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
	"github.com/iliyamo/smm-webpanel/internal/utils"
)

func usersEcho(t *testing.T, u *model.User, users *memUsers) *echo.Echo {
	t.Helper()
	e := newTestEcho(t)
	h := NewUserHandler(users, bcrypt.MinCost, quietLogger())
	e.GET("/profile", h.Profile, as(u))
	e.PUT("/profile", h.UpdateProfile, as(u))
	e.PUT("/password", h.ChangePassword, as(u))
	e.POST("/api-key", h.GenerateAPIKey, as(u))
	e.GET("/users", h.List, as(u))
	e.PATCH("/users/:id/status", h.UpdateStatus, as(u))
	return e
}

func TestUpdateProfile(t *testing.T) {
	users := newMemUsers(client, seller)
	e := usersEcho(t, client, users)

	rec := do(e, http.MethodPut, "/profile", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No fields to update", decode(t, rec)["message"])

	rec = do(e, http.MethodPut, "/profile", `{"username":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username or email already exists", decode(t, rec)["message"])

	rec = do(e, http.MethodPut, "/profile", `{"email":"BOB@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPut, "/profile", `{"username":"x!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", decode(t, rec)["message"])

	// keeping one's own username is not a conflict
	rec = do(e, http.MethodPut, "/profile", `{"username":"alice","email":"Alice.New@Example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "alice.new@example.com", users.byID[client.ID].Email)

	body := decode(t, do(e, http.MethodGet, "/profile", ""))
	profile := body["user"].(map[string]any)
	assert.Equal(t, "alice.new@example.com", profile["email"])
	assert.NotContains(t, profile, "password_hash")
}

func TestChangePassword(t *testing.T) {
	users := newMemUsers(withPassword(t, client, "secret1", model.UserActive))
	e := usersEcho(t, client, users)

	cases := []struct {
		name, body, msg string
	}{
		{"missing", `{"current_password":"secret1"}`, "Current password and new password are required"},
		{"short", `{"current_password":"secret1","new_password":"123"}`, "New password must be at least 6 characters"},
		{"wrong current", `{"current_password":"nope123","new_password":"secret2"}`, "Current password is incorrect"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, http.MethodPut, "/password", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.msg, decode(t, rec)["message"])
		})
	}
	assert.True(t, utils.VerifyPassword(users.byID[client.ID].PasswordHash, "secret1"))

	rec := do(e, http.MethodPut, "/password", `{"current_password":"secret1","new_password":"secret2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, utils.VerifyPassword(users.byID[client.ID].PasswordHash, "secret2"))
}

func TestGenerateAPIKey(t *testing.T) {
	users := newMemUsers(client)
	e := usersEcho(t, client, users)

	rec := do(e, http.MethodPost, "/api-key", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	key, _ := decode(t, rec)["api_key"].(string)
	require.True(t, strings.HasPrefix(key, utils.APIKeyPrefix), key)

	stored := users.byID[client.ID].APIKeyHash
	require.NotNil(t, stored)
	assert.Equal(t, utils.HashToken(key), *stored)
	assert.NotEqual(t, key, *stored)

	again, _ := decode(t, do(e, http.MethodPost, "/api-key", ""))["api_key"].(string)
	assert.NotEqual(t, key, again)
	assert.Equal(t, utils.HashToken(again), *users.byID[client.ID].APIKeyHash)
}

func TestListUsers(t *testing.T) {
	users := newMemUsers(client, seller, admin)
	e := usersEcho(t, admin, users)

	rec := do(e, http.MethodGet, "/users?role=seller&status=active&search=%20bob%20&page=2&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["users"], 3)
	assert.Contains(t, body, "pagination")

	require.Len(t, users.filters, 1)
	assert.Equal(t, repository.UserFilter{
		Role: "seller", Status: "active", Search: "bob", Page: model.Page{Page: 2, Limit: 5},
	}, users.filters[0])
}

func TestUpdateUserStatus(t *testing.T) {
	users := newMemUsers(client, admin)
	e := usersEcho(t, admin, users)

	rec := do(e, http.MethodPatch, "/users/3/status", `{"status":"banned"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You cannot change your own status", decode(t, rec)["message"])
	assert.Equal(t, model.UserActive, users.byID[admin.ID].Status)

	rec = do(e, http.MethodPatch, "/users/1/status", `{"status":"deleted"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status", decode(t, rec)["message"])

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPatch, "/users/9/status", `{"status":"banned"}`).Code)

	rec = do(e, http.MethodPatch, "/users/1/status", `{"status":"suspended"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.UserSuspended, users.byID[client.ID].Status)
}

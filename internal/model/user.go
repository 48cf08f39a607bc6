package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the access level stored in users.role.
type Role string

const (
	RoleClient Role = "client"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// IsStaff reports whether the role handles other users' orders and tickets.
func (r Role) IsStaff() bool { return r == RoleSeller || r == RoleAdmin }

// UserStatus is the account state stored in users.status.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserBanned    UserStatus = "banned"
	UserSuspended UserStatus = "suspended"
)

// ParseUserStatus validates a status coming from a request body.
func ParseUserStatus(s string) (UserStatus, bool) {
	switch st := UserStatus(s); st {
	case UserActive, UserBanned, UserSuspended:
		return st, true
	}
	return "", false
}

// User mirrors a row of the users table. PasswordHash and APIKeyHash never
// leave the process.
type User struct {
	ID           uint64          `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Role         Role            `json:"role"`
	Balance      decimal.Decimal `json:"balance"`
	Status       UserStatus      `json:"status"`
	APIKeyHash   *string         `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	LastLogin    *time.Time      `json:"last_login"`
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool { return u.Status == UserActive }

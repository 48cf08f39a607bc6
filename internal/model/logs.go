package model

import "time"

// Login outcomes recorded in login_logs.status.
const (
	LoginSuccess = "success"
	LoginFailed  = "failed"
)

type LoginLog struct {
	ID        uint64    `json:"id"`
	UserID    *uint64   `json:"user_id"`
	Email     string    `json:"email"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Username  *string   `json:"username"`
}

type APILog struct {
	ID           uint64    `json:"id"`
	UserID       *uint64   `json:"user_id"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	IPAddress    string    `json:"ip_address"`
	RequestData  *string   `json:"request_data"`
	ResponseData *string   `json:"response_data"`
	StatusCode   int       `json:"status_code"`
	CreatedAt    time.Time `json:"created_at"`
	Username     *string   `json:"username"`
}

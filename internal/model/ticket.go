package model

import "time"

// TicketStatus is the support ticket state.
type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketAnswered TicketStatus = "answered"
	TicketClosed   TicketStatus = "closed"
)

// ParseTicketStatus validates a status string.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch st := TicketStatus(s); st {
	case TicketOpen, TicketAnswered, TicketClosed:
		return st, true
	}
	return "", false
}

// TicketPriority orders tickets for staff.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
)

// StatusAfterMessage returns the ticket status once a new message lands.
// A closed ticket reopens on any message; otherwise a staff reply marks
// the ticket answered and a client message leaves it unchanged.
func StatusAfterMessage(current TicketStatus, fromStaff bool) TicketStatus {
	switch {
	case current == TicketClosed:
		return TicketOpen
	case fromStaff:
		return TicketAnswered
	default:
		return current
	}
}

type Ticket struct {
	ID        uint64         `json:"id"`
	UserID    uint64         `json:"user_id"`
	Subject   string         `json:"subject"`
	Status    TicketStatus   `json:"status"`
	Priority  TicketPriority `json:"priority"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	MessageCount int    `json:"message_count"`
}

type TicketMessage struct {
	ID        uint64    `json:"id"`
	TicketID  uint64    `json:"ticket_id"`
	UserID    uint64    `json:"user_id"`
	Message   string    `json:"message"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
}

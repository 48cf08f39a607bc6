package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state stored in orders.status.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderPartial    OrderStatus = "partial"
	OrderCanceled   OrderStatus = "canceled"
	OrderRefunded   OrderStatus = "refunded"
)

// orderTransitions lists the statuses reachable from each state. Canceled
// and refunded have no successors.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderInProgress, OrderCompleted, OrderPartial, OrderCanceled, OrderRefunded},
	OrderProcessing: {OrderInProgress, OrderCompleted, OrderPartial, OrderCanceled, OrderRefunded},
	OrderInProgress: {OrderCompleted, OrderPartial, OrderCanceled, OrderRefunded},
	OrderCompleted:  {OrderRefunded},
	OrderPartial:    {OrderRefunded},
	OrderCanceled:   nil,
	OrderRefunded:   nil,
}

// ParseOrderStatus validates a status string.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	_, ok := orderTransitions[st]
	return st, ok
}

// CanTransitionTo reports whether an order in s may move to next. Setting
// the current status again is always allowed and changes nothing.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		_, ok := orderTransitions[s]
		return ok
	}
	for _, st := range orderTransitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

// Refunds reports whether entering s returns the order price to the client.
func (s OrderStatus) Refunds() bool { return s == OrderCanceled || s == OrderRefunded }

// Order mirrors a row of the orders table. The joined fields are filled by
// list and detail queries only.
type Order struct {
	ID          uint64          `json:"id"`
	UserID      uint64          `json:"user_id"`
	SellerID    *uint64         `json:"seller_id"`
	ServiceID   uint64          `json:"service_id"`
	Link        string          `json:"link"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Status      OrderStatus     `json:"status"`
	StartCount  *int            `json:"start_count"`
	Remains     *int            `json:"remains"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at"`

	ServiceName    string `json:"service_name,omitempty"`
	CategoryName   string `json:"category_name,omitempty"`
	ClientUsername string `json:"client_username,omitempty"`
	ClientEmail    string `json:"client_email,omitempty"`
	SellerUsername string `json:"seller_username,omitempty"`
}

// OrderScope restricts order queries to what a viewer may see. A zero
// scope matches every order.
type OrderScope struct {
	ClientID uint64
	SellerID uint64
}

// ScopeFor returns the visibility scope of a user with the given role.
func ScopeFor(userID uint64, role Role) OrderScope {
	switch role {
	case RoleAdmin:
		return OrderScope{}
	case RoleSeller:
		return OrderScope{SellerID: userID}
	default:
		return OrderScope{ClientID: userID}
	}
}

package model

import "github.com/shopspring/decimal"

// OrderCounters is filled from one aggregate query over orders. Failed
// counts canceled orders.
type OrderCounters struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
	Failed     int
}

type ClientStats struct {
	TotalOrders     int             `json:"total_orders"`
	PendingOrders   int             `json:"pending_orders"`
	CompletedOrders int             `json:"completed_orders"`
	FailedOrders    int             `json:"failed_orders"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	Balance         decimal.Decimal `json:"balance"`
}

type SellerStats struct {
	TotalOrders      int             `json:"total_orders"`
	PendingOrders    int             `json:"pending_orders"`
	CompletedOrders  int             `json:"completed_orders"`
	InProgressOrders int             `json:"in_progress_orders"`
	Balance          decimal.Decimal `json:"balance"`
}

type AdminStats struct {
	TotalOrders     int             `json:"total_orders"`
	PendingOrders   int             `json:"pending_orders"`
	CompletedOrders int             `json:"completed_orders"`
	FailedOrders    int             `json:"failed_orders"`
	TotalUsers      int             `json:"total_users"`
	Clients         int             `json:"clients"`
	Sellers         int             `json:"sellers"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

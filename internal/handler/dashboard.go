package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

const recentOrdersDefault = 10

// DashboardHandler serves /api/dashboard.
type DashboardHandler struct {
	Counters StatsReader
	Users    UserStore
	Orders   OrderReader
	Log      *logrus.Logger
}

func NewDashboardHandler(stats StatsReader, users UserStore, orders OrderReader, log *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{Counters: stats, Users: users, Orders: orders, Log: log}
}

// Stats returns the counters shown on the caller's dashboard. Their shape
// depends on the role.
func (h *DashboardHandler) Stats(c echo.Context) error {
	userID, role := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	counters, completedValue, err := h.Counters.OrderCounters(ctx, model.ScopeFor(userID, role))
	if err != nil {
		return serverError(c, h.Log, err, "dashboard stats")
	}

	var stats any
	switch role {
	case model.RoleAdmin:
		total, clients, sellers, err := h.Counters.UserCounters(ctx)
		if err != nil {
			return serverError(c, h.Log, err, "dashboard stats")
		}
		stats = model.AdminStats{
			TotalOrders:     counters.Total,
			PendingOrders:   counters.Pending,
			CompletedOrders: counters.Completed,
			FailedOrders:    counters.Failed,
			TotalUsers:      total,
			Clients:         clients,
			Sellers:         sellers,
			TotalRevenue:    completedValue,
		}
	case model.RoleSeller:
		balance, err := h.Users.Balance(ctx, userID)
		if err != nil {
			return serverError(c, h.Log, err, "dashboard stats")
		}
		stats = model.SellerStats{
			TotalOrders:      counters.Total,
			PendingOrders:    counters.Pending,
			CompletedOrders:  counters.Completed,
			InProgressOrders: counters.InProgress,
			Balance:          balance,
		}
	default:
		balance, err := h.Users.Balance(ctx, userID)
		if err != nil {
			return serverError(c, h.Log, err, "dashboard stats")
		}
		stats = model.ClientStats{
			TotalOrders:     counters.Total,
			PendingOrders:   counters.Pending,
			CompletedOrders: counters.Completed,
			FailedOrders:    counters.Failed,
			TotalSpent:      completedValue,
			Balance:         balance,
		}
	}
	return ok(c, http.StatusOK, echo.Map{"stats": stats})
}

// RecentOrders returns the latest orders in the caller's scope.
func (h *DashboardHandler) RecentOrders(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = recentOrdersDefault
	}
	limit = min(limit, model.MaxLimit)

	userID, role := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	orders, err := h.Orders.Recent(ctx, model.ScopeFor(userID, role), limit)
	if err != nil {
		return serverError(c, h.Log, err, "recent orders")
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return ok(c, http.StatusOK, echo.Map{"orders": orders})
}

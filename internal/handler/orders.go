package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
	"github.com/iliyamo/smm-webpanel/internal/service"
)

// OrderHandler serves /api/orders.
type OrderHandler struct {
	Flow   OrderFlow
	Orders OrderReader
	Logs   LogStore
	Log    *logrus.Logger
}

func NewOrderHandler(flow OrderFlow, orders OrderReader, logs LogStore, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{Flow: flow, Orders: orders, Logs: logs, Log: log}
}

type createOrderReq struct {
	ServiceID  uint64 `json:"service_id" validate:"required,gte=1"`
	Link       string `json:"link" validate:"required,max=500,url"`
	Quantity   int    `json:"quantity" validate:"required,gte=1"`
	CouponCode string `json:"coupon_code" validate:"max=50"`
}

type orderStatusReq struct {
	Status     string `json:"status"`
	StartCount *int   `json:"start_count" validate:"omitempty,gte=0"`
	Remains    *int   `json:"remains" validate:"omitempty,gte=0"`
}

// placeError writes the response for a failed Place. handled is false
// for errors the caller must treat as internal.
func placeError(c echo.Context, err error) (handled bool, resp error) {
	var ibe *service.InsufficientBalanceError
	var qe *service.QuantityError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return true, fail(c, http.StatusNotFound, "Service not found")
	case errors.Is(err, service.ErrServiceUnavailable):
		return true, fail(c, http.StatusBadRequest, "Service is not available")
	case errors.As(err, &qe):
		return true, fail(c, http.StatusBadRequest, qe.Error())
	case errors.As(err, &ibe):
		return true, c.JSON(http.StatusBadRequest, echo.Map{
			"success":   false,
			"message":   "Insufficient balance",
			"required":  ibe.Required,
			"available": ibe.Available,
		})
	}
	return false, nil
}

// statusError maps a failed UpdateStatus to a response.
func statusError(c echo.Context, err error) (handled bool, resp error) {
	var te *service.TransitionError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return true, fail(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, repository.ErrForbidden):
		return true, fail(c, http.StatusForbidden, "You do not have permission to update this order")
	case errors.As(err, &te):
		return true, fail(c, http.StatusConflict, "Cannot change order status from "+string(te.From)+" to "+string(te.To))
	case errors.Is(err, service.ErrInsufficientBalance):
		return true, fail(c, http.StatusBadRequest, "Insufficient balance")
	}
	return false, nil
}

// Create places an order for the authenticated client.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderReq
	if err := bind(c, &req); err != nil {
		return err
	}
	userID, role := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	placed, err := h.Flow.Place(ctx, service.PlaceOrder{
		UserID:     userID,
		Role:       role,
		ServiceID:  req.ServiceID,
		Link:       strings.TrimSpace(req.Link),
		Quantity:   req.Quantity,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		if handled, resp := placeError(c, err); handled {
			return resp
		}
		return serverError(c, h.Log, err, "create order")
	}

	o := placed.Order
	logAction(ctx, h.Logs, h.Log, userID, "order_created", echo.Map{
		"order_id": o.ID, "service_id": o.ServiceID, "quantity": o.Quantity, "price": o.Price,
	})
	return ok(c, http.StatusCreated, echo.Map{
		"message": "Order created successfully",
		"order": echo.Map{
			"id":         o.ID,
			"service_id": o.ServiceID,
			"link":       o.Link,
			"quantity":   o.Quantity,
			"price":      o.Price,
			"discount":   placed.Quote.Discount,
			"status":     o.Status,
		},
		"balance": placed.Balance,
	})
}

// List returns the orders visible to the caller. Sellers and admins can
// pass unassigned=1 to browse pending orders nobody has claimed.
func (h *OrderHandler) List(c echo.Context) error {
	userID, role := caller(c)
	page := pageFrom(c)
	q := repository.OrderFilter{
		Scope:  model.ScopeFor(userID, role),
		Status: c.QueryParam("status"),
		Search: strings.TrimSpace(c.QueryParam("search")),
		Page:   page,
	}
	if role.IsStaff() {
		switch c.QueryParam("unassigned") {
		case "1", "true":
			q.Unassigned = true
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	orders, total, err := h.Orders.List(ctx, q)
	if err != nil {
		return serverError(c, h.Log, err, "list orders")
	}
	return ok(c, http.StatusOK, echo.Map{"orders": orders, "pagination": page.Paginate(total)})
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Order not found")
	}
	userID, role := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Orders.GetVisible(ctx, id, model.ScopeFor(userID, role))
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return serverError(c, h.Log, err, "get order")
	}
	return ok(c, http.StatusOK, echo.Map{"order": o})
}

// UpdateStatus is used by sellers and admins to move an order along.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Order not found")
	}
	var req orderStatusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	status, known := model.ParseOrderStatus(req.Status)
	if !known {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}

	userID, role := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Flow.UpdateStatus(ctx, service.StatusChange{
		OrderID:    id,
		ActorID:    userID,
		ActorRole:  role,
		Status:     status,
		StartCount: req.StartCount,
		Remains:    req.Remains,
	})
	if err != nil {
		if handled, resp := statusError(c, err); handled {
			return resp
		}
		return serverError(c, h.Log, err, "update order status")
	}

	logAction(ctx, h.Logs, h.Log, userID, "order_status_updated", echo.Map{"order_id": id, "status": status})
	return ok(c, http.StatusOK, echo.Map{
		"message":  "Order status updated successfully",
		"order":    res.Order,
		"refunded": res.Refund != nil,
	})
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/middleware"
	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
	"github.com/iliyamo/smm-webpanel/internal/service"
)

// Defaults for services created by a sync that omits them.
const (
	syncDefaultCategory = 1
	syncDefaultMin      = 100
	syncDefaultMax      = 10000
)

// ExternalHandler serves /api/external for API key holders.
type ExternalHandler struct {
	Flow     OrderFlow
	Orders   OrderReader
	Services ServiceStore
	Logs     LogStore
	Log      *logrus.Logger
}

func NewExternalHandler(flow OrderFlow, orders OrderReader, services ServiceStore, logs LogStore, log *logrus.Logger) *ExternalHandler {
	return &ExternalHandler{Flow: flow, Orders: orders, Services: services, Logs: logs, Log: log}
}

type externalOrderReq struct {
	ServiceID  uint64 `json:"service_id"`
	Link       string `json:"link" validate:"omitempty,max=500,url"`
	Quantity   int    `json:"quantity"`
	CouponCode string `json:"coupon_code" validate:"max=50"`
}

type externalStatusReq struct {
	Status     string `json:"status"`
	StartCount *int   `json:"start_count" validate:"omitempty,gte=0"`
	Remains    *int   `json:"remains" validate:"omitempty,gte=0"`
}

// flexID accepts an identifier sent either as a JSON string or a number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type syncEntry struct {
	APIServiceID  flexID           `json:"api_service_id"`
	CategoryID    uint64           `json:"category_id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	ResellerPrice *decimal.Decimal `json:"reseller_price"`
	MinQuantity   int              `json:"min_quantity"`
	MaxQuantity   int              `json:"max_quantity"`
	Speed         string           `json:"speed"`
}

type syncError struct {
	Service string `json:"service"`
	Error   string `json:"error"`
}

// toService validates e and fills the sync defaults. It returns nil when a
// required field is missing.
func (e syncEntry) toService() *model.Service {
	name := strings.TrimSpace(e.Name)
	if e.APIServiceID == "" || name == "" || e.Price == nil || e.Price.IsZero() {
		return nil
	}
	apiID := string(e.APIServiceID)
	s := &model.Service{
		CategoryID:    e.CategoryID,
		Name:          name,
		Description:   e.Description,
		Price:         model.RoundMoney(*e.Price),
		ResellerPrice: model.RoundMoney(*e.Price),
		MinQuantity:   e.MinQuantity,
		MaxQuantity:   e.MaxQuantity,
		Speed:         strings.TrimSpace(e.Speed),
		Status:        model.CatalogActive,
		APIServiceID:  &apiID,
	}
	if e.ResellerPrice != nil && !e.ResellerPrice.IsZero() {
		s.ResellerPrice = model.RoundMoney(*e.ResellerPrice)
	}
	if s.CategoryID == 0 {
		s.CategoryID = syncDefaultCategory
	}
	if s.MinQuantity <= 0 {
		s.MinQuantity = syncDefaultMin
	}
	if s.MaxQuantity <= 0 {
		s.MaxQuantity = syncDefaultMax
	}
	if s.Speed == "" {
		s.Speed = model.DefaultSpeed
	}
	return s
}

// Record stores one api_logs row per external call. It is meant for
// echo's BodyDump middleware.
func (h *ExternalHandler) Record(c echo.Context, reqBody, resBody []byte) {
	var userID *uint64
	if id, ok := middleware.UserID(c); ok {
		userID = &id
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), dbTimeout)
	defer cancel()
	err := h.Logs.LogAPI(ctx, repository.APIEntry{
		UserID:       userID,
		Endpoint:     c.Request().URL.Path,
		Method:       c.Request().Method,
		IP:           c.RealIP(),
		RequestData:  string(reqBody),
		ResponseData: string(resBody),
		StatusCode:   c.Response().Status,
	})
	if err != nil {
		h.Log.WithError(err).Warn("api call not logged")
	}
}

// CreateOrder places an order on behalf of the key owner.
func (h *ExternalHandler) CreateOrder(c echo.Context) error {
	var req externalOrderReq
	if err := bind(c, &req); err != nil {
		return err
	}
	link := strings.TrimSpace(req.Link)
	if req.ServiceID == 0 || link == "" || req.Quantity <= 0 {
		return fail(c, http.StatusBadRequest, "service_id, link, and quantity are required")
	}

	userID, role := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	placed, err := h.Flow.Place(ctx, service.PlaceOrder{
		UserID:     userID,
		Role:       role,
		ServiceID:  req.ServiceID,
		Link:       link,
		Quantity:   req.Quantity,
		CouponCode: req.CouponCode,
		ViaAPI:     true,
	})
	if err != nil {
		if errors.Is(err, service.ErrServiceUnavailable) {
			return fail(c, http.StatusNotFound, "Service not found")
		}
		if handled, resp := placeError(c, err); handled {
			return resp
		}
		return serverError(c, h.Log, err, "external order")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":  true,
		"order_id": placed.Order.ID,
		"status":   placed.Order.Status,
		"price":    placed.Order.Price,
	})
}

// UpdateOrderStatus lets seller and admin keys report fulfilment progress.
// Refunds are not available through the API.
func (h *ExternalHandler) UpdateOrderStatus(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Order not found")
	}
	var req externalStatusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	status, known := model.ParseOrderStatus(req.Status)
	if !known || status == model.OrderRefunded {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}

	userID, role := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	_, err := h.Flow.UpdateStatus(ctx, service.StatusChange{
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
		return serverError(c, h.Log, err, "external order status")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Order status updated successfully"})
}

// SyncServices upserts services keyed by api_service_id. Entries missing
// a required field are reported and skipped.
func (h *ExternalHandler) SyncServices(c echo.Context) error {
	var body struct {
		Services json.RawMessage `json:"services"`
	}
	if err := c.Echo().JSONSerializer.Deserialize(c, &body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	raw := bytes.TrimSpace(body.Services)
	var entries []syncEntry
	if len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &entries) != nil {
		return fail(c, http.StatusBadRequest, "Services must be an array")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	synced, updated := 0, 0
	errs := []syncError{}
	for _, e := range entries {
		label := strings.TrimSpace(e.Name)
		if label == "" {
			label = "Unknown"
		}
		s := e.toService()
		if s == nil {
			errs = append(errs, syncError{Service: label, Error: "Missing required fields"})
			continue
		}
		created, err := h.Services.Upsert(ctx, s)
		if err != nil {
			h.Log.WithError(err).WithField("api_service_id", *s.APIServiceID).Warn("service sync failed")
			errs = append(errs, syncError{Service: label, Error: "Failed to sync service"})
			continue
		}
		if created {
			synced++
		} else {
			updated++
		}
	}

	out := echo.Map{"message": "Services synced successfully", "synced": synced, "updated": updated}
	if len(errs) > 0 {
		out["errors"] = errs
	}
	return ok(c, http.StatusOK, out)
}

// GetOrder returns a status snapshot of an order owned by the key user.
// Admin keys can read any order.
func (h *ExternalHandler) GetOrder(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Order not found")
	}
	userID, role := caller(c)
	scope := model.OrderScope{ClientID: userID}
	if role == model.RoleAdmin {
		scope = model.OrderScope{}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	o, err := h.Orders.GetVisible(ctx, id, scope)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return serverError(c, h.Log, err, "external get order")
	}

	deref := func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	}
	return ok(c, http.StatusOK, echo.Map{"order": echo.Map{
		"id":           o.ID,
		"status":       o.Status,
		"start_count":  deref(o.StartCount),
		"remains":      deref(o.Remains),
		"quantity":     o.Quantity,
		"price":        o.Price,
		"created_at":   o.CreatedAt,
		"updated_at":   o.UpdatedAt,
		"completed_at": o.CompletedAt,
	}})
}

package handler

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
)

// AdminHandler serves settings, audit logs, the order export and coupons.
type AdminHandler struct {
	Settings SettingStore
	Logs     LogStore
	Orders   OrderReader
	Coupons  CouponStore
	Log      *logrus.Logger
}

func NewAdminHandler(settings SettingStore, logs LogStore, orders OrderReader, coupons CouponStore, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{Settings: settings, Logs: logs, Orders: orders, Coupons: coupons, Log: log}
}

type couponReq struct {
	Code          string           `json:"code" validate:"required,max=50"`
	DiscountType  string           `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue decimal.Decimal  `json:"discount_value" validate:"gt=0"`
	MaxDiscount   *decimal.Decimal `json:"max_discount" validate:"omitempty,gt=0"`
	UsageLimit    *int             `json:"usage_limit" validate:"omitempty,gte=1"`
	ValidFrom     *time.Time       `json:"valid_from"`
	ValidUntil    *time.Time       `json:"valid_until"`
}

type couponStatusReq struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// GetSettings returns every setting decoded to its stored type.
func (h *AdminHandler) GetSettings(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Settings.All(ctx)
	if err != nil {
		return serverError(c, h.Log, err, "get settings")
	}
	out := make(map[string]any, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Typed()
	}
	return ok(c, http.StatusOK, echo.Map{"settings": out})
}

// UpdateSettings upserts every key of the JSON object body; the stored
// type follows the JSON type of each value.
func (h *AdminHandler) UpdateSettings(c echo.Context) error {
	var body map[string]any
	if err := c.Echo().JSONSerializer.Deserialize(c, &body); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	keys := make([]string, 0, len(body))
	for k := range body {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	settings := make([]model.Setting, 0, len(keys))
	for _, k := range keys {
		settings = append(settings, model.EncodeSetting(k, body[k]))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Settings.Upsert(ctx, settings); err != nil {
		return serverError(c, h.Log, err, "update settings")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Settings updated successfully"})
}

func (h *AdminHandler) LoginLogs(c echo.Context) error {
	page := pageFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	logs, total, err := h.Logs.LoginLogs(ctx, repository.LogFilter{
		UserID: queryUint(c, "user_id"),
		Status: c.QueryParam("status"),
		Page:   page,
	})
	if err != nil {
		return serverError(c, h.Log, err, "login logs")
	}
	return ok(c, http.StatusOK, echo.Map{"logs": logs, "pagination": page.Paginate(total)})
}

func (h *AdminHandler) APILogs(c echo.Context) error {
	page := pageFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	logs, total, err := h.Logs.APILogs(ctx, repository.LogFilter{UserID: queryUint(c, "user_id"), Page: page})
	if err != nil {
		return serverError(c, h.Log, err, "api logs")
	}
	return ok(c, http.StatusOK, echo.Map{"logs": logs, "pagination": page.Paginate(total)})
}

// OrderLogs lists every order with client and seller details.
func (h *AdminHandler) OrderLogs(c echo.Context) error {
	page := pageFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, total, err := h.Orders.List(ctx, repository.OrderFilter{Status: c.QueryParam("status"), Page: page})
	if err != nil {
		return serverError(c, h.Log, err, "order logs")
	}
	return ok(c, http.StatusOK, echo.Map{"orders": orders, "pagination": page.Paginate(total)})
}

// parseDateBound accepts RFC 3339 timestamps or plain dates. A plain end
// date covers the whole day.
func parseDateBound(s string, end bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

var exportHeader = []string{"ID", "Date", "Status", "Service", "Client", "Email", "Link", "Quantity", "Price"}

// writeOrdersCSV renders orders in export format with prices at four
// decimals.
func writeOrdersCSV(w io.Writer, orders []model.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, o := range orders {
		rec := []string{
			strconv.FormatUint(o.ID, 10),
			o.CreatedAt.UTC().Format(time.DateTime),
			string(o.Status),
			o.ServiceName,
			o.ClientUsername,
			o.ClientEmail,
			o.Link,
			strconv.Itoa(o.Quantity),
			o.Price.StringFixed(4),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportOrders downloads matching orders as orders.csv.
func (h *AdminHandler) ExportOrders(c echo.Context) error {
	from, err := parseDateBound(c.QueryParam("start_date"), false)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid start_date")
	}
	to, err := parseDateBound(c.QueryParam("end_date"), true)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid end_date")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	orders, err := h.Orders.Export(ctx, repository.ExportFilter{Status: c.QueryParam("status"), From: from, To: to})
	if err != nil {
		return serverError(c, h.Log, err, "export orders")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, "attachment; filename=orders.csv")
	res.WriteHeader(http.StatusOK)
	if err := writeOrdersCSV(res, orders); err != nil {
		h.Log.WithError(err).Error("order export interrupted")
	}
	return nil
}

func (h *AdminHandler) ListCoupons(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	coupons, err := h.Coupons.List(ctx)
	if err != nil {
		return serverError(c, h.Log, err, "list coupons")
	}
	return ok(c, http.StatusOK, echo.Map{"coupons": coupons})
}

func (h *AdminHandler) CreateCoupon(c echo.Context) error {
	var req couponReq
	if err := bind(c, &req); err != nil {
		return err
	}
	typ := model.DiscountType(req.DiscountType)
	if typ == model.DiscountPercentage && req.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return invalid("discount_value", "discount_value must be at most 100 for percentage coupons")
	}
	if req.ValidFrom != nil && req.ValidUntil != nil && req.ValidUntil.Before(*req.ValidFrom) {
		return invalid("valid_until", "valid_until must be after valid_from")
	}

	cp := &model.Coupon{
		Code:          strings.TrimSpace(req.Code),
		DiscountType:  typ,
		DiscountValue: model.RoundMoney(req.DiscountValue),
		MaxDiscount:   req.MaxDiscount,
		UsageLimit:    req.UsageLimit,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		Status:        model.CatalogActive,
		CreatedAt:     time.Now().UTC(),
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Coupons.Create(ctx, cp); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, http.StatusBadRequest, "Coupon code already exists")
		}
		return serverError(c, h.Log, err, "create coupon")
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Coupon created successfully", "coupon": cp})
}

func (h *AdminHandler) UpdateCouponStatus(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Coupon not found")
	}
	var req couponStatusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Coupons.SetStatus(ctx, id, model.CatalogStatus(req.Status)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Coupon not found")
		}
		return serverError(c, h.Log, err, "update coupon status")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Coupon status updated successfully"})
}

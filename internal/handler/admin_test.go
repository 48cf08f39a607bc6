package handler

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
)

type memSettings struct{ rows []model.Setting }

func (m *memSettings) All(context.Context) ([]model.Setting, error) { return m.rows, nil }

func (m *memSettings) Upsert(_ context.Context, s []model.Setting) error {
	m.rows = append(m.rows, s...)
	return nil
}

func (m *memSettings) Number(_ context.Context, key string, def decimal.Decimal) (decimal.Decimal, error) {
	for _, s := range m.rows {
		if s.Key == key {
			return decimal.NewFromString(s.Value)
		}
	}
	return def, nil
}

type memCoupons struct{ codes map[string]bool }

func (m *memCoupons) List(context.Context) ([]model.Coupon, error) { return nil, nil }

func (m *memCoupons) Create(_ context.Context, c *model.Coupon) error {
	if m.codes[c.Code] {
		return repository.ErrDuplicate
	}
	m.codes[c.Code] = true
	c.ID = uint64(len(m.codes))
	return nil
}

func (m *memCoupons) SetStatus(_ context.Context, id uint64, _ model.CatalogStatus) error {
	if id > uint64(len(m.codes)) {
		return repository.ErrNotFound
	}
	return nil
}

func TestSettingsRoundTrip(t *testing.T) {
	settings := &memSettings{}
	h := NewAdminHandler(settings, &memLogs{}, &stubOrders{}, &memCoupons{}, quietLogger())
	e := newTestEcho(t)
	e.GET("/settings", h.GetSettings, as(admin))
	e.PUT("/settings", h.UpdateSettings, as(admin))

	rec := do(e, http.MethodPut, "/settings", `{"site_name":"Panel","min_deposit":10.5,"maintenance":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []model.Setting{
		{Key: "maintenance", Value: "1", Type: model.SettingBoolean},
		{Key: "min_deposit", Value: "10.5", Type: model.SettingNumber},
		{Key: "site_name", Value: "Panel", Type: model.SettingString},
	}, settings.rows)

	body := decode(t, do(e, http.MethodGet, "/settings", ""))
	assert.Equal(t, map[string]any{
		"maintenance": true,
		"min_deposit": 10.5,
		"site_name":   "Panel",
	}, body["settings"])

	rec = do(e, http.MethodPut, "/settings", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	settings.rows = nil
	rec = do(e, http.MethodPut, "/settings", `{"payment_methods":["card","crypto"],"smtp":{"host":"x"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []model.Setting{
		{Key: "payment_methods", Value: `["card","crypto"]`, Type: model.SettingString},
		{Key: "smtp", Value: `{"host":"x"}`, Type: model.SettingString},
	}, settings.rows)
}

func TestParseDateBound(t *testing.T) {
	zero, err := parseDateBound("", false)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	from, err := parseDateBound("2024-03-01", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), from)

	to, err := parseDateBound("2024-03-01", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC), to)

	ts, err := parseDateBound("2024-03-01T10:00:00+02:00", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), ts)

	_, err = parseDateBound("yesterday", false)
	assert.Error(t, err)
}

func TestWriteOrdersCSV(t *testing.T) {
	var buf bytes.Buffer
	err := writeOrdersCSV(&buf, []model.Order{{
		ID:             9,
		CreatedAt:      time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		Status:         model.OrderCompleted,
		ServiceName:    "Likes, fast",
		ClientUsername: "alice",
		ClientEmail:    "alice@example.com",
		Link:           "https://x.com/p",
		Quantity:       1000,
		Price:          decimal.RequireFromString("2.5"),
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Date,Status,Service,Client,Email,Link,Quantity,Price", lines[0])
	assert.Equal(t, `9,2024-05-06 07:08:09,completed,"Likes, fast",alice,alice@example.com,https://x.com/p,1000,2.5000`, lines[1])
}

func TestExportOrders(t *testing.T) {
	h := NewAdminHandler(&memSettings{}, &memLogs{}, &stubOrders{}, &memCoupons{}, quietLogger())
	e := newTestEcho(t)
	e.GET("/export", h.ExportOrders, as(admin))

	rec := do(e, http.MethodGet, "/export?start_date=2024-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=orders.csv", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))

	rec = do(e, http.MethodGet, "/export?end_date=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCoupon(t *testing.T) {
	coupons := &memCoupons{codes: map[string]bool{}}
	h := NewAdminHandler(&memSettings{}, &memLogs{}, &stubOrders{}, coupons, quietLogger())
	e := newTestEcho(t)
	e.POST("/coupons", h.CreateCoupon, as(admin))
	e.PATCH("/coupons/:id/status", h.UpdateCouponStatus, as(admin))

	rec := do(e, http.MethodPost, "/coupons", `{"code":"SAVE10","discount_type":"percentage","discount_value":10}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"duplicate", `{"code":"SAVE10","discount_type":"fixed","discount_value":1}`, "Coupon code already exists"},
		{"percent over 100", `{"code":"BIG","discount_type":"percentage","discount_value":150}`, "Validation failed"},
		{"bad type", `{"code":"X","discount_type":"bogus","discount_value":1}`, "Validation failed"},
		{"zero value", `{"code":"Z","discount_type":"fixed","discount_value":0}`, "Validation failed"},
		{"window", `{"code":"W","discount_type":"fixed","discount_value":1,
			"valid_from":"2024-02-01T00:00:00Z","valid_until":"2024-01-01T00:00:00Z"}`, "Validation failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/coupons", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.msg, decode(t, rec)["message"])
		})
	}

	assert.Equal(t, http.StatusOK, do(e, http.MethodPatch, "/coupons/1/status", `{"status":"inactive"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPatch, "/coupons/7/status", `{"status":"inactive"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPatch, "/coupons/1/status", `{"status":"gone"}`).Code)
}

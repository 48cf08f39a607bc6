package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smm-webpanel/internal/middleware"
	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
	"github.com/iliyamo/smm-webpanel/internal/service"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(quietLogger(), t.TempDir())
	return e
}

// as injects u as the authenticated user, standing in for JWTAuth.
func as(u *model.User) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if u != nil {
				middleware.SetIdentity(c, u)
			}
			return next(c)
		}
	}
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var (
	client = &model.User{ID: 1, Username: "alice", Email: "alice@example.com", Role: model.RoleClient, Status: model.UserActive}
	seller = &model.User{ID: 2, Username: "bob", Email: "bob@example.com", Role: model.RoleSeller, Status: model.UserActive}
	admin  = &model.User{ID: 3, Username: "root", Email: "root@example.com", Role: model.RoleAdmin, Status: model.UserActive}
)

// memUsers is an in-memory UserStore.
type memUsers struct {
	mu      sync.Mutex
	byID    map[uint64]*model.User
	nextID  uint64
	filters []repository.UserFilter
}

func newMemUsers(users ...*model.User) *memUsers {
	m := &memUsers{byID: map[uint64]*model.User{}, nextID: 100}
	for _, u := range users {
		cp := *u
		m.byID[u.ID] = &cp
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) Taken(_ context.Context, username, email string, excludeID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.ID != excludeID && (u.Username == username || u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) TouchLastLogin(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.byID[id].LastLogin = &now
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id uint64, username, email *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if username != nil {
		u.Username = *username
	}
	if email != nil {
		u.Email = *email
	}
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].PasswordHash = hash
	return nil
}

func (m *memUsers) SetAPIKeyHash(_ context.Context, id uint64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].APIKeyHash = &hash
	return nil
}

func (m *memUsers) UpdateStatus(_ context.Context, id uint64, status model.UserStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	return nil
}

func (m *memUsers) List(_ context.Context, q repository.UserFilter) ([]model.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, q)
	out := make([]model.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *memUsers) AttachReferral(context.Context, string, uint64) (bool, error) { return false, nil }

func (m *memUsers) Balance(_ context.Context, id uint64) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	return u.Balance, nil
}

// memLogs records login and API log writes.
type memLogs struct {
	mu     sync.Mutex
	logins []string
	api    []repository.APIEntry
}

func (m *memLogs) LogLogin(_ context.Context, _ *uint64, email, _, _, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, email+":"+status)
	return nil
}

func (m *memLogs) LogAPI(_ context.Context, e repository.APIEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.api = append(m.api, e)
	return nil
}

func (m *memLogs) LoginLogs(context.Context, repository.LogFilter) ([]model.LoginLog, int, error) {
	return nil, 0, nil
}

func (m *memLogs) APILogs(context.Context, repository.LogFilter) ([]model.APILog, int, error) {
	return nil, 0, nil
}

// stubFlow returns canned results from Place and UpdateStatus.
type stubFlow struct {
	placeErr  error
	statusErr error
	placed    []service.PlaceOrder
	changes   []service.StatusChange
}

func (s *stubFlow) Place(_ context.Context, in service.PlaceOrder) (*service.PlacedOrder, error) {
	s.placed = append(s.placed, in)
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	price := decimal.RequireFromString("1.2500")
	return &service.PlacedOrder{
		Order: &model.Order{
			ID: 42, UserID: in.UserID, ServiceID: in.ServiceID, Link: in.Link,
			Quantity: in.Quantity, Price: price, Status: model.OrderPending,
		},
		Quote:   service.Quote{Gross: price, Net: price, Discount: decimal.Zero},
		Balance: decimal.RequireFromString("8.75"),
	}, nil
}

func (s *stubFlow) UpdateStatus(_ context.Context, ch service.StatusChange) (*service.StatusResult, error) {
	s.changes = append(s.changes, ch)
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return &service.StatusResult{
		Order:    &model.Order{ID: ch.OrderID, Status: ch.Status},
		Previous: model.OrderPending,
	}, nil
}

// stubOrders serves a fixed set of orders and honours scopes.
type stubOrders struct {
	orders []model.Order
}

func (s *stubOrders) visible(o model.Order, scope model.OrderScope) bool {
	if scope.ClientID != 0 && o.UserID != scope.ClientID {
		return false
	}
	if scope.SellerID != 0 && (o.SellerID == nil || *o.SellerID != scope.SellerID) {
		return false
	}
	return true
}

func (s *stubOrders) List(_ context.Context, q repository.OrderFilter) ([]model.Order, int, error) {
	var out []model.Order
	for _, o := range s.orders {
		if s.visible(o, q.Scope) {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (s *stubOrders) Recent(_ context.Context, scope model.OrderScope, limit int) ([]model.Order, error) {
	var out []model.Order
	for _, o := range s.orders {
		if len(out) == limit {
			break
		}
		if s.visible(o, scope) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOrders) GetVisible(_ context.Context, id uint64, scope model.OrderScope) (*model.Order, error) {
	for _, o := range s.orders {
		if o.ID == id && s.visible(o, scope) {
			cp := o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubOrders) Export(context.Context, repository.ExportFilter) ([]model.Order, error) {
	return s.orders, nil
}

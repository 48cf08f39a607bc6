package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
)

// memCategories treats category 2 as having services attached.
type memCategories struct{ m map[uint64]*model.Category }

func (s *memCategories) ListActive(context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range s.m {
		out = append(out, *c)
	}
	return out, nil
}

func (s *memCategories) GetActive(_ context.Context, id uint64) (*model.Category, error) {
	c, ok := s.m[id]
	if !ok || c.Status != model.CatalogActive {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (s *memCategories) Create(_ context.Context, c *model.Category) error {
	c.ID = uint64(len(s.m) + 1)
	s.m[c.ID] = c
	return nil
}

func (s *memCategories) Update(_ context.Context, c *model.Category) error {
	if _, ok := s.m[c.ID]; !ok {
		return repository.ErrNotFound
	}
	s.m[c.ID] = c
	return nil
}

func (s *memCategories) Delete(_ context.Context, id uint64) error {
	if id == 2 {
		return repository.ErrConflict
	}
	if _, ok := s.m[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func catalogEcho(t *testing.T, u *model.User, services *memServices) *echo.Echo {
	t.Helper()
	cats := &memCategories{m: map[uint64]*model.Category{
		1: {ID: 1, Name: "Instagram", Status: model.CatalogActive},
		2: {ID: 2, Name: "YouTube", Status: model.CatalogActive},
		3: {ID: 3, Name: "Retired", Status: model.CatalogInactive},
	}}
	e := newTestEcho(t)
	h := NewCatalogHandler(services, cats, quietLogger())
	e.GET("/services", h.ListServices, as(u))
	e.GET("/services/:id", h.GetService, as(u))
	e.POST("/services", h.CreateService, as(u))
	e.DELETE("/categories/:id", h.DeleteCategory, as(u))
	return e
}

func TestCatalogPriceByRole(t *testing.T) {
	services := newMemServices(&model.Service{
		ID: 1, CategoryID: 1, Name: "Followers", Status: model.CatalogActive,
		Price: decimal.RequireFromString("0.01"), ResellerPrice: decimal.RequireFromString("0.008"),
		MinQuantity: 100, MaxQuantity: 1000,
	})

	cases := []struct {
		name  string
		user  *model.User
		price float64
	}{
		{"guest", nil, 0.01},
		{"client", client, 0.01},
		{"seller", seller, 0.008},
		{"admin", admin, 0.01},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := catalogEcho(t, tc.user, services)
			body := decode(t, do(e, http.MethodGet, "/services/1", ""))
			svc := body["service"].(map[string]any)
			assert.Equal(t, tc.price, svc["price"])
			assert.NotContains(t, svc, "reseller_price")

			list := decode(t, do(e, http.MethodGet, "/services", ""))["services"].([]any)
			require.Len(t, list, 1)
			assert.Equal(t, tc.price, list[0].(map[string]any)["price"])
		})
	}

	e := catalogEcho(t, nil, services)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/services/9", "").Code)
}

func TestCreateService(t *testing.T) {
	services := newMemServices()
	e := catalogEcho(t, seller, services)

	rec := do(e, http.MethodPost, "/services", `{"category_id":1,"name":"Likes","price":1.5,"min_quantity":10,"max_quantity":500}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s := services.byID[1]
	assert.Equal(t, "1.5", s.ResellerPrice.String())
	assert.Equal(t, model.DefaultSpeed, s.Speed)
	assert.Equal(t, model.CatalogActive, s.Status)

	rec = do(e, http.MethodPost, "/services", `{"category_id":3,"name":"Views","price":1,"min_quantity":10,"max_quantity":500}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category not found", decode(t, rec)["message"])

	rec = do(e, http.MethodPost, "/services", `{"category_id":1,"name":"Views","price":1,"min_quantity":500,"max_quantity":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", decode(t, rec)["message"])
}

func TestDeleteCategory(t *testing.T) {
	e := catalogEcho(t, admin, newMemServices())

	rec := do(e, http.MethodDelete, "/categories/2", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete category with existing services", decode(t, rec)["message"])

	assert.Equal(t, http.StatusOK, do(e, http.MethodDelete, "/categories/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/categories/1", "").Code)
}

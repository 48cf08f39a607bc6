package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/middleware"
	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
)

// CatalogHandler serves services and categories. Reads are public; writes
// are limited to sellers and admins by the router.
type CatalogHandler struct {
	Services   ServiceStore
	Categories CategoryStore
	Log        *logrus.Logger
}

func NewCatalogHandler(services ServiceStore, categories CategoryStore, log *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Services: services, Categories: categories, Log: log}
}

type serviceReq struct {
	CategoryID    uint64           `json:"category_id" validate:"required,gte=1"`
	Name          string           `json:"name" validate:"required,max=200"`
	Description   *string          `json:"description"`
	Price         decimal.Decimal  `json:"price" validate:"gte=0"`
	ResellerPrice *decimal.Decimal `json:"reseller_price" validate:"omitempty,gte=0"`
	MinQuantity   int              `json:"min_quantity" validate:"required,gte=1"`
	MaxQuantity   int              `json:"max_quantity" validate:"required,gte=1,gtefield=MinQuantity"`
	Speed         string           `json:"speed" validate:"max=50"`
	Status        string           `json:"status" validate:"omitempty,oneof=active inactive"`
	APIServiceID  *string          `json:"api_service_id"`
}

// toService applies the defaults: reseller price falls back to price and
// speed to "fast".
func (r serviceReq) toService() *model.Service {
	s := &model.Service{
		CategoryID:   r.CategoryID,
		Name:         strings.TrimSpace(r.Name),
		Description:  r.Description,
		Price:        model.RoundMoney(r.Price),
		MinQuantity:  r.MinQuantity,
		MaxQuantity:  r.MaxQuantity,
		Speed:        strings.TrimSpace(r.Speed),
		Status:       model.CatalogStatus(r.Status),
		APIServiceID: r.APIServiceID,
	}
	s.ResellerPrice = s.Price
	if r.ResellerPrice != nil && !r.ResellerPrice.IsZero() {
		s.ResellerPrice = model.RoundMoney(*r.ResellerPrice)
	}
	if s.Speed == "" {
		s.Speed = model.DefaultSpeed
	}
	if s.Status == "" {
		s.Status = model.CatalogActive
	}
	if s.APIServiceID != nil && strings.TrimSpace(*s.APIServiceID) == "" {
		s.APIServiceID = nil
	}
	return s
}

type categoryReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

// viewerRole is the role prices are shown for; guests see client prices.
func viewerRole(c echo.Context) model.Role {
	if r := middleware.Role(c); r != "" {
		return r
	}
	return model.RoleClient
}

// ListServices returns active services of active categories ordered by
// category and name.
func (h *CatalogHandler) ListServices(c echo.Context) error {
	page := pageFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	services, total, err := h.Services.ListActive(ctx, repository.ServiceFilter{
		CategoryID: queryUint(c, "category_id"),
		Search:     strings.TrimSpace(c.QueryParam("search")),
		Page:       page,
	})
	if err != nil {
		return serverError(c, h.Log, err, "list services")
	}
	role := viewerRole(c)
	items := make([]model.CatalogItem, 0, len(services))
	for i := range services {
		items = append(items, services[i].CatalogView(role))
	}
	return ok(c, http.StatusOK, echo.Map{"services": items, "pagination": page.Paginate(total)})
}

func (h *CatalogHandler) GetService(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Service not found")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Services.GetActive(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Service not found")
	}
	if err != nil {
		return serverError(c, h.Log, err, "get service")
	}
	return ok(c, http.StatusOK, echo.Map{"service": s.CatalogView(viewerRole(c))})
}

func (h *CatalogHandler) CreateService(c echo.Context) error {
	var req serviceReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Categories.GetActive(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Category not found")
		}
		return serverError(c, h.Log, err, "create service")
	}
	s := req.toService()
	if err := h.Services.Create(ctx, s); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fail(c, http.StatusBadRequest, "API service id already in use")
		}
		return serverError(c, h.Log, err, "create service")
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Service created successfully", "service": s})
}

func (h *CatalogHandler) UpdateService(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Service not found")
	}
	var req serviceReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Services.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Service not found")
		}
		return serverError(c, h.Log, err, "update service")
	}
	if _, err := h.Categories.GetActive(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Category not found")
		}
		return serverError(c, h.Log, err, "update service")
	}

	s := req.toService()
	s.ID = id
	if err := h.Services.Update(ctx, s); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fail(c, http.StatusNotFound, "Service not found")
		case errors.Is(err, repository.ErrDuplicate):
			return fail(c, http.StatusBadRequest, "API service id already in use")
		}
		return serverError(c, h.Log, err, "update service")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Service updated successfully"})
}

// DeleteService hard-deletes unused services and deactivates the rest.
func (h *CatalogHandler) DeleteService(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Service not found")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	soft, err := h.Services.Remove(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Service not found")
	}
	if err != nil {
		return serverError(c, h.Log, err, "delete service")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Service deleted successfully", "deactivated": soft})
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cats, err := h.Categories.ListActive(ctx)
	if err != nil {
		return serverError(c, h.Log, err, "list categories")
	}
	return ok(c, http.StatusOK, echo.Map{"categories": cats})
}

func (h *CatalogHandler) GetCategory(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Category not found")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cat, err := h.Categories.GetActive(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Category not found")
	}
	if err != nil {
		return serverError(c, h.Log, err, "get category")
	}
	return ok(c, http.StatusOK, echo.Map{"category": cat})
}

func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if err := bind(c, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fail(c, http.StatusBadRequest, "Category name is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cat := &model.Category{Name: name, Description: req.Description, Status: model.CatalogActive}
	if err := h.Categories.Create(ctx, cat); err != nil {
		return serverError(c, h.Log, err, "create category")
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Category created successfully", "category": cat})
}

func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Category not found")
	}
	var req categoryReq
	if err := bind(c, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fail(c, http.StatusBadRequest, "Category name is required")
	}
	status := model.CatalogStatus(req.Status)
	if status == "" {
		status = model.CatalogActive
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.Categories.Update(ctx, &model.Category{ID: id, Name: name, Description: req.Description, Status: status})
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Category not found")
	}
	if err != nil {
		return serverError(c, h.Log, err, "update category")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Category updated successfully"})
}

// DeleteCategory refuses categories that still own services.
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Category not found")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.Categories.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusBadRequest, "Cannot delete category with existing services")
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "Category not found")
	case err != nil:
		return serverError(c, h.Log, err, "delete category")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Category deleted successfully"})
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogStatus is shared by categories and services.
type CatalogStatus string

const (
	CatalogActive   CatalogStatus = "active"
	CatalogInactive CatalogStatus = "inactive"
)

// DefaultSpeed is stored when a service is created without a speed label.
const DefaultSpeed = "fast"

// Category groups services by platform (Instagram, YouTube, ...).
type Category struct {
	ID          uint64        `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Status      CatalogStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Service is one orderable catalog entry.
type Service struct {
	ID                  uint64          `json:"id"`
	CategoryID          uint64          `json:"category_id"`
	CategoryName        string          `json:"category_name,omitempty"`
	CategoryDescription *string         `json:"-"`
	Name                string          `json:"name"`
	Description         *string         `json:"description"`
	Price               decimal.Decimal `json:"price"`
	ResellerPrice       decimal.Decimal `json:"reseller_price"`
	MinQuantity         int             `json:"min_quantity"`
	MaxQuantity         int             `json:"max_quantity"`
	Speed               string          `json:"speed"`
	Status              CatalogStatus   `json:"status"`
	APIServiceID        *string         `json:"api_service_id"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// PriceFor returns the unit price shown to the given role. Sellers buy at
// the reseller price, everyone else (including guests) at the list price.
func (s *Service) PriceFor(role Role) decimal.Decimal {
	if role == RoleSeller {
		return s.ResellerPrice
	}
	return s.Price
}

// AcceptsQuantity reports whether q lies within the service bounds.
func (s *Service) AcceptsQuantity(q int) bool {
	return q >= s.MinQuantity && q <= s.MaxQuantity
}

// CatalogItem is the public projection of a service.
type CatalogItem struct {
	ID           uint64          `json:"id"`
	CategoryID   uint64          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Price        decimal.Decimal `json:"price"`
	MinQuantity  int             `json:"min_quantity"`
	MaxQuantity  int             `json:"max_quantity"`
	Speed        string          `json:"speed"`
	APIServiceID *string         `json:"api_service_id"`
}

// CatalogView projects a service for a viewer with the given role.
func (s *Service) CatalogView(role Role) CatalogItem {
	return CatalogItem{
		ID:           s.ID,
		CategoryID:   s.CategoryID,
		CategoryName: s.CategoryName,
		Name:         s.Name,
		Description:  s.Description,
		Price:        s.PriceFor(role),
		MinQuantity:  s.MinQuantity,
		MaxQuantity:  s.MaxQuantity,
		Speed:        s.Speed,
		APIServiceID: s.APIServiceID,
	}
}

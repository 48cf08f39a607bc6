package handler

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
	"github.com/iliyamo/smm-webpanel/internal/service"
)

// The interfaces below are the seams between handlers and storage. The
// repository and service types satisfy them; tests substitute stubs.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	Taken(ctx context.Context, username, email string, excludeID uint64) (bool, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	TouchLastLogin(ctx context.Context, id uint64) error
	UpdateProfile(ctx context.Context, id uint64, username, email *string) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	SetAPIKeyHash(ctx context.Context, id uint64, hash string) error
	UpdateStatus(ctx context.Context, id uint64, status model.UserStatus) error
	List(ctx context.Context, q repository.UserFilter) ([]model.User, int, error)
	AttachReferral(ctx context.Context, code string, userID uint64) (bool, error)
	Balance(ctx context.Context, id uint64) (decimal.Decimal, error)
}

type ResetTokenStore interface {
	ReplaceReset(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateReset(ctx context.Context, tokenHash string) (uint64, error)
	Consume(ctx context.Context, tokenHash string, userID uint64, passwordHash string) error
}

type CategoryStore interface {
	ListActive(ctx context.Context) ([]model.Category, error)
	GetActive(ctx context.Context, id uint64) (*model.Category, error)
	Create(ctx context.Context, c *model.Category) error
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id uint64) error
}

type ServiceStore interface {
	ListActive(ctx context.Context, q repository.ServiceFilter) ([]model.Service, int, error)
	GetActive(ctx context.Context, id uint64) (*model.Service, error)
	GetByID(ctx context.Context, id uint64) (*model.Service, error)
	Create(ctx context.Context, s *model.Service) error
	Update(ctx context.Context, s *model.Service) error
	Remove(ctx context.Context, id uint64) (bool, error)
	Upsert(ctx context.Context, s *model.Service) (bool, error)
}

type OrderReader interface {
	List(ctx context.Context, q repository.OrderFilter) ([]model.Order, int, error)
	Recent(ctx context.Context, scope model.OrderScope, limit int) ([]model.Order, error)
	GetVisible(ctx context.Context, id uint64, scope model.OrderScope) (*model.Order, error)
	Export(ctx context.Context, q repository.ExportFilter) ([]model.Order, error)
}

// OrderFlow places orders and changes their status.
type OrderFlow interface {
	Place(ctx context.Context, in service.PlaceOrder) (*service.PlacedOrder, error)
	UpdateStatus(ctx context.Context, ch service.StatusChange) (*service.StatusResult, error)
}

type LedgerPoster interface {
	Post(ctx context.Context, e service.Entry) (*model.Transaction, error)
}

type TransactionReader interface {
	ListByUser(ctx context.Context, q repository.TransactionFilter) ([]model.Transaction, int, error)
}

type TicketStore interface {
	List(ctx context.Context, q repository.TicketFilter) ([]model.Ticket, int, error)
	Get(ctx context.Context, id, ownerID uint64) (*model.Ticket, error)
	Messages(ctx context.Context, ticketID uint64) ([]model.TicketMessage, error)
	Open(ctx context.Context, t *model.Ticket, message string) error
	Reply(ctx context.Context, ticketID, userID uint64, message string, fromStaff bool, next model.TicketStatus) (*model.TicketMessage, error)
	SetStatus(ctx context.Context, id uint64, status model.TicketStatus) error
}

type CouponStore interface {
	List(ctx context.Context) ([]model.Coupon, error)
	Create(ctx context.Context, c *model.Coupon) error
	SetStatus(ctx context.Context, id uint64, status model.CatalogStatus) error
}

type SettingStore interface {
	All(ctx context.Context) ([]model.Setting, error)
	Upsert(ctx context.Context, settings []model.Setting) error
	Number(ctx context.Context, key string, def decimal.Decimal) (decimal.Decimal, error)
}

type LogStore interface {
	LogLogin(ctx context.Context, userID *uint64, email, ip, userAgent, status string) error
	LogAPI(ctx context.Context, e repository.APIEntry) error
	LoginLogs(ctx context.Context, q repository.LogFilter) ([]model.LoginLog, int, error)
	APILogs(ctx context.Context, q repository.LogFilter) ([]model.APILog, int, error)
}

type StatsReader interface {
	OrderCounters(ctx context.Context, scope model.OrderScope) (model.OrderCounters, decimal.Decimal, error)
	UserCounters(ctx context.Context) (total, clients, sellers int, err error)
}

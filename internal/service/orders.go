package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/queue"
	"github.com/iliyamo/smm-webpanel/internal/repository"
)

type serviceReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Service, error)
}

type orderStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error
	LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Order, error)
	SaveProgressTx(ctx context.Context, tx *sql.Tx, o *model.Order) error
}

type couponStore interface {
	LockByCodeTx(ctx context.Context, tx *sql.Tx, code string) (*model.Coupon, error)
	RedeemTx(ctx context.Context, tx *sql.Tx, couponID, userID, orderID uint64, discount decimal.Decimal) error
}

// OrderService places orders and moves them through their lifecycle.
type OrderService struct {
	tx       TxRunner
	services serviceReader
	orders   orderStore
	coupons  couponStore
	ledger   *Ledger
	events   Publisher
	log      *logrus.Logger
	now      func() time.Time
}

func NewOrderService(tx TxRunner, services serviceReader, orders orderStore, coupons couponStore,
	ledger *Ledger, events Publisher, log *logrus.Logger) *OrderService {
	if events == nil {
		events = NopPublisher{}
	}
	return &OrderService{
		tx:       tx,
		services: services,
		orders:   orders,
		coupons:  coupons,
		ledger:   ledger,
		events:   events,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder is the input of Place.
type PlaceOrder struct {
	UserID     uint64
	Role       model.Role
	ServiceID  uint64
	Link       string
	Quantity   int
	CouponCode string
	ViaAPI     bool
}

// PlacedOrder is the result of a successful Place.
type PlacedOrder struct {
	Order    *model.Order
	Quote    Quote
	Balance  decimal.Decimal
	CouponID uint64
}

// Place prices and stores a new pending order. The balance debit, the
// order row, the ledger row and the coupon redemption commit together.
func (s *OrderService) Place(ctx context.Context, in PlaceOrder) (*PlacedOrder, error) {
	svc, err := s.services.GetByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.Status != model.CatalogActive {
		return nil, ErrServiceUnavailable
	}
	if !svc.AcceptsQuantity(in.Quantity) {
		return nil, &QuantityError{Min: svc.MinQuantity, Max: svc.MaxQuantity}
	}
	unit := svc.PriceFor(in.Role)
	code := strings.TrimSpace(in.CouponCode)

	out := &PlacedOrder{}
	err = s.tx.InTx(ctx, func(tx *sql.Tx) error {
		var coupon *model.Coupon
		if code != "" {
			c, err := s.coupons.LockByCodeTx(ctx, tx, code)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				// unknown codes are ignored
			case err != nil:
				return err
			case c.UsableAt(s.now()):
				coupon = c
			}
		}
		out.Quote = QuoteOrder(unit, in.Quantity, coupon)

		o := &model.Order{
			UserID:    in.UserID,
			ServiceID: svc.ID,
			Link:      in.Link,
			Quantity:  in.Quantity,
			Price:     out.Quote.Net,
			Status:    model.OrderPending,
		}
		if err := s.orders.CreateTx(ctx, tx, o); err != nil {
			return err
		}

		desc := fmt.Sprintf("Order for service #%d", svc.ID)
		if in.ViaAPI {
			desc = "API " + desc
		}
		orderID := o.ID
		t, err := s.ledger.ApplyTx(ctx, tx, Entry{
			UserID:      in.UserID,
			Type:        model.TxOrder,
			Amount:      out.Quote.Net,
			OrderID:     &orderID,
			Description: desc,
		})
		if err != nil {
			return err
		}

		if coupon != nil && out.Quote.Discount.IsPositive() {
			if err := s.coupons.RedeemTx(ctx, tx, coupon.ID, in.UserID, o.ID, out.Quote.Discount); err != nil {
				return err
			}
			out.CouponID = coupon.ID
		}
		o.ServiceName = svc.Name
		o.CategoryName = svc.CategoryName
		out.Order = o
		out.Balance = t.BalanceAfter
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": out.Order.ID, "user_id": in.UserID, "service_id": svc.ID, "price": out.Quote.Net.String(),
	}).Info("order placed")

	ev := queue.NewOrderEvent(queue.EventOrderCreated)
	fillEvent(&ev, out.Order)
	s.publish(ctx, ev)
	return out, nil
}

// StatusChange is the input of UpdateStatus. StartCount and Remains are
// only written when non-nil.
type StatusChange struct {
	OrderID    uint64
	ActorID    uint64
	ActorRole  model.Role
	Status     model.OrderStatus
	StartCount *int
	Remains    *int
}

// StatusResult reports what UpdateStatus did.
type StatusResult struct {
	Order    *model.Order
	Previous model.OrderStatus
	Refund   *model.Transaction
}

// UpdateStatus moves an order to ch.Status. Sellers may only touch orders
// that are unassigned or their own; a seller moving an unassigned order to
// processing claims it. Entering canceled or refunded credits the order
// price back to the client.
func (s *OrderService) UpdateStatus(ctx context.Context, ch StatusChange) (*StatusResult, error) {
	res := &StatusResult{}
	err := s.tx.InTx(ctx, func(tx *sql.Tx) error {
		o, err := s.orders.LockTx(ctx, tx, ch.OrderID)
		if err != nil {
			return err
		}
		if ch.ActorRole == model.RoleSeller && o.SellerID != nil && *o.SellerID != ch.ActorID {
			return repository.ErrForbidden
		}
		if !o.Status.CanTransitionTo(ch.Status) {
			return &TransitionError{From: o.Status, To: ch.Status}
		}
		res.Previous = o.Status

		if ch.ActorRole == model.RoleSeller && o.SellerID == nil && ch.Status == model.OrderProcessing {
			seller := ch.ActorID
			o.SellerID = &seller
		}
		if ch.StartCount != nil {
			o.StartCount = ch.StartCount
		}
		if ch.Remains != nil {
			o.Remains = ch.Remains
		}
		if ch.Status == model.OrderCompleted && o.Status != model.OrderCompleted {
			now := s.now()
			o.CompletedAt = &now
		}

		if ch.Status.Refunds() && !o.Status.Refunds() && o.Price.IsPositive() {
			orderID := o.ID
			actor := ch.ActorID
			t, err := s.ledger.ApplyTx(ctx, tx, Entry{
				UserID:      o.UserID,
				Type:        model.TxRefund,
				Amount:      o.Price,
				OrderID:     &orderID,
				Description: fmt.Sprintf("Refund for order #%d", o.ID),
				CreatedBy:   &actor,
			})
			if err != nil {
				return err
			}
			res.Refund = t
		}

		o.Status = ch.Status
		if err := s.orders.SaveProgressTx(ctx, tx, o); err != nil {
			return err
		}
		res.Order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Previous != res.Order.Status {
		s.log.WithFields(logrus.Fields{
			"order_id": res.Order.ID, "from": res.Previous, "to": res.Order.Status, "actor_id": ch.ActorID,
		}).Info("order status changed")

		ev := queue.NewOrderEvent(queue.EventOrderStatusChanged)
		fillEvent(&ev, res.Order)
		ev.PreviousStatus = string(res.Previous)
		ev.Refunded = res.Refund != nil
		s.publish(ctx, ev)
	}
	return res, nil
}

func fillEvent(ev *queue.OrderEvent, o *model.Order) {
	ev.OrderID = o.ID
	ev.UserID = o.UserID
	ev.ServiceID = o.ServiceID
	ev.SellerID = o.SellerID
	ev.Quantity = o.Quantity
	ev.Price = o.Price
	ev.Status = string(o.Status)
}

// publish is best effort: failures are logged and never reach the caller.
func (s *OrderService) publish(ctx context.Context, ev queue.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"event": ev.Type, "order_id": ev.OrderID}).
			Warn("order event not published")
	}
}

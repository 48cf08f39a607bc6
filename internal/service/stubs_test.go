package service

import (
	"context"
	"database/sql"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/queue"
	"github.com/iliyamo/smm-webpanel/internal/repository"
)

// inlineTx runs fn without a real transaction. Stubs ignore the *sql.Tx.
type inlineTx struct{}

func (inlineTx) InTx(_ context.Context, fn func(tx *sql.Tx) error) error { return fn(nil) }

type stubBalances struct{ m map[uint64]decimal.Decimal }

func (s *stubBalances) LockBalanceTx(_ context.Context, _ *sql.Tx, id uint64) (decimal.Decimal, error) {
	b, ok := s.m[id]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	return b, nil
}

func (s *stubBalances) SetBalanceTx(_ context.Context, _ *sql.Tx, id uint64, b decimal.Decimal) error {
	s.m[id] = b
	return nil
}

type stubLedgerRows struct{ rows []model.Transaction }

func (s *stubLedgerRows) InsertTx(_ context.Context, _ *sql.Tx, t *model.Transaction) error {
	t.ID = uint64(len(s.rows) + 1)
	s.rows = append(s.rows, *t)
	return nil
}

type stubServices struct{ m map[uint64]*model.Service }

func (s *stubServices) GetByID(_ context.Context, id uint64) (*model.Service, error) {
	svc, ok := s.m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return svc, nil
}

type stubOrders struct {
	m     map[uint64]*model.Order
	saved []model.Order
}

func (s *stubOrders) CreateTx(_ context.Context, _ *sql.Tx, o *model.Order) error {
	o.ID = uint64(len(s.m) + 100)
	cp := *o
	s.m[o.ID] = &cp
	return nil
}

func (s *stubOrders) LockTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Order, error) {
	o, ok := s.m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrders) SaveProgressTx(_ context.Context, _ *sql.Tx, o *model.Order) error {
	cp := *o
	s.m[o.ID] = &cp
	s.saved = append(s.saved, cp)
	return nil
}

type stubCoupons struct {
	m        map[string]*model.Coupon
	redeemed []decimal.Decimal
}

func (s *stubCoupons) LockByCodeTx(_ context.Context, _ *sql.Tx, code string) (*model.Coupon, error) {
	c, ok := s.m[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (s *stubCoupons) RedeemTx(_ context.Context, _ *sql.Tx, couponID, _, _ uint64, discount decimal.Decimal) error {
	for _, c := range s.m {
		if c.ID == couponID {
			c.UsedCount++
		}
	}
	s.redeemed = append(s.redeemed, discount)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

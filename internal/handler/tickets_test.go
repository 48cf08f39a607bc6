package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
)

type memTickets struct {
	m       map[uint64]*model.Ticket
	replies []model.TicketMessage
}

func (s *memTickets) List(_ context.Context, q repository.TicketFilter) ([]model.Ticket, int, error) {
	var out []model.Ticket
	for _, t := range s.m {
		if q.OwnerID == 0 || t.UserID == q.OwnerID {
			out = append(out, *t)
		}
	}
	return out, len(out), nil
}

func (s *memTickets) Get(_ context.Context, id, ownerID uint64) (*model.Ticket, error) {
	t, ok := s.m[id]
	if !ok || (ownerID != 0 && t.UserID != ownerID) {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memTickets) Messages(context.Context, uint64) ([]model.TicketMessage, error) {
	return s.replies, nil
}

func (s *memTickets) Open(_ context.Context, t *model.Ticket, _ string) error {
	t.ID = uint64(len(s.m) + 1)
	t.Status = model.TicketOpen
	s.m[t.ID] = t
	return nil
}

func (s *memTickets) Reply(_ context.Context, ticketID, userID uint64, message string, fromStaff bool, next model.TicketStatus) (*model.TicketMessage, error) {
	s.m[ticketID].Status = next
	msg := model.TicketMessage{TicketID: ticketID, UserID: userID, Message: message, IsAdmin: fromStaff}
	s.replies = append(s.replies, msg)
	return &msg, nil
}

func (s *memTickets) SetStatus(_ context.Context, id uint64, status model.TicketStatus) error {
	t, ok := s.m[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	return nil
}

func ticketEcho(t *testing.T, u *model.User, store *memTickets) *echo.Echo {
	t.Helper()
	e := newTestEcho(t)
	h := NewTicketHandler(store, quietLogger())
	e.GET("/tickets", h.List, as(u))
	e.GET("/tickets/:id", h.Get, as(u))
	e.POST("/tickets", h.Create, as(u))
	e.POST("/tickets/:id/messages", h.Reply, as(u))
	e.PATCH("/tickets/:id/status", h.UpdateStatus, as(u))
	return e
}

func TestTicketLifecycle(t *testing.T) {
	store := &memTickets{m: map[uint64]*model.Ticket{
		1: {ID: 1, UserID: 77, Subject: "Someone else", Status: model.TicketOpen},
	}}
	ce := ticketEcho(t, client, store)

	rec := do(ce, http.MethodPost, "/tickets", `{"subject":"Refill","message":"Followers dropped"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, decode(t, rec)["ticket_id"])
	assert.Equal(t, model.PriorityMedium, store.m[2].Priority)

	rec = do(ce, http.MethodPost, "/tickets", `{"subject":" ","message":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Subject and message are required", decode(t, rec)["message"])

	assert.Len(t, decode(t, do(ce, http.MethodGet, "/tickets", ""))["tickets"], 1)
	assert.Equal(t, http.StatusNotFound, do(ce, http.MethodGet, "/tickets/1", "").Code)
	assert.Equal(t, http.StatusForbidden, do(ce, http.MethodPost, "/tickets/1/messages", `{"message":"hi"}`).Code)

	se := ticketEcho(t, seller, store)
	rec = do(se, http.MethodPost, "/tickets/2/messages", `{"message":"Refilled"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "answered", decode(t, rec)["ticket_status"])
	assert.True(t, store.replies[0].IsAdmin)

	assert.Equal(t, http.StatusOK, do(se, http.MethodPatch, "/tickets/2/status", `{"status":"closed"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(se, http.MethodPatch, "/tickets/2/status", `{"status":"done"}`).Code)

	rec = do(ce, http.MethodPost, "/tickets/2/messages", `{"message":"Dropped again"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "open", decode(t, rec)["ticket_status"])
	assert.False(t, store.replies[1].IsAdmin)
}

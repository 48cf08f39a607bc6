package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/model"
	"github.com/iliyamo/smm-webpanel/internal/repository"
)

// TicketHandler serves support tickets. Clients only ever see their own;
// sellers and admins see all of them.
type TicketHandler struct {
	Tickets TicketStore
	Log     *logrus.Logger
}

func NewTicketHandler(tickets TicketStore, log *logrus.Logger) *TicketHandler {
	return &TicketHandler{Tickets: tickets, Log: log}
}

type openTicketReq struct {
	Subject  string `json:"subject" validate:"max=255"`
	Message  string `json:"message"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

type replyReq struct {
	Message string `json:"message"`
}

type ticketStatusReq struct {
	Status string `json:"status"`
}

// ownerFilter is the owner id used to restrict queries; zero for staff.
func ownerFilter(c echo.Context) uint64 {
	id, role := caller(c)
	if role.IsStaff() {
		return 0
	}
	return id
}

func (h *TicketHandler) List(c echo.Context) error {
	page := pageFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	tickets, total, err := h.Tickets.List(ctx, repository.TicketFilter{
		OwnerID: ownerFilter(c),
		Status:  c.QueryParam("status"),
		Page:    page,
	})
	if err != nil {
		return serverError(c, h.Log, err, "list tickets")
	}
	return ok(c, http.StatusOK, echo.Map{"tickets": tickets, "pagination": page.Paginate(total)})
}

// Get returns a ticket with its conversation.
func (h *TicketHandler) Get(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Ticket not found")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tickets.Get(ctx, id, ownerFilter(c))
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Ticket not found")
	}
	if err != nil {
		return serverError(c, h.Log, err, "get ticket")
	}
	msgs, err := h.Tickets.Messages(ctx, id)
	if err != nil {
		return serverError(c, h.Log, err, "get ticket")
	}
	return ok(c, http.StatusOK, echo.Map{"ticket": t, "messages": msgs})
}

func (h *TicketHandler) Create(c echo.Context) error {
	var req openTicketReq
	if err := bind(c, &req); err != nil {
		return err
	}
	subject := strings.TrimSpace(req.Subject)
	message := strings.TrimSpace(req.Message)
	if subject == "" || message == "" {
		return fail(c, http.StatusBadRequest, "Subject and message are required")
	}
	priority := model.TicketPriority(req.Priority)
	if priority == "" {
		priority = model.PriorityMedium
	}

	userID, _ := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	t := &model.Ticket{UserID: userID, Subject: subject, Priority: priority}
	if err := h.Tickets.Open(ctx, t, message); err != nil {
		return serverError(c, h.Log, err, "create ticket")
	}
	return ok(c, http.StatusCreated, echo.Map{"message": "Ticket created successfully", "ticket_id": t.ID})
}

// Reply adds a message. Staff replies are flagged and mark the ticket
// answered; any message reopens a closed ticket.
func (h *TicketHandler) Reply(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Ticket not found")
	}
	var req replyReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return fail(c, http.StatusBadRequest, "Message is required")
	}

	userID, role := caller(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tickets.Get(ctx, id, 0)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusNotFound, "Ticket not found")
	}
	if err != nil {
		return serverError(c, h.Log, err, "reply ticket")
	}
	staff := role.IsStaff()
	if !staff && t.UserID != userID {
		return fail(c, http.StatusForbidden, "You do not have permission to access this ticket")
	}

	next := model.StatusAfterMessage(t.Status, staff)
	msg, err := h.Tickets.Reply(ctx, id, userID, message, staff, next)
	if err != nil {
		return serverError(c, h.Log, err, "reply ticket")
	}
	return ok(c, http.StatusCreated, echo.Map{
		"message":       "Message added successfully",
		"ticket_status": next,
		"data":          msg,
	})
}

func (h *TicketHandler) UpdateStatus(c echo.Context) error {
	id, valid := paramID(c)
	if !valid {
		return fail(c, http.StatusNotFound, "Ticket not found")
	}
	var req ticketStatusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	status, known := model.ParseTicketStatus(req.Status)
	if !known {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tickets.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Ticket not found")
		}
		return serverError(c, h.Log, err, "update ticket status")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "Ticket status updated successfully"})
}

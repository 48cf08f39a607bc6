package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

type TicketRepo struct{ db *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketSelect = `SELECT t.id, t.user_id, t.subject, t.status, t.priority, t.created_at, t.updated_at,
	u.username, u.email, (SELECT COUNT(*) FROM ticket_messages m WHERE m.ticket_id = t.id)
	FROM tickets t
	JOIN users u ON u.id = t.user_id`

func scanTicket(s rowScanner) (*model.Ticket, error) {
	var t model.Ticket
	err := s.Scan(&t.ID, &t.UserID, &t.Subject, &t.Status, &t.Priority, &t.CreatedAt, &t.UpdatedAt,
		&t.Username, &t.Email, &t.MessageCount)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TicketFilter narrows ticket lists. A zero OwnerID lists every ticket.
type TicketFilter struct {
	OwnerID uint64
	Status  string
	Page    model.Page
}

// List returns one page of tickets, most recently updated first.
func (r *TicketRepo) List(ctx context.Context, q TicketFilter) ([]model.Ticket, int, error) {
	var f filter
	if q.OwnerID > 0 {
		f.add("t.user_id = ?", q.OwnerID)
	}
	if q.Status != "" {
		f.add("t.status = ?", q.Status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets t"+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, wrap(err, "count tickets")
	}
	rows, err := r.db.QueryContext(ctx,
		ticketSelect+f.where()+" ORDER BY t.updated_at DESC, t.id DESC LIMIT ? OFFSET ?",
		f.page(q.Page.Limit, q.Page.Offset())...)
	if err != nil {
		return nil, 0, wrap(err, "list tickets")
	}
	defer rows.Close()

	out := make([]model.Ticket, 0, q.Page.Limit)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, wrap(err, "scan ticket")
		}
		out = append(out, *t)
	}
	return out, total, wrap(rows.Err(), "list tickets")
}

// Get returns a ticket; a non-zero ownerID hides other users' tickets.
func (r *TicketRepo) Get(ctx context.Context, id, ownerID uint64) (*model.Ticket, error) {
	var f filter
	f.add("t.id = ?", id)
	if ownerID > 0 {
		f.add("t.user_id = ?", ownerID)
	}
	t, err := scanTicket(r.db.QueryRowContext(ctx, ticketSelect+f.where(), f.args...))
	return t, wrap(err, "get ticket")
}

// Messages returns the conversation of a ticket, oldest first.
func (r *TicketRepo) Messages(ctx context.Context, ticketID uint64) ([]model.TicketMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.ticket_id, m.user_id, m.message, m.is_admin, m.created_at, u.username, u.email
		 FROM ticket_messages m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.ticket_id = ?
		 ORDER BY m.created_at, m.id`, ticketID)
	if err != nil {
		return nil, wrap(err, "list ticket messages")
	}
	defer rows.Close()
	out := []model.TicketMessage{}
	for rows.Next() {
		var m model.TicketMessage
		if err := rows.Scan(&m.ID, &m.TicketID, &m.UserID, &m.Message, &m.IsAdmin, &m.CreatedAt,
			&m.Username, &m.Email); err != nil {
			return nil, wrap(err, "scan ticket message")
		}
		out = append(out, m)
	}
	return out, wrap(rows.Err(), "list ticket messages")
}

// Open creates a ticket together with its first message.
func (r *TicketRepo) Open(ctx context.Context, t *model.Ticket, message string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(err, "begin ticket")
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx,
		"INSERT INTO tickets (user_id, subject, status, priority) VALUES (?, ?, ?, ?)",
		t.UserID, t.Subject, model.TicketOpen, t.Priority)
	if err != nil {
		return wrap(err, "insert ticket")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "insert ticket id")
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO ticket_messages (ticket_id, user_id, message, is_admin) VALUES (?, ?, ?, 0)",
		id, t.UserID, message); err != nil {
		return wrap(err, "insert ticket message")
	}
	if err := tx.Commit(); err != nil {
		return wrap(err, "commit ticket")
	}
	t.ID = uint64(id)
	t.Status = model.TicketOpen
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	t.MessageCount = 1
	return nil
}

// Reply appends a message and moves the ticket to next in one transaction.
func (r *TicketRepo) Reply(ctx context.Context, ticketID, userID uint64, message string, fromStaff bool, next model.TicketStatus) (*model.TicketMessage, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap(err, "begin reply")
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx,
		"INSERT INTO ticket_messages (ticket_id, user_id, message, is_admin) VALUES (?, ?, ?, ?)",
		ticketID, userID, message, fromStaff)
	if err != nil {
		return nil, wrap(err, "insert ticket message")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "insert ticket message id")
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE tickets SET status = ?, updated_at = NOW() WHERE id = ?", next, ticketID); err != nil {
		return nil, wrap(err, "update ticket status")
	}
	if err := tx.Commit(); err != nil {
		return nil, wrap(err, "commit reply")
	}
	return &model.TicketMessage{
		ID:        uint64(id),
		TicketID:  ticketID,
		UserID:    userID,
		Message:   message,
		IsAdmin:   fromStaff,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (r *TicketRepo) SetStatus(ctx context.Context, id uint64, status model.TicketStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE tickets SET status = ?, updated_at = NOW() WHERE id = ?", status, id)
	return affected(res, err, "update ticket status")
}

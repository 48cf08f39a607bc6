package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

// LogRepo writes and reads the login and API audit trails.
type LogRepo struct{ db *sql.DB }

func NewLogRepo(db *sql.DB) *LogRepo { return &LogRepo{db: db} }

// LogLogin records one authentication attempt. userID is nil for unknown
// emails.
func (r *LogRepo) LogLogin(ctx context.Context, userID *uint64, email, ip, userAgent, status string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO login_logs (user_id, email, ip_address, user_agent, status) VALUES (?, ?, ?, ?, ?)",
		userID, email, ip, truncate(userAgent, 500), status)
	return wrap(err, "insert login log")
}

// APIEntry is one row for api_logs.
type APIEntry struct {
	UserID       *uint64
	Endpoint     string
	Method       string
	IP           string
	RequestData  string
	ResponseData string
	StatusCode   int
}

func (r *LogRepo) LogAPI(ctx context.Context, e APIEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_logs (user_id, endpoint, method, ip_address, request_data, response_data, status_code)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, truncate(e.Endpoint, 255), e.Method, e.IP, nullable(e.RequestData), nullable(e.ResponseData), e.StatusCode)
	return wrap(err, "insert api log")
}

// LogFilter narrows audit log lists.
type LogFilter struct {
	UserID uint64
	Status string
	Page   model.Page
}

// LoginLogs returns one page of login attempts, newest first.
func (r *LogRepo) LoginLogs(ctx context.Context, q LogFilter) ([]model.LoginLog, int, error) {
	var f filter
	if q.Status != "" {
		f.add("l.status = ?", q.Status)
	}
	if q.UserID > 0 {
		f.add("l.user_id = ?", q.UserID)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM login_logs l"+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, wrap(err, "count login logs")
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.user_id, l.email, COALESCE(l.ip_address, ''), COALESCE(l.user_agent, ''), l.status, l.created_at, u.username
		 FROM login_logs l
		 LEFT JOIN users u ON u.id = l.user_id`+f.where()+`
		 ORDER BY l.created_at DESC, l.id DESC LIMIT ? OFFSET ?`,
		f.page(q.Page.Limit, q.Page.Offset())...)
	if err != nil {
		return nil, 0, wrap(err, "list login logs")
	}
	defer rows.Close()

	out := make([]model.LoginLog, 0, q.Page.Limit)
	for rows.Next() {
		var (
			l        model.LoginLog
			userID   sql.NullInt64
			username sql.NullString
		)
		if err := rows.Scan(&l.ID, &userID, &l.Email, &l.IPAddress, &l.UserAgent, &l.Status, &l.CreatedAt, &username); err != nil {
			return nil, 0, wrap(err, "scan login log")
		}
		if userID.Valid {
			id := uint64(userID.Int64)
			l.UserID = &id
		}
		if username.Valid {
			l.Username = &username.String
		}
		out = append(out, l)
	}
	return out, total, wrap(rows.Err(), "list login logs")
}

// APILogs returns one page of API calls, newest first.
func (r *LogRepo) APILogs(ctx context.Context, q LogFilter) ([]model.APILog, int, error) {
	var f filter
	if q.UserID > 0 {
		f.add("a.user_id = ?", q.UserID)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM api_logs a"+f.where(), f.args...).Scan(&total); err != nil {
		return nil, 0, wrap(err, "count api logs")
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.user_id, a.endpoint, a.method, COALESCE(a.ip_address, ''), a.request_data, a.response_data,
			a.status_code, a.created_at, u.username
		 FROM api_logs a
		 LEFT JOIN users u ON u.id = a.user_id`+f.where()+`
		 ORDER BY a.created_at DESC, a.id DESC LIMIT ? OFFSET ?`,
		f.page(q.Page.Limit, q.Page.Offset())...)
	if err != nil {
		return nil, 0, wrap(err, "list api logs")
	}
	defer rows.Close()

	out := make([]model.APILog, 0, q.Page.Limit)
	for rows.Next() {
		var (
			a         model.APILog
			userID    sql.NullInt64
			req, resp sql.NullString
			username  sql.NullString
		)
		if err := rows.Scan(&a.ID, &userID, &a.Endpoint, &a.Method, &a.IPAddress, &req, &resp,
			&a.StatusCode, &a.CreatedAt, &username); err != nil {
			return nil, 0, wrap(err, "scan api log")
		}
		if userID.Valid {
			id := uint64(userID.Int64)
			a.UserID = &id
		}
		if req.Valid {
			a.RequestData = &req.String
		}
		if resp.Valid {
			a.ResponseData = &resp.String
		}
		if username.Valid {
			a.Username = &username.String
		}
		out = append(out, a)
	}
	return out, total, wrap(rows.Err(), "list api logs")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

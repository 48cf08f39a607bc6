package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

// ServiceRepo manages the orderable catalog.
type ServiceRepo struct{ db *sql.DB }

func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceSelect = `SELECT s.id, s.category_id, c.name, c.description, s.name, s.description,
	s.price, s.reseller_price, s.min_quantity, s.max_quantity, s.speed, s.status,
	s.api_service_id, s.created_at, s.updated_at
	FROM services s
	JOIN categories c ON c.id = s.category_id`

func scanService(sc rowScanner) (*model.Service, error) {
	var (
		s         model.Service
		catDesc  sql.NullString
		desc     sql.NullString
		apiSvcID sql.NullString
	)
	if err := sc.Scan(&s.ID, &s.CategoryID, &s.CategoryName, &catDesc, &s.Name, &desc,
		&s.Price, &s.ResellerPrice, &s.MinQuantity, &s.MaxQuantity, &s.Speed, &s.Status,
		&apiSvcID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if catDesc.Valid {
		s.CategoryDescription = &catDesc.String
	}
	if desc.Valid {
		s.Description = &desc.String
	}
	if apiSvcID.Valid {
		s.APIServiceID = &apiSvcID.String
	}
	return &s, nil
}

// ServiceFilter narrows the public catalog.
type ServiceFilter struct {
	CategoryID uint64
	Search     string
	Page       model.Page
}

// ListActive returns active services of active categories ordered by
// category name then service name.
func (r *ServiceRepo) ListActive(ctx context.Context, q ServiceFilter) ([]model.Service, int, error) {
	var f filter
	f.add("s.status = 'active'")
	f.add("c.status = 'active'")
	if q.CategoryID > 0 {
		f.add("s.category_id = ?", q.CategoryID)
	}
	f.like(q.Search, "s.name", "s.description")

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM services s JOIN categories c ON c.id = s.category_id"+f.where(), f.args...).Scan(&total)
	if err != nil {
		return nil, 0, wrap(err, "count services")
	}

	rows, err := r.db.QueryContext(ctx,
		serviceSelect+f.where()+" ORDER BY c.name, s.name LIMIT ? OFFSET ?", f.page(q.Page.Limit, q.Page.Offset())...)
	if err != nil {
		return nil, 0, wrap(err, "list services")
	}
	defer rows.Close()

	out := make([]model.Service, 0, q.Page.Limit)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, wrap(err, "scan service")
		}
		out = append(out, *s)
	}
	return out, total, wrap(rows.Err(), "list services")
}

// GetActive returns a service visible in the public catalog.
func (r *ServiceRepo) GetActive(ctx context.Context, id uint64) (*model.Service, error) {
	s, err := scanService(r.db.QueryRowContext(ctx,
		serviceSelect+" WHERE s.id = ? AND s.status = 'active' AND c.status = 'active'", id))
	return s, wrap(err, "get service")
}

// GetByID returns a service in any status.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (*model.Service, error) {
	s, err := scanService(r.db.QueryRowContext(ctx, serviceSelect+" WHERE s.id = ?", id))
	return s, wrap(err, "get service")
}

// GetByAPIServiceID finds a service by its upstream provider id.
func (r *ServiceRepo) GetByAPIServiceID(ctx context.Context, apiID string) (*model.Service, error) {
	s, err := scanService(r.db.QueryRowContext(ctx, serviceSelect+" WHERE s.api_service_id = ?", apiID))
	return s, wrap(err, "get service by api id")
}

func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO services (category_id, name, description, price, reseller_price,
			min_quantity, max_quantity, speed, status, api_service_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.CategoryID, s.Name, s.Description, s.Price, s.ResellerPrice,
		s.MinQuantity, s.MaxQuantity, s.Speed, s.Status, s.APIServiceID)
	if err != nil {
		return wrap(err, "insert service")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "insert service id")
	}
	s.ID = uint64(id)
	return nil
}

// Update rewrites every editable column of s.
func (r *ServiceRepo) Update(ctx context.Context, s *model.Service) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE services SET category_id = ?, name = ?, description = ?, price = ?, reseller_price = ?,
			min_quantity = ?, max_quantity = ?, speed = ?, status = ?, api_service_id = ?
		 WHERE id = ?`,
		s.CategoryID, s.Name, s.Description, s.Price, s.ResellerPrice,
		s.MinQuantity, s.MaxQuantity, s.Speed, s.Status, s.APIServiceID, s.ID)
	return affected(res, err, "update service")
}

// Remove deletes a service. Services referenced by orders are only
// deactivated; softDeleted reports which path was taken.
func (r *ServiceRepo) Remove(ctx context.Context, id uint64) (softDeleted bool, err error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE service_id = ?", id).Scan(&n); err != nil {
		return false, wrap(err, "count service orders")
	}
	if n > 0 {
		res, err := r.db.ExecContext(ctx, "UPDATE services SET status = 'inactive' WHERE id = ?", id)
		return true, affected(res, err, "deactivate service")
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM services WHERE id = ?", id)
	return false, affected(res, err, "delete service")
}

// Upsert inserts s or, when a service with the same api_service_id exists,
// updates its name, description, prices, bounds and speed. created reports
// whether a new row was inserted.
func (r *ServiceRepo) Upsert(ctx context.Context, s *model.Service) (created bool, err error) {
	if s.APIServiceID == nil {
		return false, errors.New("upsert service: missing api_service_id")
	}
	existing, err := r.GetByAPIServiceID(ctx, *s.APIServiceID)
	switch {
	case errors.Is(err, ErrNotFound):
		return true, r.Create(ctx, s)
	case err != nil:
		return false, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE services SET name = ?, description = ?, price = ?, reseller_price = ?,
			min_quantity = ?, max_quantity = ?, speed = ?
		 WHERE id = ?`,
		s.Name, s.Description, s.Price, s.ResellerPrice, s.MinQuantity, s.MaxQuantity, s.Speed, existing.ID)
	s.ID = existing.ID
	return false, affected(res, err, "sync service")
}

package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/iliyamo/smm-webpanel/internal/model"
)

type CategoryRepo struct{ db *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryColumns = "id, name, description, status, created_at, updated_at"

func scanCategory(s rowScanner) (*model.Category, error) {
	var (
		c    model.Category
		desc sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &desc, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		c.Description = &desc.String
	}
	return &c, nil
}

// ListActive returns every active category ordered by name.
func (r *CategoryRepo) ListActive(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE status = 'active' ORDER BY name")
	if err != nil {
		return nil, wrap(err, "list categories")
	}
	defer rows.Close()
	out := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrap(err, "scan category")
		}
		out = append(out, *c)
	}
	return out, wrap(rows.Err(), "list categories")
}

// GetActive fetches an active category; inactive ones report ErrNotFound.
func (r *CategoryRepo) GetActive(ctx context.Context, id uint64) (*model.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ? AND status = 'active'", id))
	return c, wrap(err, "get category")
}

func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	if c.Status == "" {
		c.Status = model.CatalogActive
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, description, status) VALUES (?, ?, ?)", c.Name, c.Description, c.Status)
	if err != nil {
		return wrap(err, "insert category")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "insert category id")
	}
	c.ID = uint64(id)
	return nil
}

// Update rewrites name, description and status of an existing category.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, description = ?, status = ? WHERE id = ?",
		c.Name, c.Description, c.Status, c.ID)
	return affected(res, err, "update category")
}

// Delete removes a category without services. Categories that still own
// services report ErrConflict.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM services WHERE category_id = ?", id).Scan(&n); err != nil {
		return wrap(err, "count category services")
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	return affected(res, err, "delete category")
}

package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
	"github.com/MikeMC777/pos-backoffice/internal/database"
)

func (r *PGRepo) ListCategories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT category_id, category_name, created_at, updated_at
		FROM category ORDER BY category_name
	`)
	if err != nil {
		return nil, database.Translate(err, "list categories", "category")
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, database.Translate(err, "list categories", "category")
		}
		out = append(out, c)
	}
	return out, database.Translate(rows.Err(), "list categories", "category")
}

func (r *PGRepo) CreateCategory(ctx context.Context, c *Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO category (category_name, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING category_id, created_at, updated_at
	`, c.Name).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return database.Translate(err, "create category", "category")
}

func (r *PGRepo) UpdateCategory(ctx context.Context, c *Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE category SET category_name = $2, updated_at = NOW()
		WHERE category_id = $1
		RETURNING created_at, updated_at
	`, c.ID, c.Name).Scan(&c.CreatedAt, &c.UpdatedAt)
	return database.Translate(err, "update category", "category")
}

func (r *PGRepo) DeleteCategory(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM category WHERE category_id=$1`, id)
	return deleted(tag, err, "delete category", "category")
}

func (r *PGRepo) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT supplier_id, supplier_name, supplier_contact, supplier_email, created_at, updated_at
		FROM supplier ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, database.Translate(err, "list suppliers", "supplier")
	}
	defer rows.Close()

	out := []Supplier{}
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Contact, &s.Email, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, database.Translate(err, "list suppliers", "supplier")
		}
		out = append(out, s)
	}
	return out, database.Translate(rows.Err(), "list suppliers", "supplier")
}

func (r *PGRepo) CreateSupplier(ctx context.Context, s *Supplier) error {
	if err := s.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO supplier (supplier_name, supplier_contact, supplier_email, created_at, updated_at)
		VALUES ($1,$2,$3,NOW(),NOW())
		RETURNING supplier_id, created_at, updated_at
	`, s.Name, s.Contact, s.Email).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return database.Translate(err, "create supplier", "supplier")
}

func (r *PGRepo) UpdateSupplier(ctx context.Context, s *Supplier) error {
	if err := s.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE supplier
		SET supplier_name = $2, supplier_contact = $3, supplier_email = $4, updated_at = NOW()
		WHERE supplier_id = $1
		RETURNING created_at, updated_at
	`, s.ID, s.Name, s.Contact, s.Email).Scan(&s.CreatedAt, &s.UpdatedAt)
	return database.Translate(err, "update supplier", "supplier")
}

func (r *PGRepo) DeleteSupplier(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM supplier WHERE supplier_id=$1`, id)
	return deleted(tag, err, "delete supplier", "supplier")
}

func deleted(tag pgconn.CommandTag, err error, op, entity string) error {
	if err != nil {
		return database.Translate(err, op, entity)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(entity)
	}
	return nil
}

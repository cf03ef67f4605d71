package customer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
	"github.com/MikeMC777/pos-backoffice/internal/database"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	// Delete fails with a conflict while orders still reference the customer.
	Delete(ctx context.Context, id int64) (*Customer, error)
}

type PGRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPGRepo(db *pgxpool.Pool, timeout time.Duration) *PGRepo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PGRepo{db: db, timeout: timeout}
}

const columns = `customer_id, customer_name, customer_address, customer_email, customer_number, created_at, updated_at`

func scan(row pgx.Row, c *Customer) error {
	return row.Scan(&c.ID, &c.Name, &c.Address, &c.Email, &c.Number, &c.CreatedAt, &c.UpdatedAt)
}

// Insert writes an already validated customer through q, which may be a transaction.
func Insert(ctx context.Context, q database.DBTX, c *Customer) error {
	err := q.QueryRow(ctx, `
		INSERT INTO customer (customer_name, customer_address, customer_email, customer_number, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
		RETURNING customer_id, created_at, updated_at
	`, c.Name, c.Address, c.Email, c.Number).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return database.Translate(err, "create customer", "customer")
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var c Customer
	if err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM customer WHERE customer_id=$1`, id), &c); err != nil {
		return nil, database.Translate(err, "get customer", "customer")
	}
	return &c, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM customer ORDER BY updated_at DESC`)
	if err != nil {
		return nil, database.Translate(err, "list customers", "customer")
	}
	defer rows.Close()

	out := []Customer{}
	for rows.Next() {
		var c Customer
		if err := scan(rows, &c); err != nil {
			return nil, database.Translate(err, "list customers", "customer")
		}
		out = append(out, c)
	}
	return out, database.Translate(rows.Err(), "list customers", "customer")
}

func (r *PGRepo) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(false); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return Insert(ctx, r.db, c)
}

func (r *PGRepo) Update(ctx context.Context, c *Customer) error {
	if err := c.Validate(false); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE customer
		SET customer_name = $2, customer_address = $3, customer_email = $4, customer_number = $5, updated_at = NOW()
		WHERE customer_id = $1
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Address, c.Email, c.Number).Scan(&c.CreatedAt, &c.UpdatedAt)
	return database.Translate(err, "update customer", "customer")
}

func (r *PGRepo) Delete(ctx context.Context, id int64) (*Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var c Customer
	err := scan(r.db.QueryRow(ctx, `DELETE FROM customer WHERE customer_id=$1 RETURNING `+columns, id), &c)
	if err != nil {
		err = database.Translate(err, "delete customer", "customer")
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("customer %d still has orders", id)
		}
		return nil, err
	}
	return &c, nil
}

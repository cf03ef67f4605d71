package admin

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
	"github.com/MikeMC777/pos-backoffice/internal/database"
)

type Repository interface {
	Create(ctx context.Context, a *Admin) error
	GetByID(ctx context.Context, id int64) (*Admin, error)
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	List(ctx context.Context) ([]Admin, error)
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

const columns = `admin_id, admin_first_name, admin_last_name, admin_email, admin_password, created_at, updated_at`

func scan(row pgx.Row, a *Admin) error {
	return row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
}

func (r *PGRepo) Create(ctx context.Context, a *Admin) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO admin (admin_first_name, admin_last_name, admin_email, admin_password, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NOW(),NOW())
		RETURNING admin_id, created_at, updated_at
	`, a.FirstName, a.LastName, a.Email, a.PasswordHash).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		err = database.Translate(err, "create admin", "admin")
		if apperr.Is(err, apperr.KindConflict) {
			return apperr.Conflict("admin with email %s already exists", a.Email)
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var a Admin
	if err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM admin WHERE admin_id=$1`, id), &a); err != nil {
		return nil, database.Translate(err, "get admin", "admin")
	}
	return &a, nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var a Admin
	if err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM admin WHERE admin_email=$1`, email), &a); err != nil {
		return nil, database.Translate(err, "get admin", "admin")
	}
	return &a, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM admin ORDER BY admin_last_name, admin_first_name`)
	if err != nil {
		return nil, database.Translate(err, "list admins", "admin")
	}
	defer rows.Close()

	out := []Admin{}
	for rows.Next() {
		var a Admin
		if err := scan(rows, &a); err != nil {
			return nil, database.Translate(err, "list admins", "admin")
		}
		out = append(out, a)
	}
	return out, database.Translate(rows.Err(), "list admins", "admin")
}

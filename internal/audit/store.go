package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/pos-backoffice/internal/database"
)

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Insert(ctx context.Context, description, actor string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO system_log (log_description, log_created_by, log_datetime)
		VALUES ($1,$2,NOW())
	`, description, actor)
	return database.Translate(err, "insert system log", "system log")
}

func (s *PGStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT log_id, log_description, log_created_by, log_datetime
		FROM system_log ORDER BY log_datetime DESC, log_id DESC
	`)
	if err != nil {
		return nil, database.Translate(err, "list system log", "system log")
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Description, &e.CreatedBy, &e.DateTime); err != nil {
			return nil, database.Translate(err, "list system log", "system log")
		}
		out = append(out, e)
	}
	return out, database.Translate(rows.Err(), "list system log", "system log")
}

package contact

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wc-unleashed-sync/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Insert(ctx context.Context, c domain.Contact) error {
	const q = `
INSERT INTO contacts_data (contact_email, customer_code, customer_guid)
VALUES ($1, $2, $3)
`
	_, err := r.pool.Exec(ctx, q, c.Email, c.CustomerCode, c.CustomerGUID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *postgresRepo) Find(ctx context.Context, email string) (*domain.Contact, error) {
	const q = `
SELECT contact_email, customer_code, customer_guid, created_at
FROM contacts_data
WHERE contact_email = $1
`
	var c domain.Contact
	if err := r.pool.QueryRow(ctx, q, email).Scan(&c.Email, &c.CustomerCode, &c.CustomerGUID, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

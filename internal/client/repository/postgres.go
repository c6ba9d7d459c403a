package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"atelierhub/internal/client"
)

type PostgresClientRepository struct {
	db *sql.DB
}

func NewPostgresClientRepository(db *sql.DB) *PostgresClientRepository {
	return &PostgresClientRepository{db: db}
}

func (r *PostgresClientRepository) Create(ctx context.Context, c *client.Client) error {
	measurements, err := json.Marshal(c.Measurements)
	if err != nil {
		return err
	}

	query := `INSERT INTO clients (user_id, name, email, phone, notes, measurements, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		c.UserID, c.Name, c.Email, c.Phone, c.Notes, measurements,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *PostgresClientRepository) GetByID(ctx context.Context, userID, id int64) (*client.Client, error) {
	c := &client.Client{}
	var measurements []byte

	query := `SELECT id, user_id, name, email, phone, notes, measurements, created_at, updated_at
	          FROM clients WHERE id = $1 AND user_id = $2`

	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Notes,
		&measurements,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if len(measurements) > 0 {
		if err := json.Unmarshal(measurements, &c.Measurements); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (r *PostgresClientRepository) ListByUser(ctx context.Context, userID int64) ([]*client.Client, error) {
	query := `SELECT id, user_id, name, email, phone, notes, measurements, created_at, updated_at
	          FROM clients WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*client.Client
	for rows.Next() {
		c := &client.Client{}
		var measurements []byte
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Name,
			&c.Email,
			&c.Phone,
			&c.Notes,
			&measurements,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if len(measurements) > 0 {
			if err := json.Unmarshal(measurements, &c.Measurements); err != nil {
				return nil, err
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresClientRepository) Delete(ctx context.Context, userID, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func (r *PostgresClientRepository) CountForUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

package repository

import (
	"context"
	"database/sql"

	"atelierhub/internal/project"
)

type PostgresProjectRepository struct {
	db *sql.DB
}

func NewPostgresProjectRepository(db *sql.DB) *PostgresProjectRepository {
	return &PostgresProjectRepository{db: db}
}

const projectColumns = `id, user_id, client_id, title, description, status, due_date, created_at, updated_at`

func (r *PostgresProjectRepository) Create(ctx context.Context, p *project.Project) error {
	query := `INSERT INTO projects (user_id, client_id, title, description, status, due_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		p.UserID, p.ClientID, p.Title, p.Description, p.Status, p.DueDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PostgresProjectRepository) GetByID(ctx context.Context, userID, id int64) (*project.Project, error) {
	p := &project.Project{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND user_id = $2`, id, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.ClientID,
		&p.Title,
		&p.Description,
		&p.Status,
		&p.DueDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresProjectRepository) ListByUser(ctx context.Context, userID int64) ([]*project.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*project.Project
	for rows.Next() {
		p := &project.Project{}
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.ClientID,
			&p.Title,
			&p.Description,
			&p.Status,
			&p.DueDate,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresProjectRepository) UpdateStatus(ctx context.Context, userID, id int64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		status, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PostgresProjectRepository) CountForUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

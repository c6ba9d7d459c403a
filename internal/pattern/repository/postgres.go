package repository

import (
	"context"
	"database/sql"

	"atelierhub/internal/pattern"
)

type PostgresPatternRepository struct {
	db *sql.DB
}

func NewPostgresPatternRepository(db *sql.DB) *PostgresPatternRepository {
	return &PostgresPatternRepository{db: db}
}

func (r *PostgresPatternRepository) Create(ctx context.Context, g *pattern.Generation) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO pattern_generations (user_id, prompt, style, image_url, created_at)
		 VALUES ($1, $2, $3, $4, NOW()) RETURNING id, created_at`,
		g.UserID, g.Prompt, g.Style, g.ImageURL,
	).Scan(&g.ID, &g.CreatedAt)
}

func (r *PostgresPatternRepository) ListByUser(ctx context.Context, userID int64) ([]*pattern.Generation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, prompt, style, image_url, created_at
		 FROM pattern_generations WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*pattern.Generation
	for rows.Next() {
		g := &pattern.Generation{}
		if err := rows.Scan(&g.ID, &g.UserID, &g.Prompt, &g.Style, &g.ImageURL, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CountForUser counts generations in the current calendar month, which is
// the window monthly plan limits apply to.
func (r *PostgresPatternRepository) CountForUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pattern_generations
		 WHERE user_id = $1 AND created_at >= date_trunc('month', NOW())`, userID).Scan(&n)
	return n, err
}

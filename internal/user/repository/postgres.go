package repository

import (
	"context"
	"database/sql"
	"time"

	"atelierhub/internal/user"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, email, password, display_name, plan, is_sub_active, subscription_id, trial_ends_at, is_admin, created_at`

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (email, password, display_name, plan, is_sub_active, trial_ends_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		u.Email, u.Password, u.DisplayName, u.Plan, u.IsSubActive, u.TrialEndsAt,
	).Scan(&u.ID)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u := &user.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.Password,
		&u.DisplayName,
		&u.Plan,
		&u.IsSubActive,
		&u.SubscriptionID,
		&u.TrialEndsAt,
		&u.IsAdmin,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u := &user.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.Password,
		&u.DisplayName,
		&u.Plan,
		&u.IsSubActive,
		&u.SubscriptionID,
		&u.TrialEndsAt,
		&u.IsAdmin,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return u, nil
}

// SetPlan atomically writes the user's entitlement snapshot.
func (r *PostgresUserRepository) SetPlan(ctx context.Context, userID int64, plan string, isSubActive bool, subscriptionID *int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET plan = $1, is_sub_active = $2, subscription_id = $3 WHERE id = $4`,
		plan, isSubActive, subscriptionID, userID)
	return err
}

// DowngradeExpiredTrials moves users whose trial ran out back to the free
// plan. Users holding a subscription reference are left to the billing
// sweep, which reconciles them against the payment provider instead.
func (r *PostgresUserRepository) DowngradeExpiredTrials(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET plan = 'free', is_sub_active = TRUE, trial_ends_at = NULL
		 WHERE plan <> 'free' AND subscription_id IS NULL
		   AND trial_ends_at IS NOT NULL AND trial_ends_at <= $1`,
		now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"atelierhub/internal/invoice"
)

type PostgresInvoiceRepository struct {
	db *sql.DB
}

func NewPostgresInvoiceRepository(db *sql.DB) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{db: db}
}

// Create inserts the invoice and its lines in one transaction so a partial
// invoice is never visible.
func (r *PostgresInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO invoices (user_id, project_id, number, status, currency, total, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		inv.UserID, inv.ProjectID, inv.Number, inv.Status, inv.Currency, inv.Total,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range inv.Lines {
		line := &inv.Lines[i]
		line.InvoiceID = inv.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO invoice_lines (invoice_id, description, quantity, unit_amount)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			line.InvoiceID, line.Description, line.Quantity, line.UnitAmount,
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("insert invoice line: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PostgresInvoiceRepository) GetByID(ctx context.Context, userID, id int64) (*invoice.Invoice, error) {
	inv := &invoice.Invoice{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, project_id, number, status, currency, total, created_at, updated_at
		 FROM invoices WHERE id = $1 AND user_id = $2`, id, userID).Scan(
		&inv.ID,
		&inv.UserID,
		&inv.ProjectID,
		&inv.Number,
		&inv.Status,
		&inv.Currency,
		&inv.Total,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, invoice_id, description, quantity, unit_amount
		 FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`, inv.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line invoice.Line
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.Description, &line.Quantity, &line.UnitAmount); err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, line)
	}
	return inv, rows.Err()
}

func (r *PostgresInvoiceRepository) ListByUser(ctx context.Context, userID int64) ([]*invoice.Invoice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, project_id, number, status, currency, total, created_at, updated_at
		 FROM invoices WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*invoice.Invoice
	for rows.Next() {
		inv := &invoice.Invoice{}
		if err := rows.Scan(
			&inv.ID,
			&inv.UserID,
			&inv.ProjectID,
			&inv.Number,
			&inv.Status,
			&inv.Currency,
			&inv.Total,
			&inv.CreatedAt,
			&inv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *PostgresInvoiceRepository) UpdateStatus(ctx context.Context, userID, id int64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
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

// NextNumber allocates a sequential per-user invoice number.
func (r *PostgresInvoiceRepository) NextNumber(ctx context.Context, userID int64) (string, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) + 1 FROM invoices WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%04d", userID, n), nil
}

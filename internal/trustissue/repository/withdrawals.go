package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/trustissue/trustissue/internal/trustissue/models"
)

// CreateWithdrawal reserves the amount and records the request in one
// transaction. The debit is a conditional update so that two concurrent
// requests cannot both pass a stale balance check.
func (r *PostgresRepository) CreateWithdrawal(ctx context.Context, sellerID int64, amount float64) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		`UPDATE accounts
         SET balance = balance - $1
         WHERE id = $2 AND role = $3 AND balance >= $1`,
		amount, sellerID, models.RoleSeller,
	)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrInsufficientBalance
	}

	var id int64
	err = tx.QueryRowContext(
		ctx,
		"INSERT INTO withdrawals (seller_id, amount) VALUES ($1, $2) RETURNING id",
		sellerID, amount,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return id, nil
}

func (r *PostgresRepository) GetWithdrawalByID(ctx context.Context, id int64) (*models.Withdrawal, error) {
	w := &models.Withdrawal{}
	err := r.db.QueryRowContext(
		ctx,
		"SELECT id, seller_id, amount, status, created_at FROM withdrawals WHERE id = $1",
		id,
	).Scan(&w.ID, &w.SellerID, &w.Amount, &w.Status, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func (r *PostgresRepository) ListWithdrawalsBySeller(ctx context.Context, sellerID int64) ([]models.Withdrawal, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, seller_id, amount, status, created_at
         FROM withdrawals
         WHERE seller_id = $1
         ORDER BY created_at DESC`,
		sellerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var withdrawals []models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		if err := rows.Scan(&w.ID, &w.SellerID, &w.Amount, &w.Status, &w.CreatedAt); err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return withdrawals, nil
}

// ListWithdrawalsByStatus returns withdrawals with seller identity joined,
// newest first, for the admin queue.
func (r *PostgresRepository) ListWithdrawalsByStatus(ctx context.Context, status string) ([]models.Withdrawal, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT w.id, w.seller_id, w.amount, w.status, w.created_at, s.name, s.email
         FROM withdrawals w
         JOIN accounts s ON w.seller_id = s.id
         WHERE w.status = $1
         ORDER BY w.created_at DESC`,
		status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var withdrawals []models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		if err := rows.Scan(&w.ID, &w.SellerID, &w.Amount, &w.Status, &w.CreatedAt, &w.SellerName, &w.SellerEmail); err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return withdrawals, nil
}

// ReviewWithdrawal records the admin decision. Guarded: only a pending
// withdrawal can be decided. When refund is true and the decision is a
// rejection, the reserved amount is credited back in the same transaction.
func (r *PostgresRepository) ReviewWithdrawal(ctx context.Context, id int64, status string, refund bool) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var sellerID int64
	var amount float64
	var current string
	err = tx.QueryRowContext(
		ctx,
		"SELECT seller_id, amount, status FROM withdrawals WHERE id = $1 FOR UPDATE",
		id,
	).Scan(&sellerID, &amount, &current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	if current != models.WithdrawalPending {
		return false, nil
	}

	if _, err := tx.ExecContext(
		ctx,
		"UPDATE withdrawals SET status = $1 WHERE id = $2",
		status, id,
	); err != nil {
		return false, err
	}

	if refund && status == models.WithdrawalRejected {
		if _, err := tx.ExecContext(
			ctx,
			"UPDATE accounts SET balance = balance + $1 WHERE id = $2",
			amount, sellerID,
		); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

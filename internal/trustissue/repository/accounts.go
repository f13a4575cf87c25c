package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/trustissue/trustissue/internal/trustissue/models"
)

// Account repository methods
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *models.Account) (int64, error) {
	var id int64
	var approvedBy interface{}
	if account.ApprovedBy != 0 {
		approvedBy = account.ApprovedBy
	}

	err := r.db.QueryRowContext(
		ctx,
		`INSERT INTO accounts (role, name, email, password_hash, approved_by)
         VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		account.Role, account.Name, account.Email, account.PasswordHash, approvedBy,
	).Scan(&id)

	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *PostgresRepository) GetAccountByEmail(ctx context.Context, role models.Role, email string) (*models.Account, error) {
	return r.scanAccount(r.db.QueryRowContext(
		ctx,
		`SELECT id, role, name, email, password_hash, balance, approved_by, created_at
         FROM accounts WHERE role = $1 AND email = $2`,
		role, email,
	))
}

func (r *PostgresRepository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.scanAccount(r.db.QueryRowContext(
		ctx,
		`SELECT id, role, name, email, password_hash, balance, approved_by, created_at
         FROM accounts WHERE id = $1`,
		id,
	))
}

func (r *PostgresRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var approvedBy sql.NullInt64

	err := row.Scan(
		&account.ID,
		&account.Role,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Balance,
		&approvedBy,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	account.ApprovedBy = approvedBy.Int64
	return account, nil
}

func (r *PostgresRepository) ListAccountsByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, role, name, email, password_hash, balance, approved_by, created_at
         FROM accounts
         WHERE role = $1
         ORDER BY created_at DESC`,
		role,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		var approvedBy sql.NullInt64
		if err := rows.Scan(
			&account.ID,
			&account.Role,
			&account.Name,
			&account.Email,
			&account.PasswordHash,
			&account.Balance,
			&approvedBy,
			&account.CreatedAt,
		); err != nil {
			return nil, err
		}
		account.ApprovedBy = approvedBy.Int64
		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

// UpdateAccount updates name, email and optionally the password hash of an
// account of the given role. An empty passwordHash keeps the stored one.
func (r *PostgresRepository) UpdateAccount(ctx context.Context, role models.Role, id int64, name, email, passwordHash string) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE accounts
         SET name = $1,
             email = $2,
             password_hash = CASE WHEN $3 = '' THEN password_hash ELSE $3 END
         WHERE id = $4 AND role = $5`,
		name, email, passwordHash, id, role,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PostgresRepository) DeleteAccount(ctx context.Context, role models.Role, id int64) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		"DELETE FROM accounts WHERE id = $1 AND role = $2",
		id, role,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AdjustBalance applies a credit (or debit) to a seller's balance. Negative
// deltas only succeed when the balance covers them.
func (r *PostgresRepository) AdjustBalance(ctx context.Context, sellerID int64, delta float64) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE accounts
         SET balance = balance + $1
         WHERE id = $2 AND role = $3 AND balance + $1 >= 0`,
		delta, sellerID, models.RoleSeller,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

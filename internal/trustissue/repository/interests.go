package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/trustissue/trustissue/internal/trustissue/models"
)

// Interest repository methods. Feature lists are stored as JSONB columns.
func (r *PostgresRepository) CreateInterest(ctx context.Context, interest *models.Interest) (int64, error) {
	features, err := json.Marshal(interest.FeaturesRequested)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(
		ctx,
		`INSERT INTO interests (product_id, buyer_id, features_requested)
         VALUES ($1, $2, $3) RETURNING id`,
		interest.ProductID, interest.BuyerID, features,
	).Scan(&id)

	if err != nil {
		return 0, err
	}

	return id, nil
}

const interestColumns = `id, product_id, buyer_id, features_requested, feature_status, status,
                         verified_by, payment_proof_url, payment_status, created_at, updated_at`

func (r *PostgresRepository) GetInterestByID(ctx context.Context, id int64) (*models.Interest, error) {
	return r.scanInterest(r.db.QueryRowContext(
		ctx,
		"SELECT "+interestColumns+" FROM interests WHERE id = $1",
		id,
	))
}

func (r *PostgresRepository) GetInterestByProductAndBuyer(ctx context.Context, productID, buyerID int64) (*models.Interest, error) {
	return r.scanInterest(r.db.QueryRowContext(
		ctx,
		"SELECT "+interestColumns+" FROM interests WHERE product_id = $1 AND buyer_id = $2",
		productID, buyerID,
	))
}

func (r *PostgresRepository) scanInterest(row *sql.Row) (*models.Interest, error) {
	interest := &models.Interest{}
	var features, checks []byte
	var verifiedBy sql.NullInt64

	err := row.Scan(
		&interest.ID,
		&interest.ProductID,
		&interest.BuyerID,
		&features,
		&checks,
		&interest.Status,
		&verifiedBy,
		&interest.PaymentProofURL,
		&interest.PaymentStatus,
		&interest.CreatedAt,
		&interest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := unmarshalInterestLists(interest, features, checks); err != nil {
		return nil, err
	}
	interest.VerifiedBy = verifiedBy.Int64
	return interest, nil
}

func unmarshalInterestLists(interest *models.Interest, features, checks []byte) error {
	if err := json.Unmarshal(features, &interest.FeaturesRequested); err != nil {
		return err
	}
	if len(checks) > 0 {
		if err := json.Unmarshal(checks, &interest.FeatureStatus); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) ListInterestsByBuyer(ctx context.Context, buyerID int64) ([]models.Interest, error) {
	return r.listInterests(ctx,
		`SELECT i.id, i.product_id, i.buyer_id, i.features_requested, i.feature_status, i.status,
                i.verified_by, i.payment_proof_url, i.payment_status, i.created_at, i.updated_at,
                b.name, b.email, p.name, p.price, COALESCE(v.email, '')
         FROM interests i
         JOIN accounts b ON i.buyer_id = b.id
         JOIN products p ON i.product_id = p.id
         LEFT JOIN accounts v ON i.verified_by = v.id
         WHERE i.buyer_id = $1
         ORDER BY i.created_at DESC`,
		buyerID,
	)
}

func (r *PostgresRepository) ListInterestsByBuyerAndStatus(ctx context.Context, buyerID int64, status string) ([]models.Interest, error) {
	return r.listInterests(ctx,
		`SELECT i.id, i.product_id, i.buyer_id, i.features_requested, i.feature_status, i.status,
                i.verified_by, i.payment_proof_url, i.payment_status, i.created_at, i.updated_at,
                b.name, b.email, p.name, p.price, COALESCE(v.email, '')
         FROM interests i
         JOIN accounts b ON i.buyer_id = b.id
         JOIN products p ON i.product_id = p.id
         LEFT JOIN accounts v ON i.verified_by = v.id
         WHERE i.buyer_id = $1 AND i.status = $2
         ORDER BY i.created_at DESC`,
		buyerID, status,
	)
}

// ListPurchasesByBuyer returns interests whose payment has been decided
// either way, the buyer's purchase history.
func (r *PostgresRepository) ListPurchasesByBuyer(ctx context.Context, buyerID int64) ([]models.Interest, error) {
	return r.listInterests(ctx,
		`SELECT i.id, i.product_id, i.buyer_id, i.features_requested, i.feature_status, i.status,
                i.verified_by, i.payment_proof_url, i.payment_status, i.created_at, i.updated_at,
                b.name, b.email, p.name, p.price, COALESCE(v.email, '')
         FROM interests i
         JOIN accounts b ON i.buyer_id = b.id
         JOIN products p ON i.product_id = p.id
         LEFT JOIN accounts v ON i.verified_by = v.id
         WHERE i.buyer_id = $1 AND i.payment_status IN ($2, $3)
         ORDER BY i.created_at DESC`,
		buyerID, models.PaymentConfirmed, models.PaymentRejected,
	)
}

func (r *PostgresRepository) ListInterestsByStatus(ctx context.Context, status string) ([]models.Interest, error) {
	return r.listInterests(ctx,
		`SELECT i.id, i.product_id, i.buyer_id, i.features_requested, i.feature_status, i.status,
                i.verified_by, i.payment_proof_url, i.payment_status, i.created_at, i.updated_at,
                b.name, b.email, p.name, p.price, COALESCE(v.email, '')
         FROM interests i
         JOIN accounts b ON i.buyer_id = b.id
         JOIN products p ON i.product_id = p.id
         LEFT JOIN accounts v ON i.verified_by = v.id
         WHERE i.status = $1
         ORDER BY i.created_at DESC`,
		status,
	)
}

func (r *PostgresRepository) ListInterestsByPaymentStatus(ctx context.Context, paymentStatus string) ([]models.Interest, error) {
	return r.listInterests(ctx,
		`SELECT i.id, i.product_id, i.buyer_id, i.features_requested, i.feature_status, i.status,
                i.verified_by, i.payment_proof_url, i.payment_status, i.created_at, i.updated_at,
                b.name, b.email, p.name, p.price, COALESCE(v.email, '')
         FROM interests i
         JOIN accounts b ON i.buyer_id = b.id
         JOIN products p ON i.product_id = p.id
         LEFT JOIN accounts v ON i.verified_by = v.id
         WHERE i.payment_status = $1
         ORDER BY i.created_at DESC`,
		paymentStatus,
	)
}

// ListInterestsBySeller returns interests on products owned by the seller,
// for seller visibility only.
func (r *PostgresRepository) ListInterestsBySeller(ctx context.Context, sellerID int64) ([]models.Interest, error) {
	return r.listInterests(ctx,
		`SELECT i.id, i.product_id, i.buyer_id, i.features_requested, i.feature_status, i.status,
                i.verified_by, i.payment_proof_url, i.payment_status, i.created_at, i.updated_at,
                b.name, b.email, p.name, p.price, COALESCE(v.email, '')
         FROM interests i
         JOIN accounts b ON i.buyer_id = b.id
         JOIN products p ON i.product_id = p.id
         LEFT JOIN accounts v ON i.verified_by = v.id
         WHERE p.seller_id = $1
         ORDER BY i.created_at DESC`,
		sellerID,
	)
}

func (r *PostgresRepository) listInterests(ctx context.Context, query string, args ...interface{}) ([]models.Interest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interests []models.Interest
	for rows.Next() {
		var interest models.Interest
		var features, checks []byte
		var verifiedBy sql.NullInt64

		if err := rows.Scan(
			&interest.ID,
			&interest.ProductID,
			&interest.BuyerID,
			&features,
			&checks,
			&interest.Status,
			&verifiedBy,
			&interest.PaymentProofURL,
			&interest.PaymentStatus,
			&interest.CreatedAt,
			&interest.UpdatedAt,
			&interest.BuyerName,
			&interest.BuyerEmail,
			&interest.ProductName,
			&interest.ProductPrice,
			&interest.VerifierEmail,
		); err != nil {
			return nil, err
		}

		if err := unmarshalInterestLists(&interest, features, checks); err != nil {
			return nil, err
		}
		interest.VerifiedBy = verifiedBy.Int64
		interests = append(interests, interest)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return interests, nil
}

// ReviewInterest records the verifier's feature attestations and the derived
// status. Guarded: only a pending interest can be reviewed.
func (r *PostgresRepository) ReviewInterest(ctx context.Context, id int64, checks []models.FeatureCheck, status string, verifierID int64) (bool, error) {
	encoded, err := json.Marshal(checks)
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(
		ctx,
		`UPDATE interests
         SET feature_status = $1, status = $2, verified_by = $3, updated_at = CURRENT_TIMESTAMP
         WHERE id = $4 AND status = $5`,
		encoded, status, verifierID, id, models.InterestPending,
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

// SetPaymentProof stores the proof reference. The update only matches when
// the interest belongs to the buyer, is verified, and payment is undecided.
func (r *PostgresRepository) SetPaymentProof(ctx context.Context, id, buyerID int64, proofURL string) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE interests
         SET payment_proof_url = $1, payment_status = $2, updated_at = CURRENT_TIMESTAMP
         WHERE id = $3 AND buyer_id = $4 AND status = $5 AND payment_status = $6`,
		proofURL, models.PaymentUploaded, id, buyerID, models.InterestVerified, models.PaymentPending,
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

// SetPaymentStatus records the verifier's payment decision. Guarded: only an
// uploaded payment can be decided. On confirmation the interest completes.
func (r *PostgresRepository) SetPaymentStatus(ctx context.Context, id int64, paymentStatus string, completed bool) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE interests
         SET payment_status = $1,
             status = CASE WHEN $2 THEN $3 ELSE status END,
             updated_at = CURRENT_TIMESTAMP
         WHERE id = $4 AND payment_status = $5`,
		paymentStatus, completed, models.InterestCompleted, id, models.PaymentUploaded,
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

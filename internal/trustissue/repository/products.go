package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/trustissue/trustissue/internal/trustissue/models"
)

// Product repository methods
func (r *PostgresRepository) CreateProduct(ctx context.Context, product *models.Product) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(
		ctx,
		`INSERT INTO products (seller_id, name, description, price, category, file_url)
         VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		product.SellerID, product.Name, product.Description, product.Price, product.Category, product.FileURL,
	).Scan(&id)

	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *PostgresRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	var reviewedBy sql.NullInt64

	err := r.db.QueryRowContext(
		ctx,
		`SELECT id, seller_id, name, description, price, category, file_url, status, reviewed_by, created_at, updated_at
         FROM products WHERE id = $1`,
		id,
	).Scan(
		&product.ID,
		&product.SellerID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Category,
		&product.FileURL,
		&product.Status,
		&reviewedBy,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	product.ReviewedBy = reviewedBy.Int64
	return product, nil
}

func (r *PostgresRepository) ListProductsBySeller(ctx context.Context, sellerID int64) ([]models.Product, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, seller_id, name, description, price, category, file_url, status, reviewed_by, created_at, updated_at
         FROM products
         WHERE seller_id = $1
         ORDER BY created_at DESC`,
		sellerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows, false)
}

// ListProductsByStatus returns products with the given status joined with
// seller and reviewer identity. An empty status returns all products.
func (r *PostgresRepository) ListProductsByStatus(ctx context.Context, status string) ([]models.Product, error) {
	query := `SELECT p.id, p.seller_id, p.name, p.description, p.price, p.category, p.file_url,
                     p.status, p.reviewed_by, p.created_at, p.updated_at,
                     s.name, s.email, COALESCE(v.email, '')
              FROM products p
              JOIN accounts s ON p.seller_id = s.id
              LEFT JOIN accounts v ON p.reviewed_by = v.id`

	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = r.db.QueryContext(ctx, query+" ORDER BY p.created_at DESC")
	} else {
		rows, err = r.db.QueryContext(ctx, query+" WHERE p.status = $1 ORDER BY p.created_at DESC", status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows, true)
}

func scanProducts(rows *sql.Rows, joined bool) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var product models.Product
		var reviewedBy sql.NullInt64

		dest := []interface{}{
			&product.ID,
			&product.SellerID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Category,
			&product.FileURL,
			&product.Status,
			&reviewedBy,
			&product.CreatedAt,
			&product.UpdatedAt,
		}
		if joined {
			dest = append(dest, &product.SellerName, &product.SellerEmail, &product.ReviewerEmail)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		product.ReviewedBy = reviewedBy.Int64
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

// UpdateProduct updates a product's content fields, scoped to its owning
// seller. An empty fileURL keeps the stored file reference.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, sellerID, id int64, name, description string, price float64, category, fileURL string) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE products
         SET name = $1,
             description = $2,
             price = $3,
             category = $4,
             file_url = CASE WHEN $5 = '' THEN file_url ELSE $5 END,
             updated_at = CURRENT_TIMESTAMP
         WHERE id = $6 AND seller_id = $7`,
		name, description, price, category, fileURL, id, sellerID,
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

func (r *PostgresRepository) DeleteProduct(ctx context.Context, sellerID, id int64) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		"DELETE FROM products WHERE id = $1 AND seller_id = $2",
		id, sellerID,
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

// ReviewProduct records a verifier decision. The transition is guarded:
// only a pending product can be reviewed.
func (r *PostgresRepository) ReviewProduct(ctx context.Context, id int64, status string, verifierID int64) (bool, error) {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE products
         SET status = $1, reviewed_by = $2, updated_at = CURRENT_TIMESTAMP
         WHERE id = $3 AND status = $4`,
		status, verifierID, id, models.ProductPending,
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

package repository

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/trustissue/trustissue/internal/trustissue/models"
)

// ErrInsufficientBalance is returned by CreateWithdrawal when the seller's
// balance does not cover the requested amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Repository defines the interface for data access operations
type Repository interface {
	// Account operations
	CreateAccount(ctx context.Context, account *models.Account) (int64, error)
	GetAccountByEmail(ctx context.Context, role models.Role, email string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	ListAccountsByRole(ctx context.Context, role models.Role) ([]models.Account, error)
	UpdateAccount(ctx context.Context, role models.Role, id int64, name, email, passwordHash string) (bool, error)
	DeleteAccount(ctx context.Context, role models.Role, id int64) (bool, error)
	AdjustBalance(ctx context.Context, sellerID int64, delta float64) (bool, error)

	// Product operations
	CreateProduct(ctx context.Context, product *models.Product) (int64, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListProductsBySeller(ctx context.Context, sellerID int64) ([]models.Product, error)
	ListProductsByStatus(ctx context.Context, status string) ([]models.Product, error)
	UpdateProduct(ctx context.Context, sellerID, id int64, name, description string, price float64, category, fileURL string) (bool, error)
	DeleteProduct(ctx context.Context, sellerID, id int64) (bool, error)
	ReviewProduct(ctx context.Context, id int64, status string, verifierID int64) (bool, error)

	// Interest operations
	CreateInterest(ctx context.Context, interest *models.Interest) (int64, error)
	GetInterestByID(ctx context.Context, id int64) (*models.Interest, error)
	GetInterestByProductAndBuyer(ctx context.Context, productID, buyerID int64) (*models.Interest, error)
	ListInterestsByBuyer(ctx context.Context, buyerID int64) ([]models.Interest, error)
	ListInterestsByBuyerAndStatus(ctx context.Context, buyerID int64, status string) ([]models.Interest, error)
	ListPurchasesByBuyer(ctx context.Context, buyerID int64) ([]models.Interest, error)
	ListInterestsByStatus(ctx context.Context, status string) ([]models.Interest, error)
	ListInterestsByPaymentStatus(ctx context.Context, paymentStatus string) ([]models.Interest, error)
	ListInterestsBySeller(ctx context.Context, sellerID int64) ([]models.Interest, error)
	ReviewInterest(ctx context.Context, id int64, checks []models.FeatureCheck, status string, verifierID int64) (bool, error)
	SetPaymentProof(ctx context.Context, id, buyerID int64, proofURL string) (bool, error)
	SetPaymentStatus(ctx context.Context, id int64, paymentStatus string, completed bool) (bool, error)

	// Withdrawal operations
	CreateWithdrawal(ctx context.Context, sellerID int64, amount float64) (int64, error)
	GetWithdrawalByID(ctx context.Context, id int64) (*models.Withdrawal, error)
	ListWithdrawalsBySeller(ctx context.Context, sellerID int64) ([]models.Withdrawal, error)
	ListWithdrawalsByStatus(ctx context.Context, status string) ([]models.Withdrawal, error)
	ReviewWithdrawal(ctx context.Context, id int64, status string, refund bool) (bool, error)

	// Initialize and close
	InitDB(databaseURI string) error
	Close() error
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

// InitDB initializes the database connection and schema
func (r *PostgresRepository) InitDB(databaseURI string) error {
	db, err := sql.Open("pgx", databaseURI)
	if err != nil {
		return err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	r.db = db

	// Create tables if they don't exist
	if err := r.createTables(); err != nil {
		db.Close()
		return err
	}

	return nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// createTables creates the necessary tables if they don't exist
func (r *PostgresRepository) createTables() error {
	// Accounts table: one table for all four roles, email unique per role.
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id SERIAL PRIMARY KEY,
			role VARCHAR(16) NOT NULL,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			balance NUMERIC(12, 2) NOT NULL DEFAULT 0,
			approved_by INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (role, email)
		)
	`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			seller_id INTEGER NOT NULL REFERENCES accounts(id),
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			price NUMERIC(12, 2) NOT NULL,
			category VARCHAR(255) NOT NULL DEFAULT 'general',
			file_url VARCHAR(512) NOT NULL DEFAULT '',
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			reviewed_by INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE TABLE IF NOT EXISTS interests (
			id SERIAL PRIMARY KEY,
			product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			buyer_id INTEGER NOT NULL REFERENCES accounts(id),
			features_requested JSONB NOT NULL,
			feature_status JSONB,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			verified_by INTEGER,
			payment_proof_url VARCHAR(512) NOT NULL DEFAULT '',
			payment_status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (product_id, buyer_id)
		)
	`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE TABLE IF NOT EXISTS withdrawals (
			id SERIAL PRIMARY KEY,
			seller_id INTEGER NOT NULL REFERENCES accounts(id),
			amount NUMERIC(12, 2) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/trustissue/trustissue/internal/trustissue/models"
	"github.com/trustissue/trustissue/internal/trustissue/repository"
)

// Products manages the listing approval lifecycle:
// pending -> approved | rejected, decided once by a verifier.
type Products struct {
	repo repository.Repository
}

// NewProducts creates a product lifecycle service
func NewProducts(repo repository.Repository) *Products {
	return &Products{repo: repo}
}

// ProductFields are the seller-supplied content fields of a listing.
type ProductFields struct {
	Name        string
	Description string
	Price       float64
	Category    string
	FileURL     string
}

func (f *ProductFields) validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)

	if f.Name == "" || f.Description == "" {
		return fmt.Errorf("%w: name and description are required", ErrInvalidInput)
	}
	if f.Price <= 0 {
		return fmt.Errorf("%w: price must be a positive number", ErrInvalidInput)
	}
	if f.Category == "" {
		f.Category = "general"
	}
	return nil
}

// Create persists a new pending listing owned by the seller.
func (s *Products) Create(ctx context.Context, sellerID int64, fields ProductFields) (*models.Product, error) {
	if err := fields.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		SellerID:    sellerID,
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		Category:    fields.Category,
		FileURL:     fields.FileURL,
		Status:      models.ProductPending,
	}

	id, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	product.ID = id

	return product, nil
}

// ListSeller returns the seller's own listings, newest first.
func (s *Products) ListSeller(ctx context.Context, sellerID int64) ([]models.Product, error) {
	return s.repo.ListProductsBySeller(ctx, sellerID)
}

// ListPending returns the verifier review queue with seller identity joined.
func (s *Products) ListPending(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListProductsByStatus(ctx, models.ProductPending)
}

// ListApproved returns the buyer-facing catalog.
func (s *Products) ListApproved(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListProductsByStatus(ctx, models.ProductApproved)
}

// ListAll returns every listing, optionally filtered by status, for the
// admin view.
func (s *Products) ListAll(ctx context.Context, status string) ([]models.Product, error) {
	switch status {
	case "", models.ProductPending, models.ProductApproved, models.ProductRejected:
	default:
		return nil, fmt.Errorf("%w: unknown status filter", ErrInvalidInput)
	}
	return s.repo.ListProductsByStatus(ctx, status)
}

// Review records a verifier decision on a pending listing. Reviewing an
// already-decided listing is a conflict, not an overwrite.
func (s *Products) Review(ctx context.Context, verifierID, productID int64, action string) (*models.Product, error) {
	if action != models.ProductApproved && action != models.ProductRejected {
		return nil, fmt.Errorf("%w: invalid action", ErrInvalidInput)
	}

	reviewed, err := s.repo.ReviewProduct(ctx, productID, action, verifierID)
	if err != nil {
		return nil, err
	}
	if !reviewed {
		product, err := s.repo.GetProductByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: product already %s", ErrConflict, product.Status)
	}

	return s.repo.GetProductByID(ctx, productID)
}

// Edit updates a listing's content fields, scoped to the owning seller. A
// miss and a foreign listing are both reported as not found.
func (s *Products) Edit(ctx context.Context, sellerID, productID int64, fields ProductFields) (*models.Product, error) {
	if err := fields.validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProduct(ctx, sellerID, productID,
		fields.Name, fields.Description, fields.Price, fields.Category, fields.FileURL)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: product", ErrNotFound)
	}

	return s.repo.GetProductByID(ctx, productID)
}

// Delete removes a listing, scoped to the owning seller.
func (s *Products) Delete(ctx context.Context, sellerID, productID int64) error {
	deleted, err := s.repo.DeleteProduct(ctx, sellerID, productID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: product", ErrNotFound)
	}
	return nil
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trustissue/trustissue/internal/trustissue/models"
	"github.com/trustissue/trustissue/internal/trustissue/repository"
)

func createAccount(t *testing.T, repo repository.Repository, role models.Role, email string) int64 {
	t.Helper()
	id, err := repo.CreateAccount(context.Background(), &models.Account{
		Role:         role,
		Name:         "test " + string(role),
		Email:        email,
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return id
}

func createSeller(t *testing.T, repo repository.Repository, balance float64) int64 {
	t.Helper()
	id := createAccount(t, repo, models.RoleSeller, "seller@example.com")
	if balance > 0 {
		ok, err := repo.AdjustBalance(context.Background(), id, balance)
		require.NoError(t, err)
		require.True(t, ok)
	}
	return id
}

func createProduct(t *testing.T, repo repository.Repository, sellerID int64) int64 {
	t.Helper()
	id, err := repo.CreateProduct(context.Background(), &models.Product{
		SellerID:    sellerID,
		Name:        "widget",
		Description: "a widget",
		Price:       100,
		Category:    "general",
		Status:      models.ProductPending,
	})
	require.NoError(t, err)
	return id
}

func createApprovedProduct(t *testing.T, repo repository.Repository, sellerID, verifierID int64) int64 {
	t.Helper()
	id := createProduct(t, repo, sellerID)
	ok, err := repo.ReviewProduct(context.Background(), id, models.ProductApproved, verifierID)
	require.NoError(t, err)
	require.True(t, ok)
	return id
}

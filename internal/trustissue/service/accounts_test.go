package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustissue/trustissue/internal/trustissue/models"
	"github.com/trustissue/trustissue/internal/trustissue/repository"
)

func TestSignupLoginRoundTrip(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewAccounts(repo)

	created, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "hunter2", models.RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, created.Role)
	assert.NotEqual(t, "hunter2", created.PasswordHash)

	account, err := svc.Login(context.Background(), models.RoleSeller, "ada@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, account.ID)
	assert.Equal(t, "ada@example.com", account.Email)

	_, err = svc.Login(context.Background(), models.RoleSeller, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Same email, different silo: no such buyer.
	_, err = svc.Login(context.Background(), models.RoleBuyer, "ada@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSignupRestrictions(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewAccounts(repo)

	for _, role := range []models.Role{models.RoleAdmin, models.RoleVerifier, "janitor"} {
		_, err := svc.Signup(context.Background(), "Eve", "eve@example.com", "pw", role)
		assert.ErrorIs(t, err, ErrInvalidInput, "role %s", role)
	}

	_, err := svc.Signup(context.Background(), "", "eve@example.com", "pw", models.RoleBuyer)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSignupDuplicateEmailPerRole(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewAccounts(repo)

	_, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "pw", models.RoleSeller)
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), "Ada again", "ada@example.com", "pw", models.RoleSeller)
	assert.ErrorIs(t, err, ErrConflict)

	// Roles are siloed: the same email is a distinct buyer identity.
	_, err = svc.Signup(context.Background(), "Ada", "ada@example.com", "pw", models.RoleBuyer)
	assert.NoError(t, err)
}

func TestVerifierManagement(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewAccounts(repo)
	adminID := createAccount(t, repo, models.RoleAdmin, "admin@example.com")

	verifier, err := svc.CreateVerifier(context.Background(), adminID, "Vera", "vera@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleVerifier, verifier.Role)
	assert.Equal(t, adminID, verifier.ApprovedBy)

	_, err = svc.CreateVerifier(context.Background(), adminID, "Vera II", "vera@example.com", "pw")
	assert.ErrorIs(t, err, ErrConflict)

	verifiers, err := svc.ListVerifiers(context.Background())
	require.NoError(t, err)
	assert.Len(t, verifiers, 1)

	err = svc.UpdateVerifier(context.Background(), verifier.ID, "Vera Prime", "vera@example.com", "")
	require.NoError(t, err)

	// Password left empty keeps the old credential.
	_, err = svc.Login(context.Background(), models.RoleVerifier, "vera@example.com", "pw")
	require.NoError(t, err)

	err = svc.UpdateVerifier(context.Background(), verifier.ID, "Vera Prime", "vera@example.com", "newpw")
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), models.RoleVerifier, "vera@example.com", "newpw")
	require.NoError(t, err)

	err = svc.UpdateVerifier(context.Background(), 9999, "X", "x@example.com", "")
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.DeleteVerifier(context.Background(), verifier.ID)
	require.NoError(t, err)

	err = svc.DeleteVerifier(context.Background(), verifier.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreditSellerAndBalance(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewAccounts(repo)
	sellerID := createSeller(t, repo, 0)
	buyerID := createAccount(t, repo, models.RoleBuyer, "buyer@example.com")

	err := svc.CreditSeller(context.Background(), sellerID, 250)
	require.NoError(t, err)

	balance, err := svc.Balance(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Equal(t, float64(250), balance)

	err = svc.CreditSeller(context.Background(), sellerID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Only sellers carry a balance.
	err = svc.CreditSeller(context.Background(), buyerID, 10)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Balance(context.Background(), buyerID)
	assert.ErrorIs(t, err, ErrNotFound)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustissue/trustissue/internal/trustissue/models"
	"github.com/trustissue/trustissue/internal/trustissue/repository"
)

func sellerBalance(t *testing.T, repo repository.Repository, sellerID int64) float64 {
	t.Helper()
	account, err := repo.GetAccountByID(context.Background(), sellerID)
	require.NoError(t, err)
	require.NotNil(t, account)
	return account.Balance
}

func TestRequestWithdrawalDebitsBalance(t *testing.T) {
	repo := repository.NewMemoryRepository()
	sellerID := createSeller(t, repo, 100)
	svc := NewWithdrawals(repo, false)

	withdrawal, err := svc.Request(context.Background(), sellerID, 40)
	require.NoError(t, err)

	assert.Equal(t, models.WithdrawalPending, withdrawal.Status)
	assert.Equal(t, float64(40), withdrawal.Amount)
	assert.Equal(t, float64(60), sellerBalance(t, repo, sellerID))

	history, err := svc.ListSeller(context.Background(), sellerID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.WithdrawalPending, history[0].Status)
}

func TestRequestWithdrawalInsufficientBalance(t *testing.T) {
	repo := repository.NewMemoryRepository()
	sellerID := createSeller(t, repo, 100)
	svc := NewWithdrawals(repo, false)

	_, err := svc.Request(context.Background(), sellerID, 150)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Balance untouched, nothing recorded.
	assert.Equal(t, float64(100), sellerBalance(t, repo, sellerID))

	history, err := svc.ListSeller(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRequestWithdrawalInvalidAmount(t *testing.T) {
	repo := repository.NewMemoryRepository()
	sellerID := createSeller(t, repo, 100)
	svc := NewWithdrawals(repo, false)

	for _, amount := range []float64{0, -10} {
		_, err := svc.Request(context.Background(), sellerID, amount)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestReviewWithdrawal(t *testing.T) {
	repo := repository.NewMemoryRepository()
	sellerID := createSeller(t, repo, 100)
	svc := NewWithdrawals(repo, false)

	withdrawal, err := svc.Request(context.Background(), sellerID, 30)
	require.NoError(t, err)

	reviewed, err := svc.Review(context.Background(), withdrawal.ID, models.WithdrawalProcessed)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalProcessed, reviewed.Status)

	// Processing moves no further funds.
	assert.Equal(t, float64(70), sellerBalance(t, repo, sellerID))

	// A decided withdrawal cannot be re-reviewed.
	_, err = svc.Review(context.Background(), withdrawal.ID, models.WithdrawalRejected)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Review(context.Background(), 9999, models.WithdrawalProcessed)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Review(context.Background(), withdrawal.ID, "shredded")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReviewWithdrawalRejectForfeitsByDefault(t *testing.T) {
	repo := repository.NewMemoryRepository()
	sellerID := createSeller(t, repo, 100)
	svc := NewWithdrawals(repo, false)

	withdrawal, err := svc.Request(context.Background(), sellerID, 30)
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), withdrawal.ID, models.WithdrawalRejected)
	require.NoError(t, err)

	assert.Equal(t, float64(70), sellerBalance(t, repo, sellerID))
}

func TestReviewWithdrawalRejectRefundsUnderPolicy(t *testing.T) {
	repo := repository.NewMemoryRepository()
	sellerID := createSeller(t, repo, 100)
	svc := NewWithdrawals(repo, true)

	withdrawal, err := svc.Request(context.Background(), sellerID, 30)
	require.NoError(t, err)
	assert.Equal(t, float64(70), sellerBalance(t, repo, sellerID))

	_, err = svc.Review(context.Background(), withdrawal.ID, models.WithdrawalRejected)
	require.NoError(t, err)

	assert.Equal(t, float64(100), sellerBalance(t, repo, sellerID))
}

func TestReviewWithdrawalProcessNeverRefunds(t *testing.T) {
	repo := repository.NewMemoryRepository()
	sellerID := createSeller(t, repo, 100)
	svc := NewWithdrawals(repo, true)

	withdrawal, err := svc.Request(context.Background(), sellerID, 30)
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), withdrawal.ID, models.WithdrawalProcessed)
	require.NoError(t, err)

	assert.Equal(t, float64(70), sellerBalance(t, repo, sellerID))
}

func TestListPendingWithdrawals(t *testing.T) {
	repo := repository.NewMemoryRepository()
	sellerID := createSeller(t, repo, 100)
	svc := NewWithdrawals(repo, false)

	first, err := svc.Request(context.Background(), sellerID, 10)
	require.NoError(t, err)
	second, err := svc.Request(context.Background(), sellerID, 20)
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), first.ID, models.WithdrawalProcessed)
	require.NoError(t, err)

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
	assert.Equal(t, "seller@example.com", pending[0].SellerEmail)
}

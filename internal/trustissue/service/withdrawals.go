package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/trustissue/trustissue/internal/trustissue/models"
	"github.com/trustissue/trustissue/internal/trustissue/repository"
)

// Withdrawals manages the payout lifecycle. The amount is reserved at
// request time; whether a rejection refunds the reservation is a policy
// decision taken at construction.
type Withdrawals struct {
	repo           repository.Repository
	refundOnReject bool
}

// NewWithdrawals creates a withdrawal lifecycle service
func NewWithdrawals(repo repository.Repository, refundOnReject bool) *Withdrawals {
	return &Withdrawals{repo: repo, refundOnReject: refundOnReject}
}

// Request reserves amount from the seller's balance and records a pending
// withdrawal. The debit and the record are one atomic operation; on
// failure the balance is untouched.
func (s *Withdrawals) Request(ctx context.Context, sellerID int64, amount float64) (*models.Withdrawal, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	id, err := s.repo.CreateWithdrawal(ctx, sellerID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}

	return &models.Withdrawal{
		ID:       id,
		SellerID: sellerID,
		Amount:   amount,
		Status:   models.WithdrawalPending,
	}, nil
}

// Review records the admin decision on a pending withdrawal. Processing
// moves no further funds; rejection refunds the reserved amount only when
// the refund policy is enabled.
func (s *Withdrawals) Review(ctx context.Context, withdrawalID int64, action string) (*models.Withdrawal, error) {
	if action != models.WithdrawalProcessed && action != models.WithdrawalRejected {
		return nil, fmt.Errorf("%w: invalid action", ErrInvalidInput)
	}

	reviewed, err := s.repo.ReviewWithdrawal(ctx, withdrawalID, action, s.refundOnReject)
	if err != nil {
		return nil, err
	}
	if !reviewed {
		withdrawal, err := s.repo.GetWithdrawalByID(ctx, withdrawalID)
		if err != nil {
			return nil, err
		}
		if withdrawal == nil {
			return nil, fmt.Errorf("%w: withdrawal", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: withdrawal already %s", ErrConflict, withdrawal.Status)
	}

	return s.repo.GetWithdrawalByID(ctx, withdrawalID)
}

// ListPending returns the admin queue with seller identity, newest first.
func (s *Withdrawals) ListPending(ctx context.Context) ([]models.Withdrawal, error) {
	return s.repo.ListWithdrawalsByStatus(ctx, models.WithdrawalPending)
}

// ListSeller returns the seller's withdrawal history.
func (s *Withdrawals) ListSeller(ctx context.Context, sellerID int64) ([]models.Withdrawal, error) {
	return s.repo.ListWithdrawalsBySeller(ctx, sellerID)
}

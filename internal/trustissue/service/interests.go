package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/trustissue/trustissue/internal/trustissue/models"
	"github.com/trustissue/trustissue/internal/trustissue/repository"
)

// Interests manages the two-phase interest lifecycle: feature review
// (pending -> verified | rejected) followed, for verified interests, by the
// payment attestation sub-state (pending -> uploaded -> confirmed | rejected).
type Interests struct {
	repo repository.Repository
}

// NewInterests creates an interest lifecycle service
func NewInterests(repo repository.Repository) *Interests {
	return &Interests{repo: repo}
}

// Express records a buyer's interest in an approved product. A buyer may
// express interest in a given product at most once.
func (s *Interests) Express(ctx context.Context, buyerID, productID int64, features []string) (*models.Interest, error) {
	var trimmed []string
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			trimmed = append(trimmed, f)
		}
	}
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: features must be a non-empty list", ErrInvalidInput)
	}

	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product", ErrNotFound)
	}
	if product.Status != models.ProductApproved {
		return nil, fmt.Errorf("%w: product is not open for interest", ErrInvalidInput)
	}

	existing, err := s.repo.GetInterestByProductAndBuyer(ctx, productID, buyerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: already expressed interest in this product", ErrConflict)
	}

	interest := &models.Interest{
		ProductID:         productID,
		BuyerID:           buyerID,
		FeaturesRequested: trimmed,
		Status:            models.InterestPending,
		PaymentStatus:     models.PaymentPending,
	}

	id, err := s.repo.CreateInterest(ctx, interest)
	if err != nil {
		return nil, err
	}
	interest.ID = id

	return interest, nil
}

// Review records the verifier's per-feature attestations. The checks must
// cover the requested features exactly, by name. The derived status is
// verified when at least one feature is present, rejected when all are
// absent. An interest can be reviewed once.
func (s *Interests) Review(ctx context.Context, verifierID, interestID int64, checks []models.FeatureCheck) (*models.Interest, error) {
	interest, err := s.repo.GetInterestByID(ctx, interestID)
	if err != nil {
		return nil, err
	}
	if interest == nil {
		return nil, fmt.Errorf("%w: interest", ErrNotFound)
	}

	status, err := deriveStatus(interest.FeaturesRequested, checks)
	if err != nil {
		return nil, err
	}

	reviewed, err := s.repo.ReviewInterest(ctx, interestID, checks, status, verifierID)
	if err != nil {
		return nil, err
	}
	if !reviewed {
		return nil, fmt.Errorf("%w: interest already reviewed", ErrConflict)
	}

	return s.repo.GetInterestByID(ctx, interestID)
}

// deriveStatus validates that checks cover requested 1:1 by name and
// returns the derived interest status.
func deriveStatus(requested []string, checks []models.FeatureCheck) (string, error) {
	if len(checks) != len(requested) {
		return "", fmt.Errorf("%w: feature status must cover every requested feature", ErrInvalidInput)
	}

	remaining := make(map[string]int, len(requested))
	for _, name := range requested {
		remaining[name]++
	}

	anyPresent := false
	for _, check := range checks {
		if check.Status != models.FeaturePresent && check.Status != models.FeatureAbsent {
			return "", fmt.Errorf("%w: unknown feature status %q", ErrInvalidInput, check.Status)
		}
		if remaining[check.Name] == 0 {
			return "", fmt.Errorf("%w: unexpected feature %q", ErrInvalidInput, check.Name)
		}
		remaining[check.Name]--
		if check.Status == models.FeaturePresent {
			anyPresent = true
		}
	}

	if anyPresent {
		return models.InterestVerified, nil
	}
	return models.InterestRejected, nil
}

// UploadProof stores the buyer's payment proof reference. Valid only on the
// buyer's own verified interest with an undecided payment; anything else is
// reported as not found so interest existence cannot be probed.
func (s *Interests) UploadProof(ctx context.Context, buyerID, interestID int64, proofURL string) (*models.Interest, error) {
	if proofURL == "" {
		return nil, fmt.Errorf("%w: no payment proof uploaded", ErrInvalidInput)
	}

	uploaded, err := s.repo.SetPaymentProof(ctx, interestID, buyerID, proofURL)
	if err != nil {
		return nil, err
	}
	if !uploaded {
		return nil, fmt.Errorf("%w: verified interest", ErrNotFound)
	}

	return s.repo.GetInterestByID(ctx, interestID)
}

// ConfirmPayment records the verifier's payment decision on an uploaded
// proof. Confirmation also completes the interest.
func (s *Interests) ConfirmPayment(ctx context.Context, interestID int64, action string) (*models.Interest, error) {
	if action != models.PaymentConfirmed && action != models.PaymentRejected {
		return nil, fmt.Errorf("%w: invalid action", ErrInvalidInput)
	}

	interest, err := s.repo.GetInterestByID(ctx, interestID)
	if err != nil {
		return nil, err
	}
	if interest == nil {
		return nil, fmt.Errorf("%w: interest", ErrNotFound)
	}

	decided, err := s.repo.SetPaymentStatus(ctx, interestID, action, action == models.PaymentConfirmed)
	if err != nil {
		return nil, err
	}
	if !decided {
		return nil, fmt.Errorf("%w: payment already decided", ErrConflict)
	}

	return s.repo.GetInterestByID(ctx, interestID)
}

// ListForBuyer returns all of the buyer's interests.
func (s *Interests) ListForBuyer(ctx context.Context, buyerID int64) ([]models.Interest, error) {
	return s.repo.ListInterestsByBuyer(ctx, buyerID)
}

// ListVerifiedForBuyer returns the buyer's verified interests, ready for
// payment proof upload.
func (s *Interests) ListVerifiedForBuyer(ctx context.Context, buyerID int64) ([]models.Interest, error) {
	return s.repo.ListInterestsByBuyerAndStatus(ctx, buyerID, models.InterestVerified)
}

// ListPurchases returns the buyer's interests with a decided payment.
func (s *Interests) ListPurchases(ctx context.Context, buyerID int64) ([]models.Interest, error) {
	return s.repo.ListPurchasesByBuyer(ctx, buyerID)
}

// ListPendingReview returns the verifier's feature-review queue.
func (s *Interests) ListPendingReview(ctx context.Context) ([]models.Interest, error) {
	return s.repo.ListInterestsByStatus(ctx, models.InterestPending)
}

// ListUploadedPayments returns the verifier's payment-confirmation queue.
func (s *Interests) ListUploadedPayments(ctx context.Context) ([]models.Interest, error) {
	return s.repo.ListInterestsByPaymentStatus(ctx, models.PaymentUploaded)
}

// ListForSeller returns interests on the seller's products, read-only.
func (s *Interests) ListForSeller(ctx context.Context, sellerID int64) ([]models.Interest, error) {
	return s.repo.ListInterestsBySeller(ctx, sellerID)
}

package models

import (
	"time"
)

// Role identifies which of the four account silos an account belongs to.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVerifier Role = "verifier"
	RoleBuyer    Role = "buyer"
	RoleSeller   Role = "seller"
)

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleVerifier, RoleBuyer, RoleSeller:
		return true
	}
	return false
}

// Account represents a registered account of any role.
// Balance is only meaningful for sellers; ApprovedBy is only set for
// verifiers (the admin that created them).
type Account struct {
	ID           int64     `json:"id"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Balance      float64   `json:"balance,omitempty"`
	ApprovedBy   int64     `json:"approved_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProductStatus constants for the product review lifecycle
const (
	ProductPending  = "pending"
	ProductApproved = "approved"
	ProductRejected = "rejected"
)

// Product represents a seller listing
type Product struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	FileURL     string    `json:"file_url,omitempty"`
	Status      string    `json:"status"`
	ReviewedBy  int64     `json:"reviewed_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined identities, populated by queue/listing queries.
	SellerName    string `json:"seller_name,omitempty"`
	SellerEmail   string `json:"seller_email,omitempty"`
	ReviewerEmail string `json:"reviewer_email,omitempty"`
}

// FeatureStatus constants for per-feature attestations
const (
	FeaturePresent = "present"
	FeatureAbsent  = "absent"
)

// FeatureCheck is a verifier's attestation for one requested feature.
type FeatureCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// InterestStatus constants for the interest review lifecycle
const (
	InterestPending   = "pending"
	InterestVerified  = "verified"
	InterestRejected  = "rejected"
	InterestCompleted = "completed"
)

// PaymentStatus constants for the payment attestation sub-state
const (
	PaymentPending   = "pending"
	PaymentUploaded  = "uploaded"
	PaymentConfirmed = "confirmed"
	PaymentRejected  = "rejected"
)

// Interest links a buyer to a product with a list of required features.
// FeatureStatus entries correspond 1:1 by name to FeaturesRequested once
// the interest has been reviewed.
type Interest struct {
	ID                int64          `json:"id"`
	ProductID         int64          `json:"product_id"`
	BuyerID           int64          `json:"buyer_id"`
	FeaturesRequested []string       `json:"features_requested"`
	FeatureStatus     []FeatureCheck `json:"feature_status,omitempty"`
	Status            string         `json:"status"`
	VerifiedBy        int64          `json:"verified_by,omitempty"`
	PaymentProofURL   string         `json:"payment_proof_url,omitempty"`
	PaymentStatus     string         `json:"payment_status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`

	// Joined identities for queue views.
	BuyerName     string  `json:"buyer_name,omitempty"`
	BuyerEmail    string  `json:"buyer_email,omitempty"`
	ProductName   string  `json:"product_name,omitempty"`
	ProductPrice  float64 `json:"product_price,omitempty"`
	VerifierEmail string  `json:"verifier_email,omitempty"`
}

// WithdrawalStatus constants for the payout lifecycle
const (
	WithdrawalPending   = "pending"
	WithdrawalProcessed = "processed"
	WithdrawalRejected  = "rejected"
)

// Withdrawal represents a seller's request to cash out balance. The
// amount is reserved (debited) when the request is created.
type Withdrawal struct {
	ID        int64     `json:"id"`
	SellerID  int64     `json:"seller_id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	SellerName  string `json:"seller_name,omitempty"`
	SellerEmail string `json:"seller_email,omitempty"`
}

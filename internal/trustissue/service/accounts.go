package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/trustissue/trustissue/internal/trustissue/models"
	"github.com/trustissue/trustissue/internal/trustissue/repository"
	"golang.org/x/crypto/bcrypt"
)

// Accounts manages identities across the four role silos.
type Accounts struct {
	repo repository.Repository
}

// NewAccounts creates an account service
func NewAccounts(repo repository.Repository) *Accounts {
	return &Accounts{repo: repo}
}

// Signup registers a buyer or seller account. Other roles cannot
// self-register: the admin is seeded and verifiers are admin-created.
func (s *Accounts) Signup(ctx context.Context, name, email, password string, role models.Role) (*models.Account, error) {
	if role != models.RoleBuyer && role != models.RoleSeller {
		return nil, fmt.Errorf("%w: signup allowed only for buyer or seller", ErrInvalidInput)
	}

	return s.create(ctx, name, email, password, role, 0)
}

// Login checks credentials for the given role and returns the account.
func (s *Accounts) Login(ctx context.Context, role models.Role, email, password string) (*models.Account, error) {
	if !models.ValidRole(string(role)) {
		return nil, fmt.Errorf("%w: unknown role", ErrInvalidInput)
	}

	account, err := s.repo.GetAccountByEmail(ctx, role, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	return account, nil
}

// CreateVerifier registers a verifier account on behalf of an admin.
func (s *Accounts) CreateVerifier(ctx context.Context, adminID int64, name, email, password string) (*models.Account, error) {
	return s.create(ctx, name, email, password, models.RoleVerifier, adminID)
}

func (s *Accounts) create(ctx context.Context, name, email, password string, role models.Role, approvedBy int64) (*models.Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}

	existing, err := s.repo.GetAccountByEmail(ctx, role, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s with this email already exists", ErrConflict, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Role:         role,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		ApprovedBy:   approvedBy,
	}

	id, err := s.repo.CreateAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	account.ID = id

	return account, nil
}

// ListVerifiers returns all verifier accounts, newest first.
func (s *Accounts) ListVerifiers(ctx context.Context) ([]models.Account, error) {
	return s.repo.ListAccountsByRole(ctx, models.RoleVerifier)
}

// UpdateVerifier updates a verifier's name and email, and re-hashes the
// password when a new one is supplied.
func (s *Accounts) UpdateVerifier(ctx context.Context, id int64, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	var hash string
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hash = string(hashed)
	}

	updated, err := s.repo.UpdateAccount(ctx, models.RoleVerifier, id, name, email, hash)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: verifier", ErrNotFound)
	}
	return nil
}

// DeleteVerifier removes a verifier account.
func (s *Accounts) DeleteVerifier(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeleteAccount(ctx, models.RoleVerifier, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: verifier", ErrNotFound)
	}
	return nil
}

// CreditSeller adds funds to a seller's balance. This is the explicit
// fund-entry path; payment confirmation never credits anything itself.
func (s *Accounts) CreditSeller(ctx context.Context, sellerID int64, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	credited, err := s.repo.AdjustBalance(ctx, sellerID, amount)
	if err != nil {
		return err
	}
	if !credited {
		return fmt.Errorf("%w: seller", ErrNotFound)
	}
	return nil
}

// Balance returns a seller's current balance.
func (s *Accounts) Balance(ctx context.Context, sellerID int64) (float64, error) {
	account, err := s.repo.GetAccountByID(ctx, sellerID)
	if err != nil {
		return 0, err
	}
	if account == nil || account.Role != models.RoleSeller {
		return 0, fmt.Errorf("%w: seller", ErrNotFound)
	}
	return account.Balance, nil
}

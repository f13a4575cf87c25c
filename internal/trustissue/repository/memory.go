package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trustissue/trustissue/internal/trustissue/models"
)

// MemoryRepository is a mutex-guarded in-memory Repository. It mirrors the
// conditional-update semantics of the Postgres implementation and backs the
// service and handler tests.
type MemoryRepository struct {
	mu sync.Mutex

	accounts    map[int64]*models.Account
	products    map[int64]*models.Product
	interests   map[int64]*models.Interest
	withdrawals map[int64]*models.Withdrawal
	nextID      int64
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts:    make(map[int64]*models.Account),
		products:    make(map[int64]*models.Product),
		interests:   make(map[int64]*models.Interest),
		withdrawals: make(map[int64]*models.Withdrawal),
	}
}

func (r *MemoryRepository) newID() int64 {
	r.nextID++
	return r.nextID
}

func (r *MemoryRepository) InitDB(databaseURI string) error { return nil }

func (r *MemoryRepository) Close() error { return nil }

// Account operations

func (r *MemoryRepository) CreateAccount(ctx context.Context, account *models.Account) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := *account
	a.ID = r.newID()
	a.CreatedAt = time.Now()
	r.accounts[a.ID] = &a
	return a.ID, nil
}

func (r *MemoryRepository) GetAccountByEmail(ctx context.Context, role models.Role, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Role == role && a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *MemoryRepository) ListAccountsByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var accounts []models.Account
	for _, a := range r.accounts {
		if a.Role == role {
			accounts = append(accounts, *a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID > accounts[j].ID })
	return accounts, nil
}

func (r *MemoryRepository) UpdateAccount(ctx context.Context, role models.Role, id int64, name, email, passwordHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.Role != role {
		return false, nil
	}
	a.Name = name
	a.Email = email
	if passwordHash != "" {
		a.PasswordHash = passwordHash
	}
	return true, nil
}

func (r *MemoryRepository) DeleteAccount(ctx context.Context, role models.Role, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.Role != role {
		return false, nil
	}
	delete(r.accounts, id)
	return true, nil
}

func (r *MemoryRepository) AdjustBalance(ctx context.Context, sellerID int64, delta float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[sellerID]
	if !ok || a.Role != models.RoleSeller || a.Balance+delta < 0 {
		return false, nil
	}
	a.Balance += delta
	return true, nil
}

// Product operations

func (r *MemoryRepository) CreateProduct(ctx context.Context, product *models.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := *product
	p.ID = r.newID()
	p.Status = models.ProductPending
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.products[p.ID] = &p
	return p.ID, nil
}

func (r *MemoryRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *MemoryRepository) ListProductsBySeller(ctx context.Context, sellerID int64) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var products []models.Product
	for _, p := range r.products {
		if p.SellerID == sellerID {
			products = append(products, *p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID > products[j].ID })
	return products, nil
}

func (r *MemoryRepository) ListProductsByStatus(ctx context.Context, status string) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var products []models.Product
	for _, p := range r.products {
		if status != "" && p.Status != status {
			continue
		}
		copied := *p
		if seller, ok := r.accounts[p.SellerID]; ok {
			copied.SellerName = seller.Name
			copied.SellerEmail = seller.Email
		}
		if reviewer, ok := r.accounts[p.ReviewedBy]; ok {
			copied.ReviewerEmail = reviewer.Email
		}
		products = append(products, copied)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID > products[j].ID })
	return products, nil
}

func (r *MemoryRepository) UpdateProduct(ctx context.Context, sellerID, id int64, name, description string, price float64, category, fileURL string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok || p.SellerID != sellerID {
		return false, nil
	}
	p.Name = name
	p.Description = description
	p.Price = price
	p.Category = category
	if fileURL != "" {
		p.FileURL = fileURL
	}
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *MemoryRepository) DeleteProduct(ctx context.Context, sellerID, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok || p.SellerID != sellerID {
		return false, nil
	}
	delete(r.products, id)
	for iid, interest := range r.interests {
		if interest.ProductID == id {
			delete(r.interests, iid)
		}
	}
	return true, nil
}

func (r *MemoryRepository) ReviewProduct(ctx context.Context, id int64, status string, verifierID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok || p.Status != models.ProductPending {
		return false, nil
	}
	p.Status = status
	p.ReviewedBy = verifierID
	p.UpdatedAt = time.Now()
	return true, nil
}

// Interest operations

func (r *MemoryRepository) CreateInterest(ctx context.Context, interest *models.Interest) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in := *interest
	in.ID = r.newID()
	in.Status = models.InterestPending
	in.PaymentStatus = models.PaymentPending
	in.CreatedAt = time.Now()
	in.UpdatedAt = in.CreatedAt
	in.FeaturesRequested = append([]string(nil), interest.FeaturesRequested...)
	r.interests[in.ID] = &in
	return in.ID, nil
}

func (r *MemoryRepository) GetInterestByID(ctx context.Context, id int64) (*models.Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.interests[id]
	if !ok {
		return nil, nil
	}
	copied := r.copyInterest(in, false)
	return &copied, nil
}

func (r *MemoryRepository) GetInterestByProductAndBuyer(ctx context.Context, productID, buyerID int64) (*models.Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, in := range r.interests {
		if in.ProductID == productID && in.BuyerID == buyerID {
			copied := r.copyInterest(in, false)
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) copyInterest(in *models.Interest, joined bool) models.Interest {
	copied := *in
	copied.FeaturesRequested = append([]string(nil), in.FeaturesRequested...)
	copied.FeatureStatus = append([]models.FeatureCheck(nil), in.FeatureStatus...)
	if joined {
		if buyer, ok := r.accounts[in.BuyerID]; ok {
			copied.BuyerName = buyer.Name
			copied.BuyerEmail = buyer.Email
		}
		if product, ok := r.products[in.ProductID]; ok {
			copied.ProductName = product.Name
			copied.ProductPrice = product.Price
		}
		if verifier, ok := r.accounts[in.VerifiedBy]; ok {
			copied.VerifierEmail = verifier.Email
		}
	}
	return copied
}

func (r *MemoryRepository) listInterestsLocked(match func(*models.Interest) bool) []models.Interest {
	var interests []models.Interest
	for _, in := range r.interests {
		if match(in) {
			interests = append(interests, r.copyInterest(in, true))
		}
	}
	sort.Slice(interests, func(i, j int) bool { return interests[i].ID > interests[j].ID })
	return interests
}

func (r *MemoryRepository) ListInterestsByBuyer(ctx context.Context, buyerID int64) ([]models.Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listInterestsLocked(func(in *models.Interest) bool {
		return in.BuyerID == buyerID
	}), nil
}

func (r *MemoryRepository) ListInterestsByBuyerAndStatus(ctx context.Context, buyerID int64, status string) ([]models.Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listInterestsLocked(func(in *models.Interest) bool {
		return in.BuyerID == buyerID && in.Status == status
	}), nil
}

func (r *MemoryRepository) ListPurchasesByBuyer(ctx context.Context, buyerID int64) ([]models.Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listInterestsLocked(func(in *models.Interest) bool {
		return in.BuyerID == buyerID &&
			(in.PaymentStatus == models.PaymentConfirmed || in.PaymentStatus == models.PaymentRejected)
	}), nil
}

func (r *MemoryRepository) ListInterestsByStatus(ctx context.Context, status string) ([]models.Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listInterestsLocked(func(in *models.Interest) bool {
		return in.Status == status
	}), nil
}

func (r *MemoryRepository) ListInterestsByPaymentStatus(ctx context.Context, paymentStatus string) ([]models.Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listInterestsLocked(func(in *models.Interest) bool {
		return in.PaymentStatus == paymentStatus
	}), nil
}

func (r *MemoryRepository) ListInterestsBySeller(ctx context.Context, sellerID int64) ([]models.Interest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listInterestsLocked(func(in *models.Interest) bool {
		p, ok := r.products[in.ProductID]
		return ok && p.SellerID == sellerID
	}), nil
}

func (r *MemoryRepository) ReviewInterest(ctx context.Context, id int64, checks []models.FeatureCheck, status string, verifierID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.interests[id]
	if !ok || in.Status != models.InterestPending {
		return false, nil
	}
	in.FeatureStatus = append([]models.FeatureCheck(nil), checks...)
	in.Status = status
	in.VerifiedBy = verifierID
	in.UpdatedAt = time.Now()
	return true, nil
}

func (r *MemoryRepository) SetPaymentProof(ctx context.Context, id, buyerID int64, proofURL string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.interests[id]
	if !ok || in.BuyerID != buyerID || in.Status != models.InterestVerified || in.PaymentStatus != models.PaymentPending {
		return false, nil
	}
	in.PaymentProofURL = proofURL
	in.PaymentStatus = models.PaymentUploaded
	in.UpdatedAt = time.Now()
	return true, nil
}

func (r *MemoryRepository) SetPaymentStatus(ctx context.Context, id int64, paymentStatus string, completed bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.interests[id]
	if !ok || in.PaymentStatus != models.PaymentUploaded {
		return false, nil
	}
	in.PaymentStatus = paymentStatus
	if completed {
		in.Status = models.InterestCompleted
	}
	in.UpdatedAt = time.Now()
	return true, nil
}

// Withdrawal operations

func (r *MemoryRepository) CreateWithdrawal(ctx context.Context, sellerID int64, amount float64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seller, ok := r.accounts[sellerID]
	if !ok || seller.Role != models.RoleSeller || seller.Balance < amount {
		return 0, ErrInsufficientBalance
	}
	seller.Balance -= amount

	w := &models.Withdrawal{
		ID:        r.newID(),
		SellerID:  sellerID,
		Amount:    amount,
		Status:    models.WithdrawalPending,
		CreatedAt: time.Now(),
	}
	r.withdrawals[w.ID] = w
	return w.ID, nil
}

func (r *MemoryRepository) GetWithdrawalByID(ctx context.Context, id int64) (*models.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.withdrawals[id]
	if !ok {
		return nil, nil
	}
	copied := *w
	return &copied, nil
}

func (r *MemoryRepository) ListWithdrawalsBySeller(ctx context.Context, sellerID int64) ([]models.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var withdrawals []models.Withdrawal
	for _, w := range r.withdrawals {
		if w.SellerID == sellerID {
			withdrawals = append(withdrawals, *w)
		}
	}
	sort.Slice(withdrawals, func(i, j int) bool { return withdrawals[i].ID > withdrawals[j].ID })
	return withdrawals, nil
}

func (r *MemoryRepository) ListWithdrawalsByStatus(ctx context.Context, status string) ([]models.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var withdrawals []models.Withdrawal
	for _, w := range r.withdrawals {
		if w.Status != status {
			continue
		}
		copied := *w
		if seller, ok := r.accounts[w.SellerID]; ok {
			copied.SellerName = seller.Name
			copied.SellerEmail = seller.Email
		}
		withdrawals = append(withdrawals, copied)
	}
	sort.Slice(withdrawals, func(i, j int) bool { return withdrawals[i].ID > withdrawals[j].ID })
	return withdrawals, nil
}

func (r *MemoryRepository) ReviewWithdrawal(ctx context.Context, id int64, status string, refund bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.withdrawals[id]
	if !ok || w.Status != models.WithdrawalPending {
		return false, nil
	}
	w.Status = status
	if refund && status == models.WithdrawalRejected {
		if seller, ok := r.accounts[w.SellerID]; ok {
			seller.Balance += w.Amount
		}
	}
	return true, nil
}

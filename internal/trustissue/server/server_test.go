package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustissue/trustissue/internal/trustissue/config"
	"github.com/trustissue/trustissue/internal/trustissue/middleware"
	"github.com/trustissue/trustissue/internal/trustissue/models"
	"github.com/trustissue/trustissue/internal/trustissue/repository"
)

const testSecret = "test-secret"

type testEnv struct {
	ts   *httptest.Server
	repo *repository.MemoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		RunAddress: ":0",
		JWTSecret:  testSecret,
		UploadDir:  t.TempDir(),
	}
	repo := repository.NewMemoryRepository()
	srv := NewServer(cfg, repo)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, repo: repo}
}

// do sends a JSON request with an optional bearer token and decodes the
// response body into out when it is non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body, out interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	} else {
		io.Copy(io.Discard, resp.Body)
	}

	return resp
}

// doMultipart posts a multipart form with the given fields and an optional
// file part.
func (e *testEnv) doMultipart(t *testing.T, method, path, token string, fields map[string]string, filePart, fileName string, out interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, form.WriteField(k, v))
	}
	if filePart != "" {
		part, err := form.CreateFormFile(filePart, fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte("file-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())

	req, err := http.NewRequest(method, e.ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", form.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	} else {
		io.Copy(io.Discard, resp.Body)
	}

	return resp
}

// signupAndLogin registers an account through the API and returns its token
// and account ID.
func (e *testEnv) signupAndLogin(t *testing.T, role, email, password string) (string, int64) {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     "test " + role,
		"email":    email,
		"password": password,
		"role":     role,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return e.login(t, role, email, password)
}

func (e *testEnv) login(t *testing.T, role, email, password string) (string, int64) {
	t.Helper()

	var body struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	resp := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
		"role":     role,
	}, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body.Token)
	require.Equal(t, role, body.Role)

	claims, err := middleware.ParseToken(body.Token, testSecret)
	require.NoError(t, err)
	require.Equal(t, role, claims.Role)
	require.Equal(t, email, claims.Email)

	return body.Token, claims.AccountID
}

// adminToken seeds an admin directly in the repository and mints its token.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()

	id, err := e.repo.CreateAccount(context.Background(), &models.Account{
		Role:         models.RoleAdmin,
		Name:         "admin",
		Email:        "admin@example.com",
		PasswordHash: "x",
	})
	require.NoError(t, err)

	token, err := middleware.GenerateToken(&models.Account{
		ID:    id,
		Role:  models.RoleAdmin,
		Email: "admin@example.com",
	}, testSecret)
	require.NoError(t, err)
	return token
}

func TestMarketplaceEndToEnd(t *testing.T) {
	e := newTestEnv(t)

	sellerToken, sellerID := e.signupAndLogin(t, "seller", "seller@example.com", "pw")
	buyerToken, _ := e.signupAndLogin(t, "buyer", "buyer@example.com", "pw")
	admin := e.adminToken(t)

	// Admin creates the verifier, who then logs in.
	resp := e.do(t, http.MethodPost, "/api/admin/create-verifier", admin, map[string]string{
		"name":     "Vera",
		"email":    "vera@example.com",
		"password": "pw",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	verifierToken, _ := e.login(t, "verifier", "vera@example.com", "pw")

	// Seller submits a listing.
	var product models.Product
	resp = e.doMultipart(t, http.MethodPost, "/api/seller/upload-product", sellerToken, map[string]string{
		"name":        "headphones",
		"description": "noise cancelling",
		"price":       "100",
		"category":    "audio",
	}, "", "", &product)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.ProductPending, product.Status)

	// Verifier sees it in the queue and approves.
	var queue []models.Product
	resp = e.do(t, http.MethodGet, "/api/verifier/pending-products", verifierToken, nil, &queue)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, queue, 1)

	var approved models.Product
	resp = e.do(t, http.MethodPatch, fmt.Sprintf("/api/verifier/verify/%d", product.ID), verifierToken,
		map[string]string{"action": "approved"}, &approved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.ProductApproved, approved.Status)

	// Re-review is refused.
	resp = e.do(t, http.MethodPatch, fmt.Sprintf("/api/verifier/verify/%d", product.ID), verifierToken,
		map[string]string{"action": "rejected"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Buyer browses the catalog and expresses interest.
	var catalog []models.Product
	resp = e.do(t, http.MethodGet, "/api/buyer/approved-products", buyerToken, nil, &catalog)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, catalog, 1)

	var interest models.Interest
	resp = e.do(t, http.MethodPost, "/api/buyer/express-interest", buyerToken, map[string]interface{}{
		"product_id": product.ID,
		"features":   []string{"x"},
	}, &interest)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.InterestPending, interest.Status)

	// At most one interest per (product, buyer).
	resp = e.do(t, http.MethodPost, "/api/buyer/express-interest", buyerToken, map[string]interface{}{
		"product_id": product.ID,
		"features":   []string{"y"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Verifier attests the requested feature is present.
	var reviewed models.Interest
	resp = e.do(t, http.MethodPatch, fmt.Sprintf("/api/verifier/verify-interest/%d", interest.ID), verifierToken,
		map[string]interface{}{
			"feature_status": []map[string]string{{"name": "x", "status": "present"}},
		}, &reviewed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.InterestVerified, reviewed.Status)

	// Buyer uploads payment proof.
	var uploaded models.Interest
	resp = e.doMultipart(t, http.MethodPost, fmt.Sprintf("/api/buyer/upload-payment/%d", interest.ID), buyerToken,
		nil, "proof", "receipt.png", &uploaded)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.PaymentUploaded, uploaded.PaymentStatus)
	assert.NotEmpty(t, uploaded.PaymentProofURL)

	// Verifier confirms the payment, completing the interest.
	var confirmed models.Interest
	resp = e.do(t, http.MethodPatch, fmt.Sprintf("/api/verifier/confirm-payment/%d", interest.ID), verifierToken,
		map[string]string{"action": "confirmed"}, &confirmed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.PaymentConfirmed, confirmed.PaymentStatus)
	assert.Equal(t, models.InterestCompleted, confirmed.Status)

	// Funds enter via the explicit admin credit path.
	resp = e.do(t, http.MethodPost, "/api/admin/credit-seller", admin, map[string]interface{}{
		"seller_id": sellerID,
		"amount":    100,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var balance map[string]float64
	resp = e.do(t, http.MethodGet, "/api/seller/balance", sellerToken, nil, &balance)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(100), balance["balance"])

	// Seller withdraws; the amount is reserved immediately.
	var withdrawal models.Withdrawal
	resp = e.do(t, http.MethodPost, "/api/seller/withdraw", sellerToken,
		map[string]float64{"amount": 40}, &withdrawal)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.WithdrawalPending, withdrawal.Status)

	resp = e.do(t, http.MethodGet, "/api/seller/balance", sellerToken, nil, &balance)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(60), balance["balance"])

	// Requests beyond the remaining balance are refused.
	resp = e.do(t, http.MethodPost, "/api/seller/withdraw", sellerToken,
		map[string]float64{"amount": 100}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Admin processes the pending withdrawal, exactly once.
	var pending []models.Withdrawal
	resp = e.do(t, http.MethodGet, "/api/admin/withdrawals", admin, nil, &pending)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, pending, 1)

	resp = e.do(t, http.MethodPatch, fmt.Sprintf("/api/admin/withdrawals/%d", withdrawal.ID), admin,
		map[string]string{"action": "processed"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPatch, fmt.Sprintf("/api/admin/withdrawals/%d", withdrawal.ID), admin,
		map[string]string{"action": "rejected"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoleGuards(t *testing.T) {
	e := newTestEnv(t)

	buyerToken, _ := e.signupAndLogin(t, "buyer", "buyer@example.com", "pw")

	// No token.
	resp := e.do(t, http.MethodGet, "/api/seller/products", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong role.
	resp = e.do(t, http.MethodGet, "/api/seller/products", buyerToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Forged token.
	resp = e.do(t, http.MethodGet, "/api/buyer/my-interests", "not-a-token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignupRejectsPrivilegedRoles(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     "Mallory",
		"email":    "mallory@example.com",
		"password": "pw",
		"role":     "admin",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

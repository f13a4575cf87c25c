package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustissue/trustissue/internal/trustissue/models"
)

const testSecret = "test-secret"

func sellerAccount() *models.Account {
	return &models.Account{
		ID:    42,
		Role:  models.RoleSeller,
		Email: "seller@example.com",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(sellerAccount(), testSecret)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.AccountID)
	assert.Equal(t, "seller@example.com", claims.Email)
	assert.Equal(t, string(models.RoleSeller), claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(sellerAccount(), testSecret)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	claims := Claims{
		AccountID: 42,
		Email:     "seller@example.com",
		Role:      string(models.RoleSeller),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseToken(signed, testSecret)
	assert.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	var gotIdentity Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		gotIdentity = identity
		w.WriteHeader(http.StatusOK)
	})

	guard := RequireRole(models.RoleSeller, testSecret)(next)

	sellerToken, err := GenerateToken(sellerAccount(), testSecret)
	require.NoError(t, err)

	buyerToken, err := GenerateToken(&models.Account{ID: 7, Role: models.RoleBuyer, Email: "b@example.com"}, testSecret)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "missing token", header: "", wantCode: http.StatusUnauthorized},
		{name: "malformed token", header: "Bearer not-a-token", wantCode: http.StatusUnauthorized},
		{name: "wrong role", header: "Bearer " + buyerToken, wantCode: http.StatusForbidden},
		{name: "matching role", header: "Bearer " + sellerToken, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			guard.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	assert.Equal(t, int64(42), gotIdentity.AccountID)
	assert.Equal(t, models.RoleSeller, gotIdentity.Role)
}

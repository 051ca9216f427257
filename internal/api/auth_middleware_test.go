package api

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"money-manager-backend/internal/models"
	"money-manager-backend/internal/service"
)

func issueToken(t *testing.T, privateKey *rsa.PrivateKey, username string, isAdmin bool) string {
	t.Helper()

	tokenService := service.NewTokenService(privateKey, filepath.Join(t.TempDir(), "created_tokens.csv"))

	issuerClaims := &models.AuthTokenClaims{
		RegisteredClaims: &jwt.RegisteredClaims{ID: "admin-1"},
		Name:             "admin",
		IsAdmin:          true,
	}

	token, err := tokenService.GenerateToken(ContextWithClaims(t.Context(), issuerClaims), username, isAdmin)
	require.NoError(t, err)

	return token
}

func TestJWTAuthRoundTrip(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token := issueToken(t, privateKey, "tester", false)

	middleware := NewAuthMiddleware(&privateKey.PublicKey, zap.NewNop().Sugar(), nil)

	var seen *models.AuthTokenClaims
	handler := middleware.JWTAuth(func(_ http.ResponseWriter, request *http.Request) {
		seen = models.ClaimsFromContext(request.Context())
	})

	request := httptest.NewRequest(http.MethodGet, "/api/wallets", nil)
	request.Header.Set("Authorization", "Bearer "+token)

	handler.ServeHTTP(httptest.NewRecorder(), request)

	require.NotNil(t, seen)
	assert.Equal(t, "tester", seen.Name)
	assert.NotEmpty(t, seen.ID)
	assert.False(t, seen.IsAdmin)
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	middleware := NewAuthMiddleware(&privateKey.PublicKey, zap.NewNop().Sugar(), nil)

	handler := middleware.JWTAuth(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be called")
	})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/wallets", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.JSONEq(t, `{"status": "fail", "message": "unauthorized"}`, recorder.Body.String())
}

func TestJWTAuthRejectsWrongKey(t *testing.T) {
	signingKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token := issueToken(t, signingKey, "tester", false)

	middleware := NewAuthMiddleware(&otherKey.PublicKey, zap.NewNop().Sugar(), nil)

	handler := middleware.JWTAuth(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be called")
	})

	request := httptest.NewRequest(http.MethodGet, "/api/wallets", nil)
	request.Header.Set("Authorization", "Bearer "+token)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestJWTAuthRejectsRevokedToken(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token := issueToken(t, privateKey, "tester", false)

	claims, err := NewAuthMiddleware(&privateKey.PublicKey, zap.NewNop().Sugar(), nil).
		Check("Bearer " + token)
	require.NoError(t, err)

	middleware := NewAuthMiddleware(&privateKey.PublicKey, zap.NewNop().Sugar(), []string{claims.ID})

	handler := middleware.JWTAuth(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be called")
	})

	request := httptest.NewRequest(http.MethodGet, "/api/wallets", nil)
	request.Header.Set("Authorization", "Bearer "+token)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.JSONEq(t, `{"status": "fail", "message": "forbidden"}`, recorder.Body.String())
}

func TestGenerateTokenRequiresAdmin(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tokenService := service.NewTokenService(privateKey, filepath.Join(t.TempDir(), "created_tokens.csv"))

	userClaims := &models.AuthTokenClaims{
		RegisteredClaims: &jwt.RegisteredClaims{ID: "user-1"},
		Name:             "user",
	}

	_, err = tokenService.GenerateToken(ContextWithClaims(t.Context(), userClaims), "newcomer", false)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = tokenService.GenerateToken(t.Context(), "newcomer", false)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

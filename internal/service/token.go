package service

import (
	"context"
	"crypto/rsa"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"money-manager-backend/internal/models"
)

type TokenService struct {
	privateKey       *rsa.PrivateKey
	keysListFilePath string
}

func NewTokenService(privateKey *rsa.PrivateKey, filepath string) *TokenService {
	return &TokenService{
		privateKey:       privateKey,
		keysListFilePath: filepath,
	}
}

// GenerateToken выпускает токен нового пользователя. Выпускать токены может
// только администратор; id из claims нового токена становится userID во всех
// хранилищах.
func (t *TokenService) GenerateToken(ctx context.Context, username string, isAdmin bool) (string, error) {
	issuerData := models.ClaimsFromContext(ctx)

	if issuerData == nil {
		return "", fmt.Errorf("%w: issuer claims are empty", models.ErrUnauthorized)
	}

	if !issuerData.IsAdmin {
		return "", fmt.Errorf("%w: issuer is not admin", models.ErrForbidden)
	}

	claims := models.AuthTokenClaims{
		RegisteredClaims: &jwt.RegisteredClaims{
			Issuer: issuerData.Name,
			ID:     uuid.NewString(),
		},
		Name:    username,
		IsAdmin: isAdmin,
	}

	claims.IssuedAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)

	tokenString, err := token.SignedString(t.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	// Журнал выпущенных токенов для ручного отзыва
	creationLog := fmt.Sprintf("%s;%s;%s;%t\n", issuerData.Name, username, claims.ID, isAdmin)
	if err := appendFile(t.keysListFilePath, []byte(creationLog), 0600); err != nil {
		return "", fmt.Errorf("failed to log created token: %w", err)
	}

	return tokenString, nil
}

func appendFile(filename string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, perm)
	if err != nil {
		return err
	}

	n, err := f.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}

	if errClose := f.Close(); err == nil {
		err = errClose
	}

	return err
}

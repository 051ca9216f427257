package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKeyPair(t *testing.T) (publicHex, privateHex string, key *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	return hex.EncodeToString(publicPEM), hex.EncodeToString(privatePEM), key
}

func TestParsePubKey(t *testing.T) {
	publicHex, _, key := generateKeyPair(t)

	parsed, err := ParsePubKey(publicHex)
	require.NoError(t, err)

	publicKey, ok := parsed.(rsa.PublicKey)
	require.True(t, ok)
	assert.True(t, key.PublicKey.Equal(&publicKey))
}

func TestParsePubKeyErrors(t *testing.T) {
	_, err := ParsePubKey("not-hex")
	assert.Error(t, err)

	// Валидный hex, но не PEM
	_, err = ParsePubKey(hex.EncodeToString([]byte("garbage")))
	assert.ErrorIs(t, err, errDecodePem)
}

func TestParsePrivateKey(t *testing.T) {
	_, privateHex, key := generateKeyPair(t)

	parsed, err := ParsePrivateKey(privateHex)
	require.NoError(t, err)

	privateKey, ok := parsed.(rsa.PrivateKey)
	require.True(t, ok)
	assert.True(t, key.Equal(&privateKey))
}

func TestParsePrivateKeyErrors(t *testing.T) {
	_, err := ParsePrivateKey("zz")
	assert.Error(t, err)

	_, err = ParsePrivateKey(hex.EncodeToString([]byte("garbage")))
	assert.ErrorIs(t, err, errDecodePem)
}

func TestParseRSAPublicKeyRejectsNonRSA(t *testing.T) {
	_, err := ParseRSAPublicKey([]byte("not a pem at all"))
	assert.ErrorIs(t, err, errDecodePem)
}

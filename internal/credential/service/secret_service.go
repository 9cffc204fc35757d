package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	apperrors "github.com/allisson/actiongate/internal/errors"
)

// secretAlphabet is the character set for generated secrets. Alphanumeric
// only, no separators, so secrets survive any transport encoding unchanged.
const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultSecretLength is used when the configured length is not positive.
const DefaultSecretLength = 48

// secretService implements SecretService using SHA-256 for secret hashing.
type secretService struct {
	length int
}

// GenerateSecret creates a new cryptographically secure random secret of the
// configured length. Each character is drawn uniformly from the alphanumeric
// alphabet via crypto/rand. Returns the plain secret and its SHA-256 hash.
func (s *secretService) GenerateSecret() (plainSecret string, secretHash string, err error) {
	max := big.NewInt(int64(len(secretAlphabet)))
	secret := make([]byte, s.length)

	for i := range secret {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", "", apperrors.Wrap(err, "failed to generate random secret")
		}
		secret[i] = secretAlphabet[n.Int64()]
	}

	plainSecret = string(secret)
	secretHash = s.HashSecret(plainSecret)

	return plainSecret, secretHash, nil
}

// HashSecret hashes a plain text secret using SHA-256.
// Returns the hash as a hexadecimal string.
func (s *secretService) HashSecret(plainSecret string) string {
	hash := sha256.Sum256([]byte(plainSecret))
	return hex.EncodeToString(hash[:])
}

// NewSecretService creates a SecretService generating secrets of the given
// length. Non-positive lengths fall back to DefaultSecretLength.
func NewSecretService(length int) SecretService {
	if length <= 0 {
		length = DefaultSecretLength
	}
	return &secretService{length: length}
}

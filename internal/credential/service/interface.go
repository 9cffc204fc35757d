// Package service provides credential secret generation and hashing.
package service

// SecretService generates and hashes bearer credential secrets.
type SecretService interface {
	// GenerateSecret creates a new high-entropy random secret and returns it
	// together with its SHA-256 hash.
	GenerateSecret() (plainSecret string, secretHash string, err error)

	// HashSecret hashes a plain text secret for lookup-by-hash.
	HashSecret(plainSecret string) string
}

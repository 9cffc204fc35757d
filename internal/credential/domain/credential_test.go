package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredential_IsExpired(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	t.Run("nil expiry never expires", func(t *testing.T) {
		c := &Credential{ExpiresAt: nil}
		assert.False(t, c.IsExpired(now))
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		c := &Credential{ExpiresAt: &past}
		assert.True(t, c.IsExpired(now))
	})

	t.Run("future expiry is not expired", func(t *testing.T) {
		c := &Credential{ExpiresAt: &future}
		assert.False(t, c.IsExpired(now))
	})
}

func TestCredential_CanAuthenticate(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		isActive  bool
		expiresAt *time.Time
		expected  bool
	}{
		{name: "active without expiry", isActive: true, expiresAt: nil, expected: true},
		{name: "active with future expiry", isActive: true, expiresAt: &future, expected: true},
		{name: "active but expired", isActive: true, expiresAt: &past, expected: false},
		{name: "revoked", isActive: false, expiresAt: nil, expected: false},
		{name: "revoked and expired", isActive: false, expiresAt: &past, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Credential{IsActive: tt.isActive, ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.expected, c.CanAuthenticate(now))
		})
	}
}

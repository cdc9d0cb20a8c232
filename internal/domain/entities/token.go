package entities

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RefreshToken is the server-side record backing a refresh cookie. The secret
// itself is never stored, only a bcrypt hash of it.
type RefreshToken struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsExpired checks if the refresh record has passed its expiry
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// Usable returns true if the record can still mint access tokens
func (t *RefreshToken) Usable() bool {
	return !t.Revoked && !t.IsExpired()
}

// VerifySecret checks a presented refresh secret against the stored hash
func (t *RefreshToken) VerifySecret(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(t.TokenHash), []byte(secret)) == nil
}

// HashRefreshSecret hashes a refresh secret for storage
func HashRefreshSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

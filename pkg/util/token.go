package util

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

const (
	EmailVerificationTTL = 24 * time.Hour
	PasswordResetTTL     = time.Hour
)

// GenerateVerificationToken returns a UUID token and its expiry
func GenerateVerificationToken(now time.Time) (string, time.Time) {
	return uuid.NewString(), now.Add(EmailVerificationTTL)
}

// GeneratePasswordResetToken returns 32 random bytes hex encoded and its expiry
func GeneratePasswordResetToken(now time.Time) (string, time.Time, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	return hex.EncodeToString(buf), now.Add(PasswordResetTTL), nil
}

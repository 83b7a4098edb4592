package services

import (
	"crypto/rand"
	"encoding/base64"
)

// CSRF state nonce length in bytes before encoding.
const stateLength = 32

// generateState creates a random state parameter for CSRF protection.
// The nonce is single use: it is stored when the flow starts and consumed
// on the first verification, success or failure.
func generateState() (string, error) {
	bytes := make([]byte, stateLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

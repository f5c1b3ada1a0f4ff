package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/mzotova/threadline/internal/common/constants"
)

func generateSessionToken() (string, error) {
	b := make([]byte, constants.SessionTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// hashSessionToken keys the digest with the configured session secret so a
// leaked sessions table cannot be replayed without the secret.
func hashSessionToken(secret []byte, token string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

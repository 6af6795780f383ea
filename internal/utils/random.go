package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Token and code lengths. Session and verify tokens are long enough to be
// unguessable; the verify code is short enough to relay by hand.
const (
	TokenLength      = 256
	VerifyCodeLength = 6
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomAlphanumeric returns a cryptographically random alphanumeric
// string of length n.
func RandomAlphanumeric(n int) (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		buf[i] = tokenAlphabet[idx.Int64()]
	}
	return string(buf), nil
}

// NewToken mints a high-entropy bearer credential.
func NewToken() (string, error) {
	return RandomAlphanumeric(TokenLength)
}

// NewVerifyCode mints a short human-relayable verification code.
func NewVerifyCode() (string, error) {
	return RandomAlphanumeric(VerifyCodeLength)
}

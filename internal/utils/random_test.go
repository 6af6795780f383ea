package utils

import (
	"strings"
	"testing"
)

func TestNewToken(t *testing.T) {
	token, err := NewToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if len(token) != TokenLength {
		t.Errorf("Expected token length %d, got %d", TokenLength, len(token))
	}
	for _, r := range token {
		if !strings.ContainsRune(tokenAlphabet, r) {
			t.Errorf("Token contains character outside alphabet: %q", r)
		}
	}
}

func TestNewVerifyCode(t *testing.T) {
	code, err := NewVerifyCode()
	if err != nil {
		t.Fatalf("Failed to generate verify code: %v", err)
	}
	if len(code) != VerifyCodeLength {
		t.Errorf("Expected code length %d, got %d", VerifyCodeLength, len(code))
	}
}

func TestTokensAreUnique(t *testing.T) {
	first, err := NewToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	second, err := NewToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if first == second {
		t.Error("Expected consecutive tokens to differ")
	}
}

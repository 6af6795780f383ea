package utils

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == "hunter22" {
		t.Error("Expected hash to differ from the plaintext password")
	}

	if !CheckPasswordHash("hunter22", hash) {
		t.Error("Expected correct password to match its hash")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("Expected wrong password to be rejected")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	second, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if first == second {
		t.Error("Expected two hashes of the same password to differ")
	}
}

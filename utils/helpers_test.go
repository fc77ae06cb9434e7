package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("vola-sekoly-2025")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "vola-sekoly-2025" {
		t.Fatal("hash must not equal the plain password")
	}

	// CheckPassword reports a mismatch through its error return
	if err := CheckPassword("vola-sekoly-2025", hash); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := CheckPassword("wrong-password", hash); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"admin", "staff", "teacher", "student"} {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false", role)
		}
	}
	if IsValidRole("principal") {
		t.Error(`IsValidRole("principal") = true`)
	}
}

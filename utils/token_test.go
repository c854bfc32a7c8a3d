package utils

import (
	"testing"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken(42, "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.ID == "" {
		t.Error("token has no id; logout cannot revoke it")
	}
	if claims.ExpiresAt == nil {
		t.Error("token has no expiry")
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	first, err := GenerateToken(1, "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	second, err := GenerateToken(1, "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	firstClaims, _ := ParseToken(first)
	secondClaims, _ := ParseToken(second)
	if firstClaims.ID == secondClaims.ID {
		t.Errorf("two tokens share id %q", firstClaims.ID)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateToken(1, "alice")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	t.Setenv("JWT_SECRET", "a-different-secret")
	if _, err := ParseToken(token); err == nil {
		t.Error("ParseToken() accepted a token signed with another secret")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ParseToken(bad); err == nil {
			t.Errorf("ParseToken(%q) accepted garbage", bad)
		}
	}
}

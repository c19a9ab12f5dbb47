package auth

import (
	"testing"
	"time"

	"github.com/gasworks/servicedesk/internal/domain"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", 5)

	token, exp, err := tm.GenerateToken("user-1", domain.RoleStaff)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry should be in the future")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected user id %q", claims.UserID)
	}
	if claims.Role != domain.RoleStaff {
		t.Fatalf("unexpected role %q", claims.Role)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 5)
	verifier := NewTokenManager("secret-b", 5)

	token, _, err := issuer.GenerateToken("user-1", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("token signed with another secret should fail")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	if _, err := tm.ParseToken("not-a-jwt"); err == nil {
		t.Fatal("garbage token should fail")
	}
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("hash should not equal the plaintext")
	}
	if err := ComparePassword(hash, "hunter2"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password should not match")
	}
}

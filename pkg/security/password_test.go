package security_test

import (
	"testing"

	"github.com/avolkov/orderflow-backend/pkg/config"
	"github.com/avolkov/orderflow-backend/pkg/security"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		MinLength:        8,
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestValidateStrengthEnforcesMinLength(t *testing.T) {
	cfg := testPasswordConfig()
	if err := security.ValidateStrength("short", cfg); err == nil {
		t.Fatal("expected short password to be rejected")
	}
	if err := security.ValidateStrength("long-enough-password", cfg); err != nil {
		t.Fatalf("expected password to pass: %v", err)
	}
}

func TestGenerateTokenProducesUniqueKeys(t *testing.T) {
	first, err := security.GenerateToken(40)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if len(first) != 40 {
		t.Fatalf("unexpected token length %d", len(first))
	}

	second, err := security.GenerateToken(40)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if first == second {
		t.Fatal("two generated tokens collided")
	}
}

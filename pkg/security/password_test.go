package security_test

import (
	"strings"
	"testing"

	"github.com/vastralane/storefront-backend/pkg/config"
	"github.com/vastralane/storefront-backend/pkg/security"
)

func argonTestConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := security.HashPassword("kurta-set-fall-2026", argonTestConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("hash %q is not argon2id encoded", hash)
	}

	ok, err := security.VerifyPassword("kurta-set-fall-2026", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("correct password did not verify")
	}
}

func TestPasswordRejectsWrongInput(t *testing.T) {
	hash, err := security.HashPassword("original", argonTestConfig())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	ok, err := security.VerifyPassword("Original", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatal("case-flipped password verified")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	cfg := argonTestConfig()
	first, err := security.HashPassword("same-input", cfg)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := security.HashPassword("same-input", cfg)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password matched, salt is not random")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, bad := range []string{"", "not-a-hash", "$argon2id$v=19$garbage"} {
		if _, err := security.VerifyPassword("irrelevant", bad); err == nil {
			t.Fatalf("expected error for malformed hash %q", bad)
		}
	}
}

package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newEdManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	m, err := NewManager(Config{
		AccessTTL:     ttl,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		Issuer:        "authgate-test",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestIssueAndVerify(t *testing.T) {
	m := newEdManager(t, 15*time.Minute)

	token, err := m.Issue("alice@example.com", "USER")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("expected email claim, got %s", claims.Email)
	}
	if claims.Role != "USER" {
		t.Fatalf("expected role claim, got %s", claims.Role)
	}
}

func TestVerifyHS256RoundTrip(t *testing.T) {
	m, err := NewManager(Config{
		AccessTTL:     15 * time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("test-secret"),
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := m.Issue("alice@example.com", "ADMIN")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Role != "ADMIN" {
		t.Fatalf("expected ADMIN role, got %s", claims.Role)
	}
}

func TestVerifyExpiredTokenRejected(t *testing.T) {
	m := newEdManager(t, time.Nanosecond)

	token, err := m.Issue("alice@example.com", "USER")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	if _, err := m.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestVerifyWrongKeyRejected(t *testing.T) {
	issuer := newEdManager(t, 15*time.Minute)
	verifier := newEdManager(t, 15*time.Minute)

	token, err := issuer.Issue("alice@example.com", "USER")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign key, got %v", err)
	}
}

func TestVerifyTamperedTokenRejected(t *testing.T) {
	m := newEdManager(t, 15*time.Minute)

	token, err := m.Issue("alice@example.com", "USER")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	if _, err := m.Verify(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}
}

func TestVerifyRejectsAlgorithmConfusion(t *testing.T) {
	// A token signed with HS256 must not pass an Ed25519 verifier even if an
	// attacker knows the public key bytes.
	m := newEdManager(t, 15*time.Minute)

	pub, ok := m.verifyKey.(ed25519.PublicKey)
	if !ok {
		t.Fatalf("expected ed25519 verify key, got %T", m.verifyKey)
	}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: "alice@example.com",
		Role:  "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "authgate-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := forged.SignedString([]byte(pub))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := m.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for confused algorithm, got %v", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	issuer, err := NewManager(Config{
		AccessTTL:     15 * time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		Issuer:        "someone-else",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	verifier, err := NewManager(Config{
		AccessTTL:     15 * time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		Issuer:        "authgate-test",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := issuer.Issue("alice@example.com", "USER")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong issuer, got %v", err)
	}
}

func TestNewManagerSeedKeyAccepted(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		t.Fatalf("rand.Read failed: %v", err)
	}

	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    seed,
	})
	if err != nil {
		t.Fatalf("NewManager failed for seed key: %v", err)
	}

	token, err := m.Issue("alice@example.com", "USER")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := m.Verify(token); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	if _, err := NewManager(Config{SigningMethod: MethodHS256, PrivateKey: []byte("x")}); err == nil {
		t.Fatal("expected error for zero TTL")
	}
	if _, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodHS256}); err == nil {
		t.Fatal("expected error for missing hs256 secret")
	}
	if _, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: "rs256"}); err == nil {
		t.Fatal("expected error for unsupported method")
	}
	if _, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519, PrivateKey: []byte("short")}); err == nil {
		t.Fatal("expected error for malformed ed25519 key")
	}
}

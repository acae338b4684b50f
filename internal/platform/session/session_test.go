package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret, subject, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestVerifyReturnsCallerIdentity(t *testing.T) {
	verifier := NewVerifier("test-secret")

	identity, err := verifier.Verify(signToken(t, "test-secret", "user-77", ""))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if identity.UserID != "user-77" || identity.Admin {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestVerifyDetectsAdminRole(t *testing.T) {
	verifier := NewVerifier("test-secret")

	identity, err := verifier.Verify(signToken(t, "test-secret", "mod-1", AdminRole))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !identity.Admin {
		t.Fatal("expected admin identity")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	verifier := NewVerifier("test-secret")

	if _, err := verifier.Verify(signToken(t, "other-secret", "user-77", "")); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	verifier := NewVerifier("test-secret")

	if _, err := verifier.Verify(signToken(t, "test-secret", "", AdminRole)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for empty subject, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier := NewVerifier("test-secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-77",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	if _, err := verifier.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for expired claims, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	verifier := NewVerifier("test-secret")

	if _, err := verifier.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

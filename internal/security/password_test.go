package security

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPasswordIsSalted(t *testing.T) {
	a, err := HashPassword("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	b, err := HashPassword("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if a == b {
		t.Fatalf("expected different digests for the same plaintext")
	}

	if a == "p1" {
		t.Fatalf("hash must not equal plaintext")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if err := CheckPassword(hash, "correct horse"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}

	err = CheckPassword(hash, "battery staple")
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("got %v, want ErrPasswordMismatch", err)
	}
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	err := CheckPassword("not-a-bcrypt-hash", "whatever")
	if err == nil {
		t.Fatalf("expected error for malformed hash")
	}

	if errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("malformed hash should not be reported as a mismatch")
	}
}

func TestHashPasswordRejectsOverlongInput(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Fatalf("72 bytes should hash, got %v", err)
	}

	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("got %v, want ErrPasswordTooLong", err)
	}

	// multi-byte runes count by bytes
	_, err = HashPassword(strings.Repeat("é", 37))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("got %v, want ErrPasswordTooLong for 74 bytes", err)
	}
}

func TestCheckPasswordOverlongIsMismatch(t *testing.T) {
	hash, err := HashPassword("short")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	err = CheckPassword(hash, strings.Repeat("a", MaxPasswordBytes+1))
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("got %v, want ErrPasswordMismatch", err)
	}
}

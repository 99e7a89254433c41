package utils

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "secret1") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "secret2") || VerifyPassword("not-a-hash", "secret1") {
		t.Fatal("wrong password or malformed hash accepted")
	}
}

func TestHashPasswordByteLimit(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("a", MaxPasswordBytes), bcrypt.MinCost); err != nil {
		t.Fatalf("72 bytes: %v", err)
	}
	// "é" is two bytes, so 37 of them exceed the limit
	for _, pw := range []string{strings.Repeat("a", MaxPasswordBytes+1), strings.Repeat("é", 37)} {
		if _, err := HashPassword(pw, bcrypt.MinCost); !errors.Is(err, ErrPasswordTooLong) {
			t.Errorf("%d bytes: err = %v", len(pw), err)
		}
	}
}

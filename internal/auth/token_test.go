package auth

import (
	"testing"
)

const testSecret = "test-secret-at-least-16-chars!!"

func TestTokenGenerateAndValidate(t *testing.T) {
	ts, err := NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, err := ts.Generate("session-abc-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	sessionID, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if sessionID != "session-abc-123" {
		t.Errorf("sessionID = %q, want %q", sessionID, "session-abc-123")
	}
}

func TestTokenValidate_RejectsTampering(t *testing.T) {
	ts, _ := NewTokenService(testSecret)

	token, err := ts.Generate("session-abc-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Flip a character in the signature segment.
	tampered := token[:len(token)-2] + "xx"
	if _, err := ts.Validate(tampered); err == nil {
		t.Error("Validate() accepted a tampered token")
	}
}

func TestTokenValidate_RejectsWrongSecret(t *testing.T) {
	issuer, _ := NewTokenService(testSecret)
	verifier, _ := NewTokenService("a-completely-different-secret")

	token, err := issuer.Generate("session-abc-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := verifier.Validate(token); err == nil {
		t.Error("Validate() accepted a token signed with another secret")
	}
}

func TestTokenValidate_RejectsGarbage(t *testing.T) {
	ts, _ := NewTokenService(testSecret)

	for _, bad := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ts.Validate(bad); err == nil {
			t.Errorf("Validate(%q) should fail", bad)
		}
	}
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Error("NewTokenService() should reject a secret under 16 characters")
	}
}

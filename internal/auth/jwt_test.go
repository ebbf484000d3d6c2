package auth

import (
	"strings"
	"testing"
	"time"

	"meterdesk/internal/domain"
)

const testSecret = "test-secret"

func testUser() *domain.User {
	return &domain.User{
		ID:       "7b0c9a44-0000-0000-0000-000000000001",
		Username: "reader1",
		Role:     domain.RoleMeterReader,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken(testSecret, time.Hour, testUser())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	actor, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if actor.ID != testUser().ID {
		t.Errorf("wrong subject: %s", actor.ID)
	}
	if actor.Username != "reader1" {
		t.Errorf("wrong username: %s", actor.Username)
	}
	if actor.Role != domain.RoleMeterReader {
		t.Errorf("wrong role: %s", actor.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, time.Hour, testUser())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Errorf("expected rejection with a different secret")
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	token, err := IssueToken(testSecret, time.Hour, testUser())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := ParseToken(testSecret, tampered); err == nil {
		t.Errorf("expected rejection of a tampered payload")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := IssueToken(testSecret, -time.Minute, testUser())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ParseToken(testSecret, token); err == nil {
		t.Errorf("expected rejection of an expired token")
	}
}

func TestIssueRequiresSecret(t *testing.T) {
	if _, err := IssueToken("", time.Hour, testUser()); err == nil {
		t.Errorf("expected error with empty secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret99")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret99" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "secret99") {
		t.Errorf("correct password must verify")
	}
	if VerifyPassword(hash, "secret98") {
		t.Errorf("wrong password must not verify")
	}
}

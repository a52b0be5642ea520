package auth

import (
	"testing"
	"time"
)

func TestIssueAndParseRoundtrip(t *testing.T) {
	tokens, err := NewTokens("test-secret", "HS256", time.Hour, "dev")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	token, err := tokens.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("expected subject user-1, got %s", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Fatalf("expected username alice, got %s", claims.Username)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tokens, err := NewTokens("test-secret", "HS256", -time.Minute, "dev")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	// NewTokens clamps non-positive TTLs, so build one directly.
	tokens.ttl = -time.Minute

	token, err := tokens.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tokens.Parse(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewTokens("secret-a", "HS256", time.Hour, "dev")
	verifier, _ := NewTokens("secret-b", "HS256", time.Hour, "dev")

	token, err := issuer.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Parse(token); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}
}

func TestParseRejectsAlgorithmMismatch(t *testing.T) {
	issuer, _ := NewTokens("shared-secret", "HS512", time.Hour, "dev")
	verifier, _ := NewTokens("shared-secret", "HS256", time.Hour, "dev")

	token, err := issuer.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Parse(token); err == nil {
		t.Fatalf("expected algorithm mismatch to fail")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	tokens, _ := NewTokens("test-secret", "HS256", time.Hour, "dev")
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := tokens.Parse(raw); err == nil {
			t.Fatalf("expected %q to fail", raw)
		}
	}
}

func TestNewTokensRequiresSecretInProduction(t *testing.T) {
	if _, err := NewTokens("", "HS256", time.Hour, "production"); err == nil {
		t.Fatalf("expected missing production secret to fail")
	}
	if _, err := NewTokens("", "HS256", time.Hour, "dev"); err != nil {
		t.Fatalf("expected dev fallback secret, got %v", err)
	}
}

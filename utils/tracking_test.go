package utils

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateTrackingNumber(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	got := GenerateTrackingNumber(now)
	if !strings.HasPrefix(got, "MB-20250115-") {
		t.Errorf("tracking number %q missing date prefix", got)
	}
	parts := strings.Split(got, "-")
	if len(parts) != 3 || len(parts[2]) != 8 {
		t.Errorf("tracking number %q not in MB-<date>-<suffix> form", got)
	}
	if got != strings.ToUpper(got) {
		t.Errorf("tracking number %q not uppercase", got)
	}

	// Suffixes are random; two numbers for the same instant must differ.
	if other := GenerateTrackingNumber(now); other == got {
		t.Errorf("generated duplicate tracking number %q", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "provider")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != "provider" {
		t.Errorf("Role = %q, want provider", claims.Role)
	}

	if _, err := ParseToken("garbage.token.value"); err == nil {
		t.Error("ParseToken() accepted a garbage token")
	}
}

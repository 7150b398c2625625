package auth

import (
	"testing"
	"time"

	"github.com/ticketflow/backend/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    "user-1",
		Email: "dev@example.com",
		Role:  domain.RoleDeveloper,
	}
}

func TestGeneratePairAndParse(t *testing.T) {
	tm := NewTokenManager("test-secret", 15, 30)
	pair, err := tm.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	claims, err := tm.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Role != domain.RoleDeveloper {
		t.Errorf("role = %q, want developer", claims.Role)
	}

	if _, err := tm.ParseRefreshToken(pair.RefreshToken); err != nil {
		t.Fatalf("ParseRefreshToken: %v", err)
	}
}

func TestParseRejectsWrongType(t *testing.T) {
	tm := NewTokenManager("test-secret", 15, 30)
	pair, err := tm.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	if _, err := tm.ParseAccessToken(pair.RefreshToken); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := tm.ParseRefreshToken(pair.AccessToken); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	pair, err := NewTokenManager("secret-a", 15, 30).GeneratePair(testUser())
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	if _, err := NewTokenManager("secret-b", 15, 30).ParseAccessToken(pair.AccessToken); err == nil {
		t.Error("token signed with different secret accepted")
	}
}

func TestTokenLifetimes(t *testing.T) {
	tm := NewTokenManager("test-secret", 15, 30)
	now := time.Now()
	pair, err := tm.GeneratePair(testUser())
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	accessTTL := pair.AccessExpiresAt.Sub(now)
	if accessTTL < 14*time.Minute || accessTTL > 16*time.Minute {
		t.Errorf("access TTL = %v, want about 15m", accessTTL)
	}
	refreshTTL := pair.RefreshExpiresAt.Sub(now)
	if refreshTTL < 29*24*time.Hour || refreshTTL > 31*24*time.Hour {
		t.Errorf("refresh TTL = %v, want about 30d", refreshTTL)
	}
}

func TestDefaultsApplied(t *testing.T) {
	tm := NewTokenManager("test-secret", 0, 0)
	if tm.accessTTL != 15*time.Minute {
		t.Errorf("access TTL default = %v, want 15m", tm.accessTTL)
	}
	if tm.refreshTTL != 30*24*time.Hour {
		t.Errorf("refresh TTL default = %v, want 720h", tm.refreshTTL)
	}
}

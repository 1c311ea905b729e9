package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"tutorsite/internal/entity/common"
	"tutorsite/internal/entity/db"

	"github.com/golang-jwt/jwt/v5"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestNewManagerAndTokenLifecycle(t *testing.T) {
	mgr, err := NewManager("test-secret", "issuer", time.Minute*30)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}

	user := &db.User{ID: 42, Email: "user@example.com", Role: common.RoleAdmin}
	token, expiresAt, err := mgr.GenerateToken(user)
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatal("expected future expiry time")
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error parsing token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %d, got %d", user.ID, claims.UserID)
	}
	if !strings.EqualFold(claims.Email, user.Email) {
		t.Fatalf("expected email %s, got %s", user.Email, claims.Email)
	}
	if claims.Role != user.Role {
		t.Fatalf("expected role %s, got %s", user.Role, claims.Role)
	}
	if claims.Subject != "42" || claims.Issuer != "issuer" {
		t.Fatalf("unexpected registered claims: sub=%q iss=%q", claims.Subject, claims.Issuer)
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("   ", "", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestNewManagerDefaultsExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	mgr, err := NewManager("secret", "", 0, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	_, expiresAt, err := mgr.GenerateToken(&db.User{ID: 1, Email: "a@b.co"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if want := clock.now.Add(DefaultTokenTTL); !expiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiresAt)
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	mgr, err := NewManager("secret", "tutorsite", 24*time.Hour, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, _, err := mgr.GenerateToken(&db.User{ID: 7, Email: "a@b.co", Role: common.RoleStandard})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	clock.Advance(23*time.Hour + 59*time.Minute)
	if _, err := mgr.ParseToken(token); err != nil {
		t.Fatalf("expected token valid at T+23h59m, got %v", err)
	}

	clock.Advance(2 * time.Minute)
	if _, err := mgr.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at T+24h01m, got %v", err)
	}
}

func TestParseTokenRejectsInvalidTokens(t *testing.T) {
	mgr, err := NewManager("secret", "tutorsite", time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	other, err := NewManager("other-secret", "tutorsite", time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	foreignIssuer, err := NewManager("secret", "someone-else", time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	user := &db.User{ID: 3, Email: "a@b.co"}

	wrongKey, _, _ := other.GenerateToken(user)
	wrongIssuer, _, _ := foreignIssuer.GenerateToken(user)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: 3,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tutorsite",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           3,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "tutorsite"},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token without exp: %v", err)
	}

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
		"alg none":     noneToken,
		"missing exp":  noExpiry,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := mgr.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
				t.Fatalf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

func TestGenerateTokenRequiresPersistedUser(t *testing.T) {
	mgr, err := NewManager("secret", "", time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if _, _, err := mgr.GenerateToken(&db.User{Email: "a@b.co"}); err == nil {
		t.Fatal("expected error for user without id")
	}
	if _, _, err := mgr.GenerateToken(nil); err == nil {
		t.Fatal("expected error for nil user")
	}
}

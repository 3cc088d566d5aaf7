package token

import (
	"errors"
	"testing"
	"time"

	"authgate/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, clock *fakeClock) *Service {
	t.Helper()
	svc, err := NewService(Options{
		Secret:       []byte("test-secret"),
		LegacySecret: []byte("legacy-secret"),
		TTL:          DefaultTTL,
		Issuer:       "authgate-test",
		Now:          clock.Now,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func signLegacy(t *testing.T, secret string, claims LegacyClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign legacy: %v", err)
	}
	return signed
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	signed, issued, err := svc.Issue(Subject{
		ID:          "seller-1",
		DisplayName: "Acme",
		Role:        "OWNER",
		Permissions: []string{"orders", "products"},
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if got := issued.ExpiresAt.Time; !got.Equal(clock.t.Add(7 * 24 * time.Hour)) {
		t.Fatalf("ExpiresAt = %v, want 7 days out", got)
	}

	claims, err := svc.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.SubjectID != "seller-1" || claims.DisplayName != "Acme" || claims.Role != "OWNER" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if len(claims.Permissions) != 2 || claims.Permissions[0] != "orders" || claims.Permissions[1] != "products" {
		t.Fatalf("Permissions = %v", claims.Permissions)
	}
}

func TestVerifyExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	signed, _, err := svc.Issue(Subject{ID: "seller-1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	clock.t = clock.t.Add(DefaultTTL + time.Second)

	_, err = svc.Verify(signed)
	if !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("Verify expired = %v, want invalid token", err)
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected jwt.ErrTokenExpired in chain, got %v", err)
	}
	if _, err := svc.Decode(signed); !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("Decode of expired current token must not fall back to legacy, got %v", err)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newTestService(t, clock)
	signed, _, _ := svc.Issue(Subject{ID: "seller-1"})

	other, _ := NewService(Options{Secret: []byte("other-secret"), Issuer: "authgate-test", Now: clock.Now})
	if _, err := other.Verify(signed); !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("Verify with wrong secret = %v", err)
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newTestService(t, clock)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		SubjectID: "seller-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "authgate-test",
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.Decode(unsigned); err == nil {
		t.Fatalf("expected unsigned token to be rejected")
	}
}

func TestDecodeCurrent(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newTestService(t, clock)
	signed, _, _ := svc.Issue(Subject{ID: "seller-1", Permissions: []string{"orders"}})

	decoded, err := svc.Decode(signed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Format != FormatCurrent || decoded.NeedsLiveCheck() {
		t.Fatalf("expected current format, got %s", decoded.Format)
	}
	if decoded.SubjectID() != "seller-1" {
		t.Fatalf("SubjectID = %q", decoded.SubjectID())
	}
}

func TestDecodeLegacyFallback(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newTestService(t, clock)
	legacy := signLegacy(t, "legacy-secret", LegacyClaims{
		SellerID:         "seller-9",
		Email:            "a@x.com",
		SubscriptionPlan: "PRO",
		AllowedServices:  []string{"orders"},
		Status:           "active",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour))},
	})

	if _, err := svc.Verify(legacy); err == nil {
		t.Fatalf("current verifier must reject legacy tokens")
	}
	decoded, err := svc.Decode(legacy)
	if err != nil {
		t.Fatalf("Decode legacy: %v", err)
	}
	if decoded.Format != FormatLegacy || !decoded.NeedsLiveCheck() {
		t.Fatalf("expected legacy format needing live check, got %s", decoded.Format)
	}
	if decoded.SubjectID() != "seller-9" || decoded.Legacy.Email != "a@x.com" {
		t.Fatalf("unexpected legacy claims %+v", decoded.Legacy)
	}
}

func TestDecodeLegacyWrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newTestService(t, clock)
	legacy := signLegacy(t, "not-the-legacy-secret", LegacyClaims{SellerID: "seller-9"})

	if _, err := svc.Decode(legacy); !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("Decode = %v, want invalid token", err)
	}
}

func TestVerifyLegacyLifetime(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	tests := []struct {
		name    string
		claims  jwt.RegisteredClaims
		wantErr bool
	}{
		{"no exp and no iat", jwt.RegisteredClaims{}, true},
		{"recent iat", jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(clock.t.Add(-24 * time.Hour))}, false},
		{"iat older than max age", jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(clock.t.Add(-8 * 24 * time.Hour))}, true},
		{"exp in the future", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour))}, false},
		{"exp in the past", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.t.Add(-time.Hour))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			legacy := signLegacy(t, "legacy-secret", LegacyClaims{SellerID: "seller-9", RegisteredClaims: tt.claims})
			_, err := svc.VerifyLegacy(legacy)
			if tt.wantErr {
				if !errors.Is(err, apperror.ErrInvalidToken) {
					t.Fatalf("VerifyLegacy = %v, want invalid token", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyLegacy: %v", err)
			}
		})
	}
}

func TestDecodeGarbage(t *testing.T) {
	svc := newTestService(t, &fakeClock{t: time.Now()})
	if _, err := svc.Decode("not-a-jwt"); !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("Decode garbage = %v", err)
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService(Options{}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

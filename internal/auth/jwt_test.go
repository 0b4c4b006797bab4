package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testJWT() *JWTManager {
	return NewJWTManager(JWTConfig{
		Issuer:         "storefront",
		AccessSecret:   "access-secret",
		RefreshSecret:  "refresh-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
	})
}

func TestSignAndParseAccess(t *testing.T) {
	m := testJWT()
	p := Principal{UserID: uuid.New(), Name: "Jane", Role: "admin"}

	tok, exp, err := m.SignAccess(p)
	if err != nil {
		t.Fatalf("SignAccess returned error: %v", err)
	}
	if d := time.Until(exp); d <= 14*time.Minute || d > 15*time.Minute {
		t.Fatalf("unexpected expiry in %s", d)
	}

	claims, err := m.ParseAccess(tok)
	if err != nil {
		t.Fatalf("ParseAccess returned error: %v", err)
	}
	if claims.Principal() != p {
		t.Fatalf("principal = %+v, want %+v", claims.Principal(), p)
	}
	if claims.Subject != p.UserID.String() {
		t.Fatalf("subject = %q", claims.Subject)
	}
}

func TestAccessAndRefreshSecretsAreSeparate(t *testing.T) {
	m := testJWT()
	p := Principal{UserID: uuid.New(), Role: "user"}

	refresh, _, _ := m.SignRefresh(p)
	if _, err := m.ParseAccess(refresh); err == nil {
		t.Fatal("refresh token must not be accepted as access token")
	}
	if _, err := m.ParseRefresh(refresh); err != nil {
		t.Fatalf("ParseRefresh returned error: %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	m := testJWT()
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, _, _ := m.SignAccess(Principal{UserID: uuid.New(), Role: "user"})

	m.now = time.Now
	if _, err := m.ParseAccess(tok); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestWrongIssuer(t *testing.T) {
	m := testJWT()
	tok, _, _ := m.SignAccess(Principal{UserID: uuid.New(), Role: "user"})

	other := testJWT()
	other.cfg.Issuer = "someone-else"
	if _, err := other.ParseAccess(tok); err == nil {
		t.Fatal("expected issuer mismatch to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !CheckPassword(hash, "s3cret!") {
		t.Fatal("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected mismatch")
	}
	if CheckPassword("", "") {
		t.Fatal("empty hash must never match")
	}
}

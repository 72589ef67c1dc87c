package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestValidateSessionTokenSuccess(t *testing.T) {
	secret := []byte("secret-key")

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		UserID: "user-1",
		Name:   "alice",
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	claims, err := ValidateSessionToken(tokenStr, secret)
	if err != nil {
		t.Fatalf("expected valid token, got error %v", err)
	}
	if claims.UserID != "user-1" || claims.Name != "alice" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestValidateSessionTokenInvalid(t *testing.T) {
	badToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		UserID: "u",
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := ValidateSessionToken(badToken, []byte("secret-a")); err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestValidateSessionTokenUnexpectedMethod(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodRS256, &SessionClaims{
		UserID: "u",
	}).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ValidateSessionToken(tokenStr, []byte("secret-a")); err == nil || !strings.Contains(err.Error(), "unexpected signing method") {
		t.Fatalf("expected signing method error, got %v", err)
	}
}

func TestValidateSessionTokenExpired(t *testing.T) {
	secret := []byte("secret-b")

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		UserID: "u",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ValidateSessionToken(tokenStr, secret); err == nil {
		t.Fatalf("expected expiration error")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	const token = "abc123"
	value, err := ExtractTokenFromHeader("Bearer " + token)
	if err != nil || value != token {
		t.Fatalf("unexpected result %q err=%v", value, err)
	}

	for _, header := range []string{"", "Token " + token, "Bearer"} {
		if _, err := ExtractTokenFromHeader(header); err == nil {
			t.Fatalf("expected error for header %q", header)
		}
	}
}

func TestExtractSessionTokenPrefersCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/collab", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")

	value, err := ExtractSessionToken(req)
	if err != nil || value != "cookie-token" {
		t.Fatalf("unexpected result %q err=%v", value, err)
	}
}

func TestExtractSessionTokenFallsBackToHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/collab", nil)
	req.Header.Set("Authorization", "Bearer header-token")

	value, err := ExtractSessionToken(req)
	if err != nil || value != "header-token" {
		t.Fatalf("unexpected result %q err=%v", value, err)
	}

	bare := httptest.NewRequest(http.MethodGet, "/ws/collab", nil)
	if _, err := ExtractSessionToken(bare); err == nil {
		t.Fatalf("expected error without credential")
	}
}

func TestLoggerMethods(t *testing.T) {
	logger := NewLogger()
	var buf strings.Builder
	logger.l.SetOutput(&buf)

	logger.Info("hi", "k", "v")
	logger.Warn("warn", "k2", "v2")
	logger.Error("err", "k3", "v3")

	out := buf.String()
	for _, want := range []string{"INFO: hi k v", "WARN: warn k2 v2", "ERROR: err k3 v3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

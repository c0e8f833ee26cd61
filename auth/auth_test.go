package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte(strings.Repeat("s", MinSecretLen))

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(testSecret, &Claims{
		UserID: "user-1",
		Email:  "advocate@example.com",
		Name:   "A. Counsel",
	}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "advocate@example.com" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		t.Error("expiry not set in the future")
	}
}

func TestGenerateTokenShortSecret(t *testing.T) {
	_, err := GenerateToken([]byte("short"), &Claims{UserID: "u"}, time.Hour)
	if !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("err = %v, want ErrSecretTooShort", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, &Claims{UserID: "u"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	other := []byte(strings.Repeat("x", MinSecretLen))
	if _, err := ValidateToken(other, token); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, &Claims{UserID: "u"}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ValidateToken(testSecret, token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestValidateTokenRejectsUnsignedAlg(t *testing.T) {
	// alg:none style tokens must never validate.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u"})
	tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ValidateToken(testSecret, tokenStr); err == nil {
		t.Fatal("unsigned token accepted")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func authedRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func TestMiddlewareBearerHeader(t *testing.T) {
	token, err := GenerateToken(testSecret, &Claims{UserID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var got *Claims
	h := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaims(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), authedRequest(t, token))

	if got == nil || got.UserID != "user-1" {
		t.Errorf("claims = %+v", got)
	}
}

func TestMiddlewareTokenCookie(t *testing.T) {
	token, err := GenerateToken(testSecret, &Claims{UserID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var got *Claims
	h := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaims(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: token})
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil || got.UserID != "user-1" {
		t.Errorf("claims = %+v", got)
	}
}

func TestMiddlewareIgnoresInvalidToken(t *testing.T) {
	var got *Claims
	h := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaims(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), authedRequest(t, "garbage"))

	if got != nil {
		t.Errorf("claims = %+v, want nil", got)
	}
}

func TestRequireAuth(t *testing.T) {
	token, err := GenerateToken(testSecret, &Claims{UserID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := Middleware(testSecret)(RequireAuth(inner))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(t, ""))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("body = %q, want JSON error envelope", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(t, token))
	if rec.Code != http.StatusNoContent {
		t.Errorf("authenticated status = %d, want 204", rec.Code)
	}
}

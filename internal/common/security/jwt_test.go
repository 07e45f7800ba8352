package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ocpe/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func setupTestConfig(t *testing.T) {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), BcryptCost: bcrypt.MinCost}
	InitJWT()
	t.Cleanup(func() { config.AppConfig = prev })
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	setupTestConfig(t)

	want := SessionClaims{UserID: "u-1", Username: "alice", Role: "judge", SessionID: "s-1"}
	tokenString, err := GenerateToken(want, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	token, err := jwtauth.VerifyToken(TokenAuth, tokenString)
	if err != nil {
		t.Fatalf("VerifyToken() error: %v", err)
	}
	claims, err := token.AsMap(t.Context())
	if err != nil {
		t.Fatalf("AsMap() error: %v", err)
	}

	got, err := SessionClaimsFrom(claims)
	if err != nil {
		t.Fatalf("SessionClaimsFrom() error: %v", err)
	}
	if got != want {
		t.Errorf("claims = %+v, want %+v", got, want)
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	setupTestConfig(t)

	tokenString, err := GenerateToken(SessionClaims{UserID: "u", Username: "n", Role: "judge", SessionID: "s"}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}
	if _, err := jwtauth.VerifyToken(TokenAuth, tokenString); err == nil {
		t.Error("expected an expired token to fail verification")
	}
}

func TestTokenSignedWithOtherKeyIsRejected(t *testing.T) {
	setupTestConfig(t)
	tokenString, _ := GenerateToken(SessionClaims{UserID: "u", Username: "n", Role: "judge", SessionID: "s"}, time.Hour)

	other := jwtauth.New("HS256", []byte("another-secret"), nil)
	if _, err := jwtauth.VerifyToken(other, tokenString); err == nil {
		t.Error("expected verification with a different key to fail")
	}
}

func TestSessionClaimsFromMissing(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"empty", jwt.MapClaims{}},
		{"no sid", jwt.MapClaims{"user_id": "u", "username": "n", "role": "judge"}},
		{"non-string id", jwt.MapClaims{"user_id": 7, "username": "n", "role": "judge", "sid": "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SessionClaimsFrom(tt.claims); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestTokenFromSessionCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := TokenFromSessionCookie(req); got != "" {
		t.Errorf("no cookie: got %q", got)
	}
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc.def.ghi"})
	if got := TokenFromSessionCookie(req); got != "abc.def.ghi" {
		t.Errorf("TokenFromSessionCookie() = %q", got)
	}
}

package security

import (
	"errors"
	"net/http"
	"time"

	"ocpe/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie holds the signed session token.
const SessionCookie = "ocpe_session"

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// SessionClaims is what the session token asserts about its bearer.
type SessionClaims struct {
	UserID    string
	Username  string
	Role      string
	SessionID string
}

func GenerateToken(sc SessionClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  sc.UserID,
		"username": sc.Username,
		"role":     sc.Role,
		"sid":      sc.SessionID,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// TokenFromSessionCookie is a jwtauth token finder for the session cookie.
func TokenFromSessionCookie(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SessionClaimsFrom extracts the session claims; every field is required.
func SessionClaimsFrom(claims jwt.MapClaims) (SessionClaims, error) {
	var sc SessionClaims
	var err error
	if sc.UserID, err = GetUserIDFromClaims(claims); err != nil {
		return SessionClaims{}, err
	}
	if sc.Role, err = GetUserRoleFromClaims(claims); err != nil {
		return SessionClaims{}, err
	}
	if sc.Username, err = stringClaim(claims, "username"); err != nil {
		return SessionClaims{}, err
	}
	if sc.SessionID, err = stringClaim(claims, "sid"); err != nil {
		return SessionClaims{}, err
	}
	return sc, nil
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "user_id")
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "role")
}

func stringClaim(claims jwt.MapClaims, key string) (string, error) {
	v, ok := claims[key].(string)
	if !ok || v == "" {
		return "", errors.New(key + " claim is missing or not a string")
	}
	return v, nil
}

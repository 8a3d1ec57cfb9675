// Session cookie signing.
//
// SESSIONS, NOT STATELESS JWTs:
// The cookie value is a signed JWT, but the token is NOT the session — its
// Subject claim is the ID of a session row in the database. The signature
// stops anyone from minting or tampering with cookie values without the
// secret; the database row is what makes logout real, because deleting it
// revokes the cookie no matter how long the token would otherwise live.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "session"

// SessionLifetime is how long a login lasts before the user must
// authenticate again. Both the session row and the signed cookie use it.
const SessionLifetime = 7 * 24 * time.Hour

const issuer = "inkwell"

// TokenService signs and verifies session cookie values.
// It holds the HMAC secret — the single session-signing secret of the app.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: SESSION_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token whose Subject is the given session ID.
func (s *TokenService) Generate(sessionID string) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionLifetime)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate verifies a token string and returns the session ID it encodes.
//
// jwt.WithValidMethods pins the algorithm to HS256 — without it, a token
// claiming alg "none" could slip past verification (algorithm confusion).
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	sessionID := c.Subject
	if sessionID == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return sessionID, nil
}

// SetSessionCookie attaches the signed session token to the response.
//
// HttpOnly keeps JavaScript away from the cookie (XSS protection);
// SameSite=Lax sends it on top-level navigations but not cross-site POSTs.
// Secure should be enabled when the site is served over HTTPS.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

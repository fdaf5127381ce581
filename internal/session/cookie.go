package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MintCookieToken signs a session ID into a compact HMAC JWT suitable for
// a browser cookie. Only the ID is signed; the session itself lives in
// redis.
func MintCookieToken(secret, sid string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("session: cookie secret required")
	}
	claims := jwt.RegisteredClaims{
		Subject:  sid,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("session: sign cookie: %w", err)
	}
	return signed, nil
}

// ParseCookieToken verifies a cookie value and returns the session ID it
// carries.
func ParseCookieToken(secret, value string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("session: cookie secret required")
	}
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("session: invalid cookie: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("session: cookie missing subject")
	}
	return claims.Subject, nil
}

// Package token issues and verifies the signed session tokens carried in the
// access_token cookie. Tokens are stateless: nothing is stored server-side,
// so a token cannot be revoked before the cookie ages out. That is a
// deliberate tradeoff (simplicity over revocability).
package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for any token that does not carry a
// valid signature and id claim.
var ErrInvalidToken = errors.New("invalid token")

// Issuer signs and verifies session tokens with a process-wide HS256 secret.
type Issuer struct {
	secret []byte
}

func New(secret []byte) *Issuer {
	return &Issuer{secret: secret}
}

// Issue creates a signed token embedding the user id. No exp claim is set;
// the cookie max-age bounds the session lifetime instead.
func (i *Issuer) Issue(userID int) (string, error) {
	claims := jwt.MapClaims{
		"id": userID,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify recomputes the signature and returns the embedded user id.
// Any parse or signature failure maps to ErrInvalidToken.
func (i *Issuer) Verify(tokenString string) (int, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return int(id), nil
}

package middleware

import (
	"crypto/rsa"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenIssuer is the issuer expected when none is configured.
const DefaultTokenIssuer = "building-management"

var errMissingSubject = errors.New("token has no subject")

// ValidateToken accepts RS256/384/512 tokens signed by publicKey that carry
// an unexpired exp, the expected iss and a non-empty sub. It returns the
// subject, which becomes the acting user. Expiry is reported as
// jwt.ErrTokenExpired.
func ValidateToken(tokenString string, publicKey *rsa.PublicKey, issuer string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	token, err := parser.Parse(tokenString, func(*jwt.Token) (any, error) {
		return publicKey, nil
	})
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errMissingSubject
	}
	return sub, nil
}

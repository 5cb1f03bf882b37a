package notify

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// parseToken verifies a bearer token the way a webhook receiver would.
func parseToken(tokenString string, secret []byte) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("notify: invalid token")
	}
	return claims, nil
}

package notify

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "energy-consumption-pipeline"

// Claims carried by webhook bearer tokens. Subject is the dataset key.
type Claims struct {
	Period string `json:"period"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 token for a published dataset.
func SignToken(msg PublishMessage, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("notify: empty secret")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	claims := Claims{
		Period: msg.Period,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   msg.Dataset,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid guest token")

// GuestTokens signs and verifies session tokens for guest identities, which
// have no backing in the managed auth provider.
type GuestTokens struct {
	secretKey []byte
	lifetime  time.Duration
}

type GuestClaims struct {
	GuestName string `json:"guestName"`
	jwt.RegisteredClaims
}

func NewGuestTokens(secretKey string, lifetime time.Duration) *GuestTokens {
	return &GuestTokens{
		secretKey: []byte(secretKey),
		lifetime:  lifetime,
	}
}

func (g *GuestTokens) Issue(uid string, guestName string) (string, error) {
	claims := &GuestClaims{
		GuestName: guestName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(g.lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secretKey)
}

func (g *GuestTokens) Verify(tokenString string) (*GuestClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &GuestClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return g.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*GuestClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

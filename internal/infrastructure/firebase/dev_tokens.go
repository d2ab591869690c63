package firebase

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DevTokenMinter signs short-lived HS256 tokens for local development, where
// a real Firebase project is not always available. Never enabled outside the
// development environment.
type DevTokenMinter struct {
	secret []byte
	expiry time.Duration
}

func NewDevTokenMinter(secret string, expirySeconds int64) *DevTokenMinter {
	return &DevTokenMinter{
		secret: []byte(secret),
		expiry: time.Duration(expirySeconds) * time.Second,
	}
}

func (m *DevTokenMinter) Mint(uid string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid": uid,
		"iat": now.Unix(),
		"exp": now.Add(m.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *DevTokenMinter) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	uid, _ := claims["uid"].(string)
	return uid, nil
}

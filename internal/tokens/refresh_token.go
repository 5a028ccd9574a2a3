package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func (c *Codec) SignRefresh(subject, role string, exp time.Time) (string, error) {
	claims := RefreshClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.RefreshSecret)
}

func (c *Codec) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, keyFunc(c.RefreshSecret))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tkn.Valid {
		return nil, ErrInvalid
	}
	return &claims, nil
}

// ParseRefreshLax checks the signature but skips claim validation, so an
// expired token still yields its subject. The reuse-detection path needs
// this to identify the victim of a replayed stale cookie.
func (c *Codec) ParseRefreshLax(tokenStr string) (*RefreshClaims, error) {
	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, keyFunc(c.RefreshSecret), jwt.WithoutClaimsValidation())
	if err != nil || !tkn.Valid {
		return nil, ErrInvalid
	}
	return &claims, nil
}

func (r *RefreshClaims) Expired() bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(time.Now())
}

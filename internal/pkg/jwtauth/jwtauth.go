package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/golang-jwt/jwt"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.StandardClaims
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
}

func GetToken(u models.User, ttl time.Duration, secret string) (string, error) {
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
		UserID: u.ID,
		Email:  u.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token error: %w", err)
	}

	return signed, nil
}

// ValidateToken returns the user id a valid token was issued for.
func ValidateToken(tokenString, secret string) (int64, error) {
	claims := new(Claims)

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse token error: %w", err)
	}

	if !token.Valid {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}

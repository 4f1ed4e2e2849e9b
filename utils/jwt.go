package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"mini-shop/models"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthenticator issues and verifies HS256 bearer tokens.
type JWTAuthenticator struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewJWTAuthenticator(secret string, expiry time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret), expiry: expiry, now: time.Now}
}

func (a *JWTAuthenticator) GenerateToken(userID int, role string) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (a *JWTAuthenticator) Authenticate(tokenString string) (*models.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.Unauthorized("Token expired", err)
		}
		return nil, models.Unauthorized("Invalid token", err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, models.Unauthorized("Invalid token", nil)
	}

	return &models.Principal{UserID: claims.UserID, Role: claims.Role}, nil
}

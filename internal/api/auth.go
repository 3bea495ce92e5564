package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenCookieKey       = "token"
	defaultJwtExpiration = 24 * time.Hour
)

const (
	userUuidClaim = "user-uuid"
	expClaim      = "exp"
)

type contextKey string

const userUuidKey contextKey = "user-uuid"

func WithUserUuid(ctx context.Context, uuid string) context.Context {
	return context.WithValue(ctx, userUuidKey, uuid)
}

func UserUuid(ctx context.Context) (string, bool) {
	uuid, ok := ctx.Value(userUuidKey).(string)
	return uuid, ok
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func verifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *RoomcastApp) createJwtForSession(userUuid string, exp time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userUuidClaim: userUuid,
		expClaim:      time.Now().Add(exp).Unix(),
	})

	return token.SignedString(s.signingKey)
}

func (s *RoomcastApp) extractUserUuidFromToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userUuid, ok := claims[userUuidClaim].(string)
	if !ok {
		return "", fmt.Errorf("invalid user uuid claim")
	}

	return userUuid, nil
}

func createJwtCookie(token string, exp time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     tokenCookieKey,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(exp),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

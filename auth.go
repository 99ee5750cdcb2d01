package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

const userULIDContextKey = "userULID"

// TokenIssuer signs and verifies the access tokens that carry the acting
// user's id. Everything past "which user is this" stays outside the core.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

func (t *TokenIssuer) Issue(userULID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userULID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(t.ttl).Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("error SignedString: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", unauthenticated("invalid access token")
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", unauthenticated("invalid access token")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", unauthenticated("invalid access token")
	}
	return sub, nil
}

// authRequired extracts the bearer token and stores the verified user id in
// the request context.
func authRequired(tokens *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return errorResponse(c, unauthenticated("missing access token"))
			}
			userULID, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return errorResponse(c, err)
			}
			c.Set(userULIDContextKey, userULID)
			return next(c)
		}
	}
}

// currentUserULID returns the user id placed in the context by authRequired.
func currentUserULID(c echo.Context) string {
	userULID, _ := c.Get(userULIDContextKey).(string)
	return userULID
}

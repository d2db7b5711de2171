package utils

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"go-poll-scheduler/core/config"
	"go-poll-scheduler/core/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	ScopeTokenAccess = "access"
	ScopeTokenWorker = "worker"

	accessTokenTTL = 24 * time.Hour
)

type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Scope  string    `json:"scope"`
	jwt.RegisteredClaims
}

func jwtSecret() ([]byte, error) {
	cfg, ok := config.GetSafe()
	if !ok || cfg.JWT.Secret == "" {
		return nil, errors.NewAppError(errors.ErrInternalServer, "JWT secret is not configured", nil)
	}
	return []byte(cfg.JWT.Secret), nil
}

// GenerateToken signs an HS256 token for userID with the given scope.
func GenerateToken(userID uuid.UUID, scope string) (string, error) {
	secret, err := jwtSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func ValidateAndParseToken(tokenString string) (*TokenClaims, error) {
	secret, err := jwtSecret()
	if err != nil {
		return nil, err
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAppError(errors.ErrTokenExpired, "Token has expired", err)
		}
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Invalid token", err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Invalid token", nil)
	}
	return claims, nil
}

// GetTokenFromHeader extracts the bearer token from the Authorization header.
func GetTokenFromHeader(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errors.NewAppError(errors.ErrMissingAuthorizationHeader, "Missing authorization header", nil)
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errors.NewAppError(errors.ErrInvalidTokenFormat, "Authorization header must be a bearer token", nil)
	}
	return strings.TrimSpace(token), nil
}

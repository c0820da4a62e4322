package util

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forumdesk/admin-api/internal/constant"
	"github.com/forumdesk/admin-api/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	BearerPrefix            = "Bearer "
	TokenIssuer             = "github.com/forumdesk/admin-api"
	AccessTokenDuration     = 15 * time.Minute
	ErrInvalidSigningMethod = errors.New("invalid token signing method")
)

// GenerateAccessToken signs a moderator token. Token issuance lives in the
// identity service; this exists for the integration harness and local tooling.
func GenerateAccessToken(userId uuid.UUID, role string, jwtSecretKey string) (string, error) {
	if jwtSecretKey == "" {
		return "", errors.New("jwt secret key is not configured")
	}

	now := time.Now().UTC()
	claims := &model.Claims{
		UserId: userId,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
			Subject:   fmt.Sprintf("user:%s", userId.String()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(jwtSecretKey))
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// ValidateAccessToken validates a JWT access token and returns the user id
// and the role claim.
func ValidateAccessToken(accessToken string, log *zap.Logger, jwtSecretKey string) (uuid.UUID, string, error) {
	if jwtSecretKey == "" {
		return uuid.Nil, "", errors.New("jwt secret key is not configured")
	}

	tokenString, err := extractBearerToken(accessToken)
	if err != nil {
		return uuid.Nil, "", err
	}

	token, err := jwt.ParseWithClaims(tokenString, &model.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return []byte(jwtSecretKey), nil
	})

	if err != nil {
		return uuid.Nil, "", handleParseError(err)
	}

	claims, ok := token.Claims.(*model.Claims)
	if !ok || !token.Valid {
		return uuid.Nil, "", &model.ValidationError{
			Code:    constant.ERR_UNAUTHORIZED_ERROR,
			Message: "Authentication token is invalid",
			Param:   "accessToken",
		}
	}

	return claims.UserId, claims.Role, nil
}

// extractBearerToken extracts the token from "Bearer <token>" format
func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", &model.ValidationError{
			Code:    constant.ERR_UNAUTHORIZED_ERROR,
			Message: "No authentication token is provided",
			Param:   "accessToken",
		}
	}

	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", &model.ValidationError{
			Code:    constant.ERR_UNAUTHORIZED_ERROR,
			Message: "Authentication token format is not match",
			Param:   "accessToken",
		}
	}

	token := strings.TrimPrefix(authHeader, BearerPrefix)
	if token == "" {
		return "", &model.ValidationError{
			Code:    constant.ERR_UNAUTHORIZED_ERROR,
			Message: "Authentication token is empty",
			Param:   "accessToken",
		}
	}

	return token, nil
}

// handleParseError converts JWT parsing errors to ValidationError
func handleParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &model.ValidationError{
			Code:    constant.ERR_UNAUTHORIZED_ERROR,
			Message: "Authentication token is malformed",
			Param:   "accessToken",
		}
	case errors.Is(err, jwt.ErrTokenExpired):
		return &model.ValidationError{
			Code:    constant.ERR_UNAUTHORIZED_ERROR,
			Message: "Authentication token is expired",
			Param:   "accessToken",
		}
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return &model.ValidationError{
			Code:    constant.ERR_UNAUTHORIZED_ERROR,
			Message: "Authentication token is not valid yet",
			Param:   "accessToken",
		}
	case errors.Is(err, ErrInvalidSigningMethod):
		return &model.ValidationError{
			Code:    constant.ERR_UNAUTHORIZED_ERROR,
			Message: "Authentication token has invalid signing method",
			Param:   "accessToken",
		}
	default:
		return &model.ValidationError{
			Code:    constant.ERR_UNAUTHORIZED_ERROR,
			Message: "Authentication token is invalid",
			Param:   "accessToken",
		}
	}
}

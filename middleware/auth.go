package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"github.com/meinhoongagan/nhs-staffing/models"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// IssueToken signs a token of the given type for the user.
func IssueToken(secret string, user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := models.Now()
	claims := jwt.MapClaims{
		"id":   user.ID,
		"role": string(user.Role),
		"type": tokenType,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates a token string and returns the user id when the type matches.
func ParseToken(secret, raw, wantType string) (uint, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token claims")
	}
	return claimsUserID(claims, wantType)
}

func claimsUserID(claims jwt.MapClaims, wantType string) (uint, error) {
	if typ, _ := claims["type"].(string); typ != wantType {
		return 0, fmt.Errorf("expected %s token", wantType)
	}
	id, ok := claims["id"].(float64)
	if !ok || id <= 0 {
		return 0, errors.New("no user id in token")
	}
	return uint(id), nil
}

// Protected verifies the bearer access token and stores the user id in Locals("userID").
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return jwtError(c, errors.New("no token"))
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return jwtError(c, errors.New("invalid token claims"))
			}
			userID, err := claimsUserID(claims, TokenAccess)
			if err != nil {
				return jwtError(c, err)
			}
			c.Locals("userID", userID)
			return c.Next()
		},
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(utils.ErrorResponse{
		Message: "Invalid or expired token",
		Error:   err.Error(),
	})
}

package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var ErrInvalidToken = errors.New("invalid token")

// Actor is the authenticated caller of a request.
type Actor struct {
	ID   string
	Role string
}

// GenerateToken creates a signed JWT for subject with the given role. The
// booking service never issues tokens in production; this is used by tooling
// and tests.
func GenerateToken(secret []byte, subject, role string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(secret []byte, tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
}

// ActorFromToken extracts the subject and role claims from a valid token.
func ActorFromToken(secret []byte, tokenString string) (Actor, error) {
	token, err := ValidateToken(secret, tokenString)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Actor{}, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Actor{}, fmt.Errorf("%w: missing 'sub' claim", ErrInvalidToken)
	}
	role, _ := claims["role"].(string)
	return Actor{ID: sub, Role: role}, nil
}

package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/raushankrgupta/fitly-atelier/config"
)

// sessionTokenTTL bounds how long a session handle stays valid
const sessionTokenTTL = 7 * 24 * time.Hour

// SessionTokensEnabled reports whether session handles are signed
func SessionTokensEnabled() bool {
	return config.JWTSecret != ""
}

// GenerateSessionToken issues the signed handle a client presents for a session
func GenerateSessionToken(sessionID string) (string, error) {
	jwtSecret := []byte(config.JWTSecret)
	if len(jwtSecret) == 0 {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}

	claims := jwt.MapClaims{
		"session_id": sessionID,
		"exp":        time.Now().Add(sessionTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateSessionToken parses the handle and returns the session it names
func ValidateSessionToken(tokenString string) (string, error) {
	jwtSecret := []byte(config.JWTSecret)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid session token")
	}
	sessionID, _ := claims["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session token carries no session id")
	}
	return sessionID, nil
}

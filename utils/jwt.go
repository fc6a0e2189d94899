package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// SessionClaims are carried by the app session token.
type SessionClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.StandardClaims
}

// GenerateToken creates a signed HS256 token for the given subject (the identity
// provider's user id) bound to an identity session. The token expires after duration.
func GenerateToken(secret []byte, subject, sessionID, email string, duration time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("token secret is not configured")
	}
	now := time.Now()
	claims := SessionClaims{
		Email:     email,
		SessionID: sessionID,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(duration).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns its claims.
func ValidateToken(secret []byte, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ExtractIDsFromToken returns the subject and session id of a valid token.
func ExtractIDsFromToken(secret []byte, tokenString string) (string, string, error) {
	claims, err := ValidateToken(secret, tokenString)
	if err != nil {
		return "", "", err
	}
	if claims.Subject == "" {
		return "", "", errors.New("token does not contain a valid 'sub' claim")
	}
	if claims.SessionID == "" {
		return "", "", errors.New("token does not contain a valid 'sid' claim")
	}
	return claims.Subject, claims.SessionID, nil
}

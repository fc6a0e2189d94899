package models

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// User is the identity provider's view of the signed-in account.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Initial is the avatar fallback letter.
func (u User) Initial() string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(u.Email))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// AuthSession is one signed-in browser/terminal session.
type AuthSession struct {
	ID            string    `json:"id"`
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	IDToken       string    `json:"idToken,omitempty"`
	RefreshToken  string    `json:"refreshToken,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

func (s AuthSession) User() User {
	return User{UID: s.UID, Email: s.Email}
}

// AuthResponse is returned by the login and signup endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Package domain contains entity without logic, just meta-data
package domain

import "strings"

const (
	MaxUserIDLen   = 64
	MaxUsernameLen = 36

	DefaultUsername = "guest"
)

type UserID string

type User struct {
	ID       UserID `json:"userId"`
	Username string `json:"username"`
}

// NewUser normalizes client-supplied identity. Both fields are best-effort:
// an empty id falls back to fallback, an empty name becomes DefaultUsername.
func NewUser(id, username, fallback string) User {
	id = strings.TrimSpace(id)
	if id == "" {
		id = fallback
	}
	return User{
		ID:       UserID(clamp(id, MaxUserIDLen)),
		Username: NormalizeUsername(username),
	}
}

func NormalizeUsername(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return DefaultUsername
	}
	return clamp(username, MaxUsernameLen)
}

// clamp cuts s to at most n bytes without splitting a UTF-8 sequence.
func clamp(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

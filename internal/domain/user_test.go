package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUser(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		username string
		fallback string
		want     User
	}{
		{
			name:     "client supplied",
			id:       "1700000000000",
			username: "alice",
			fallback: "token",
			want:     User{ID: "1700000000000", Username: "alice"},
		},
		{
			name:     "missing user id uses fallback",
			username: "bob",
			fallback: "token",
			want:     User{ID: "token", Username: "bob"},
		},
		{
			name:     "blank username becomes guest",
			id:       "u1",
			username: "   ",
			want:     User{ID: "u1", Username: DefaultUsername},
		},
		{
			name:     "trimmed",
			id:       " u2 ",
			username: " carol ",
			want:     User{ID: "u2", Username: "carol"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewUser(tt.id, tt.username, tt.fallback))
		})
	}
}

func TestNormalizeUsernameClamps(t *testing.T) {
	long := strings.Repeat("a", MaxUsernameLen+10)
	assert.Len(t, NormalizeUsername(long), MaxUsernameLen)

	// 35 ASCII bytes followed by a two-byte rune must not be split.
	name := strings.Repeat("a", MaxUsernameLen-1) + "é"
	got := NormalizeUsername(name)
	assert.Equal(t, strings.Repeat("a", MaxUsernameLen-1), got)
}

func TestNewRoomID(t *testing.T) {
	id, ok := NewRoomID(" R1 ")
	assert.True(t, ok)
	assert.Equal(t, RoomID("R1"), id)

	_, ok = NewRoomID("  ")
	assert.False(t, ok)
}

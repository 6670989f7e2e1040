package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 60*time.Second, cfg.PongWait)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.JoinLimit.Limit)
	assert.Equal(t, time.Minute, cfg.JoinLimit.Interval)
	require.Len(t, cfg.ICEServers, 2)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICEServers[0].URLs)
	assert.Empty(t, cfg.file)
}

func TestLoadFileAndOverrides(t *testing.T) {
	path := writeConfig(t, `
port: 7000
client_url: http://file.example
log_level: warn
rate_limit:
  burst: 5
ice_servers:
  - urls: ["turn:turn.example.org:3478"]
    username: u
    credential: p
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := load([]string{"--config", path})
		require.NoError(t, err)
		assert.Equal(t, 7000, cfg.Port)
		assert.Equal(t, "http://file.example", cfg.ClientURL)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, 5, cfg.RateLimit.Burst)
		assert.Equal(t, 20*time.Millisecond, cfg.RateLimit.Interval)
		assert.Equal(t, path, cfg.file)
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("PORT", "7100")
		t.Setenv("CLIENT_URL", "http://env.example")
		t.Setenv("MEET_LOG_LEVEL", "error")
		cfg, err := load([]string{"--config", path})
		require.NoError(t, err)
		assert.Equal(t, 7100, cfg.Port)
		assert.Equal(t, "http://env.example", cfg.ClientURL)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("flags win", func(t *testing.T) {
		t.Setenv("PORT", "7100")
		cfg, err := load([]string{"--config", path, "--port", "7200", "--log-level", "debug"})
		require.NoError(t, err)
		assert.Equal(t, 7200, cfg.Port)
		assert.Equal(t, "debug", cfg.LogLevel)
	})
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"ping not shorter than pong", "ping_period: 60s\npong_wait: 60s\n"},
		{"bad ice url", "ice_servers:\n  - urls: [\"http://nope\"]\n"},
		{"turn without credentials", "ice_servers:\n  - urls: [\"turn:turn.example.org\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load([]string{"--config", writeConfig(t, tt.body)})
			assert.Error(t, err)
		})
	}

	_, err := load([]string{"--bogus"})
	assert.Error(t, err)
}

func TestWebRTCICEServers(t *testing.T) {
	cfg := &Config{ICEServers: []ICEServerConfig{
		{URLs: []string{" stun:stun.example.org:19302 ", ""}},
		{URLs: []string{"turns:turn.example.org:5349?transport=tcp"}, Username: "u", Credential: "secret"},
	}}

	servers, err := cfg.WebRTCICEServers()
	require.NoError(t, err)
	require.Len(t, servers, 2)

	assert.Equal(t, []string{"stun:stun.example.org:19302"}, servers[0].URLs)
	assert.Nil(t, servers[0].Credential)

	assert.Equal(t, "u", servers[1].Username)
	assert.Equal(t, "secret", servers[1].Credential)
	assert.Equal(t, webrtc.ICECredentialTypePassword, servers[1].CredentialType)

	_, err = (&Config{ICEServers: []ICEServerConfig{{}}}).WebRTCICEServers()
	assert.Error(t, err)
}

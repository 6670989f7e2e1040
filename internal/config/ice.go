package config

import (
	"fmt"
	"strings"

	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
)

// ICEServerConfig is one STUN/TURN entry handed to browsers. The relay never
// uses these servers itself.
type ICEServerConfig struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

// WebRTCICEServers validates the configured servers and converts them to the
// RTCIceServer shape clients pass to RTCPeerConnection.
func (c *Config) WebRTCICEServers() ([]webrtc.ICEServer, error) {
	out := make([]webrtc.ICEServer, 0, len(c.ICEServers))
	for i, s := range c.ICEServers {
		server, err := s.toWebRTC()
		if err != nil {
			return nil, fmt.Errorf("ice_servers[%d]: %w", i, err)
		}
		out = append(out, server)
	}
	return out, nil
}

func (s ICEServerConfig) toWebRTC() (webrtc.ICEServer, error) {
	urls := make([]string, 0, len(s.URLs))
	for _, raw := range s.URLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		uri, err := stun.ParseURI(raw)
		if err != nil {
			return webrtc.ICEServer{}, fmt.Errorf("invalid url %q: %w", raw, err)
		}
		if isTURN(uri) && (s.Username == "" || s.Credential == "") {
			return webrtc.ICEServer{}, fmt.Errorf("turn url %q needs username and credential", raw)
		}
		urls = append(urls, raw)
	}
	if len(urls) == 0 {
		return webrtc.ICEServer{}, fmt.Errorf("no urls")
	}

	server := webrtc.ICEServer{
		URLs:     urls,
		Username: strings.TrimSpace(s.Username),
	}
	if s.Credential != "" {
		server.Credential = s.Credential
		server.CredentialType = webrtc.ICECredentialTypePassword
	}
	return server, nil
}

func isTURN(uri *stun.URI) bool {
	return uri.Scheme == stun.SchemeTypeTURN || uri.Scheme == stun.SchemeTypeTURNS
}

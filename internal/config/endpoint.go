package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rickgao/hyperscope-stream/internal/api"
	"github.com/rickgao/hyperscope-stream/internal/connection"
	"github.com/rickgao/hyperscope-stream/internal/stream"
	"github.com/rickgao/hyperscope-stream/internal/version"
)

// DeriveStreamURL turns an HTTP base URL into the stream endpoint:
// http becomes ws, https becomes wss, and path is appended.
// ws and wss bases are accepted as-is.
func DeriveStreamURL(base, path string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("base url %q: unsupported scheme %q", base, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base url %q: missing host", base)
	}

	if path = strings.Trim(path, "/"); path != "" {
		u.Path = strings.TrimRight(u.Path, "/") + "/" + path
	}
	return u.String(), nil
}

// StreamEndpoint returns api.stream_url if set, otherwise the URL derived from api.base_url.
func (c *Config) StreamEndpoint() (string, error) {
	if c.API.StreamURL != "" {
		return DeriveStreamURL(c.API.StreamURL, "")
	}
	return DeriveStreamURL(c.API.BaseURL, c.API.StreamPath)
}

// ClientConfig builds the transport settings.
func (c *Config) ClientConfig() (connection.ClientConfig, error) {
	endpoint, err := c.StreamEndpoint()
	if err != nil {
		return connection.ClientConfig{}, err
	}
	return connection.ClientConfig{
		URL:              endpoint,
		PingInterval:     c.Stream.PingInterval,
		PingTimeout:      c.Stream.PingTimeout,
		WriteTimeout:     c.Stream.WriteTimeout,
		HandshakeTimeout: c.Stream.HandshakeTimeout,
		BufferSize:       c.Stream.BufferSize,
		ReadLimit:        c.Stream.ReadLimit,
		UserAgent:        version.UserAgent(),
	}, nil
}

// RESTConfig builds the REST client settings.
func (a APIConfig) RESTConfig() api.Config {
	cfg := api.DefaultConfig()
	cfg.BaseURL = a.BaseURL
	cfg.Timeout = a.Timeout
	cfg.MaxRetries = a.MaxRetries
	cfg.UserAgent = version.UserAgent()
	return cfg
}

// MuxConfig builds the reconnect policy.
func (s StreamConfig) MuxConfig() stream.Config {
	cfg := stream.DefaultConfig()
	cfg.ReconnectBaseDelay = s.ReconnectBaseDelay
	cfg.ReconnectMaxDelay = s.ReconnectMaxDelay
	return cfg
}

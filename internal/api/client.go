package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config holds REST client settings.
type Config struct {
	BaseURL      string
	Timeout      time.Duration // per HTTP attempt
	MaxRetries   int           // extra attempts after the first, for 429 and 5xx only
	RetryBackoff time.Duration // first retry delay, doubled per attempt
	UserAgent    string
}

// DefaultConfig returns settings for a local HyperScope server.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:8000",
		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Second,
	}
}

// Client reads order book snapshots and health from the HyperScope REST API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a REST client. Zero fields in cfg take their defaults;
// a negative MaxRetries disables retrying.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("component", "api"),
	}
}

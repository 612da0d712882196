package config

import (
	"errors"
	"fmt"

	"github.com/rickgao/hyperscope-stream/internal/feed"
)

// Validate checks that all required fields are set and values are valid.
// The recorder section is checked separately by RecorderConfig.Validate.
func (c *Config) Validate() error {
	if _, err := c.StreamEndpoint(); err != nil {
		return err
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be > 0")
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}

	if c.Stream.ReconnectBaseDelay <= 0 {
		return errors.New("stream.reconnect_base_delay must be > 0")
	}
	if c.Stream.ReconnectMaxDelay < c.Stream.ReconnectBaseDelay {
		return fmt.Errorf("stream.reconnect_max_delay (%s) cannot be less than reconnect_base_delay (%s)",
			c.Stream.ReconnectMaxDelay, c.Stream.ReconnectBaseDelay)
	}
	if c.Stream.PingInterval <= 0 {
		return errors.New("stream.ping_interval must be > 0")
	}
	if c.Stream.PingTimeout > 0 && c.Stream.PingTimeout <= c.Stream.PingInterval {
		return fmt.Errorf("stream.ping_timeout (%s) must exceed ping_interval (%s)",
			c.Stream.PingTimeout, c.Stream.PingInterval)
	}
	if c.Stream.BufferSize < 1 {
		return errors.New("stream.buffer_size must be >= 1")
	}

	if c.Feeds.BookDepth < 1 || c.Feeds.BookDepth > 100 {
		return fmt.Errorf("feeds.book_depth must be between 1 and 100, got %d", c.Feeds.BookDepth)
	}
	if c.Feeds.ResyncInterval < 0 {
		return errors.New("feeds.resync_interval must be >= 0")
	}
	if _, err := c.Feeds.Channels(); err != nil {
		return fmt.Errorf("feeds: %w", err)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

// Validate checks the recorder section.
func (r *RecorderConfig) Validate() error {
	if err := r.Database.validate("recorder.database"); err != nil {
		return err
	}
	if r.Table == "" {
		return errors.New("recorder.table is required")
	}
	if r.BatchSize < 1 {
		return errors.New("recorder.batch_size must be >= 1")
	}
	if r.FlushInterval <= 0 {
		return errors.New("recorder.flush_interval must be > 0")
	}
	if r.BufferSize < 1 {
		return errors.New("recorder.buffer_size must be >= 1")
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

// Channels expands the configured feeds and pairs into channel names.
func (f FeedsConfig) Channels() ([]string, error) {
	return feed.Expand(f.Feeds, f.Pairs, f.Interval)
}

package config

import "time"

// Config is the root configuration shared by the stream tools.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Stream   StreamConfig   `yaml:"stream"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Recorder RecorderConfig `yaml:"recorder"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig holds HyperScope server settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`    // HTTP base, e.g. http://localhost:8000
	StreamURL  string        `yaml:"stream_url"`  // Optional explicit ws(s):// endpoint
	StreamPath string        `yaml:"stream_path"` // Appended to the derived stream URL
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// StreamConfig holds the streaming connection and reconnect policy.
type StreamConfig struct {
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout"`
	BufferSize         int           `yaml:"buffer_size"`
	ReadLimit          int64         `yaml:"read_limit"`
}

// FeedsConfig selects the channels the tools subscribe to.
type FeedsConfig struct {
	Feeds          []string      `yaml:"feeds"`           // e.g. l2book, trades, all-mids
	Pairs          []string      `yaml:"pairs"`           // Applied to per-pair feeds
	Interval       string        `yaml:"interval"`        // Candle interval
	BookDepth      int           `yaml:"book_depth"`      // Levels fetched to seed l2book overlays
	ResyncInterval time.Duration `yaml:"resync_interval"` // REST reseed period for l2book overlays, 0 disables
}

// RecorderConfig holds the frame recorder settings.
type RecorderConfig struct {
	Database      DBConfig      `yaml:"database"`
	Table         string        `yaml:"table"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
	HealthAddr    string        `yaml:"health_addr"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text or json
	Output     string `yaml:"output"` // stdout, stderr or a file path
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

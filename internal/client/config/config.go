package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings for the ECO client CLI.
type Config struct {
	ServerURL      string
	PageSize       int
	SearchDebounce time.Duration
	RequestTimeout time.Duration
	SessionDB      string
	DownloadDir    string
	LogLevel       string
	Export         ExportConfig
}

// ExportConfig configures optional report archival to S3. An empty Bucket
// disables it.
type ExportConfig struct {
	Bucket    string
	Region    string
	Prefix    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func (e ExportConfig) Enabled() bool {
	return e.Bucket != ""
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.PageSize = 50
	c.SearchDebounce = 300 * time.Millisecond
	c.RequestTimeout = 30 * time.Second
	c.SessionDB = "eco_session.db"
	c.DownloadDir = "downloads"
	c.LogLevel = "info"
	c.Export = ExportConfig{Region: "us-east-1", Prefix: "reports/"}
}

func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server url is required")
	}
	if u, err := url.Parse(c.ServerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server url must be an http(s) address, got %q", c.ServerURL)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search debounce must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file named in args, then the
// flags in args. Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

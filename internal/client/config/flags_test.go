package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		name      string
		args      []string
		expected  func() *Config
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://eco:9000", "-p", "25", "-d", "150", "-t", "5", "-s", "s.db", "-o", "out", "-l", "debug", "-b", "archive"},
			expected: func() *Config {
				c := base()
				c.ServerURL = "http://eco:9000"
				c.PageSize = 25
				c.SearchDebounce = 150 * time.Millisecond
				c.RequestTimeout = 5 * time.Second
				c.SessionDB = "s.db"
				c.DownloadDir = "out"
				c.LogLevel = "debug"
				c.Export.Bucket = "archive"
				return c
			},
		},
		{
			name:     "unknown flags and config path ignored",
			args:     []string{"-c", "cfg.json", "-x", "1", "-p=10"},
			expected: func() *Config { c := base(); c.PageSize = 10; return c },
		},
		{
			name:      "non numeric page size",
			args:      []string{"-p", "abc"},
			expected:  base,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			err := parseFlags(cfg, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected(), cfg))
		})
	}
}

func TestParseFlags_KeepsSubSecondTimeoutWhenUnset(t *testing.T) {
	cfg := &Config{RequestTimeout: 1500 * time.Millisecond, SearchDebounce: 250 * time.Microsecond, PageSize: 1}
	require.NoError(t, parseFlags(cfg, nil))
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, 250*time.Microsecond, cfg.SearchDebounce)
}

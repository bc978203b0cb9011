package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/ecoflow/internal/flagx"
	"github.com/dmitrijs2005/ecoflow/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell an absent key from a zero value.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	PageSize       *int            `json:"page_size"`
	SearchDebounce *timex.Duration `json:"search_debounce"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	SessionDB      *string         `json:"session_db"`
	DownloadDir    *string         `json:"download_dir"`
	LogLevel       *string         `json:"log_level"`
	Export         *JsonExport     `json:"export"`
}

type JsonExport struct {
	Bucket    *string `json:"bucket"`
	Region    *string `json:"region"`
	Prefix    *string `json:"prefix"`
	Endpoint  *string `json:"endpoint"`
	AccessKey *string `json:"access_key"`
	SecretKey *string `json:"secret_key"`
}

// parseJson overlays cfg with the JSON file given by -c/-config in args.
// Without such a flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	if jc.PageSize != nil {
		cfg.PageSize = *jc.PageSize
	}
	if jc.SearchDebounce != nil {
		cfg.SearchDebounce = jc.SearchDebounce.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	setString(&cfg.SessionDB, jc.SessionDB)
	setString(&cfg.DownloadDir, jc.DownloadDir)
	setString(&cfg.LogLevel, jc.LogLevel)

	if e := jc.Export; e != nil {
		setString(&cfg.Export.Bucket, e.Bucket)
		setString(&cfg.Export.Region, e.Region)
		setString(&cfg.Export.Prefix, e.Prefix)
		setString(&cfg.Export.Endpoint, e.Endpoint)
		setString(&cfg.Export.AccessKey, e.AccessKey)
		setString(&cfg.Export.SecretKey, e.SecretKey)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Package config loads runtime configuration for the ECO client CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the ECO API server
//	-p int      list page size
//	-d int      search debounce window (milliseconds)
//	-t int      per-request timeout (seconds)
//	-s string   session database file
//	-o string   download directory
//	-l string   log level (debug, info, warn, error)
//	-b string   S3 bucket for report archival (empty disables it)
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "300ms" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "page_size": 50,
//	  "search_debounce": "300ms",
//	  "request_timeout": "30s",
//	  "session_db": "eco_session.db",
//	  "download_dir": "downloads",
//	  "log_level": "info",
//	  "export": {
//	    "bucket": "eco-reports",
//	    "region": "us-east-1",
//	    "prefix": "reports/",
//	    "endpoint": "http://127.0.0.1:9000",
//	    "access_key": "minioadmin",
//	    "secret_key": "minioadmin"
//	  }
//	}
//
// Keys missing from the file keep their previous value.
package config

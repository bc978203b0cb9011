package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/ecoflow/internal/flagx"
)

var knownFlags = []string{"-a", "-p", "-d", "-t", "-s", "-o", "-l", "-b"}

// parseFlags populates cfg from the command-line flags in args. Arguments
// not listed in knownFlags are filtered out first, so -c and any
// subcommand arguments do not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the ECO API")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "list page size")
	debounce := fs.Int("d", int(cfg.SearchDebounce.Milliseconds()), "search debounce (in milliseconds)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.SessionDB, "s", cfg.SessionDB, "session database file")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.Export.Bucket, "b", cfg.Export.Bucket, "S3 bucket for report archival")

	if err := fs.Parse(filtered); err != nil {
		return err
	}

	// only explicit flags, so sub-unit JSON values are not truncated
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			cfg.SearchDebounce = time.Duration(*debounce) * time.Millisecond
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}

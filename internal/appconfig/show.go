// internal/appconfig/show.go
package appconfig

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the current configuration summary. With dump set, the
// full struct is pretty-printed as well.
func ShowConfig(out io.Writer, file string, cfg Config, dump bool) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Source:          %s\n", cfg.Source)
	fmt.Fprintf(out, "  Base Path:       %q\n", cfg.NormalizedBasePath())
	fmt.Fprintf(out, "  Output Dir:      %s\n", cfg.OutputPath())
	fmt.Fprintf(out, "  Debug:           %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Timeout:         %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Concurrency:     %d\n", cfg.FetchConcurrency())
	fmt.Fprintf(out, "  Top N:           %d\n", cfg.LeaderboardTopN())
	fmt.Fprintf(out, "  Listen Addr:     %s\n", cfg.ListenAddr())
	if cfg.LogFile != "" {
		fmt.Fprintf(out, "  Log File:        %s\n", cfg.LogFile)
	}

	if dump {
		fmt.Fprintln(out)
		pp.Fprintln(out, cfg)
	}
}

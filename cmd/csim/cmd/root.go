// Package cmd provides the command-line interface of csim.
package cmd

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/jmgilman/go/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/csim/report"
)

// NewRootCommand creates the csim command.
func NewRootCommand() *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:   "csim -s <s> -E <E> -b <b> -t <tracefile>",
		Short: "csim simulates a set-associative write-back cache.",
		Long: `csim replays a trace of loads and stores against a ` +
			`set-associative cache with LRU replacement and a write-back, ` +
			`write-allocate policy. It prints the number of hits, misses, ` +
			`and evictions, as well as the dirty bytes left in and evicted ` +
			`from the cache.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.applyEnv(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, o)
		},
	}

	flags := rootCmd.Flags()
	flags.IntVarP(&o.log2NumSets, "set-bits", "s", 0,
		"Number of set index bits (the cache has 2^s sets)")
	flags.IntVarP(&o.numWays, "lines", "E", 0,
		"Number of lines per set")
	flags.IntVarP(&o.log2BlockSize, "block-bits", "b", 0,
		"Number of block offset bits (blocks are 2^b bytes)")
	flags.StringVarP(&o.traceFile, "trace", "t", "",
		"Trace file to replay")
	flags.BoolVarP(&o.verbose, "verbose", "v", false,
		"Print the outcome of every access")
	flags.BoolVar(&o.unifiedStamps, "unified-stamps", false,
		"Refresh the LRU time of stores that hit like any other access")
	flags.StringVar(&o.dbPath, "db", "",
		"Record every access into <db>.sqlite3 (default $"+envDB+")")
	flags.BoolVar(&o.json, "json", false,
		"Also print the statistics as JSON")
	flags.StringVar(&o.resultsFile, "results-file", report.ResultsFileName,
		"File to write the raw results to, empty to skip")
	flags.BoolVar(&o.monitor, "monitor", false,
		"Serve the live state of the cache over HTTP")
	flags.IntVar(&o.monitorPort, "monitor-port", 0,
		"Port of the monitoring server (default $"+envMonitorPort+
			", random if unset)")
	flags.BoolVar(&o.openBrowser, "open-browser", false,
		"Open the monitoring page in the browser")

	for _, name := range []string{"set-bits", "lines", "block-bits", "trace"} {
		err := rootCmd.MarkFlagRequired(name)
		if err != nil {
			panic(err)
		}
	}

	return rootCmd
}

func newLogger() log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	return logger
}

// Execute runs the csim command and exits with status 1 if it fails.
func Execute() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: cannot load .env: %v\n", err)
	}

	err = NewRootCommand().Execute()
	if err != nil {
		logger := newLogger()
		level.Error(logger).Log(
			"msg", "simulation failed",
			"code", errors.GetCode(err),
			"err", err,
		)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

package cmd

import (
	"os"
	"strconv"

	"github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"

	"github.com/sarchlab/csim/mem/cache"
)

const (
	envDB          = "CSIM_DB"
	envMonitorPort = "CSIM_MONITOR_PORT"

	// maxSetBits bounds the number of sets that are allocated up front.
	maxSetBits = 24
)

type options struct {
	log2NumSets   int
	numWays       int
	log2BlockSize int
	traceFile     string
	verbose       bool
	unifiedStamps bool
	dbPath        string
	json          bool
	resultsFile   string
	monitor       bool
	monitorPort   int
	openBrowser   bool
}

// applyEnv fills the flags that were not given on the command line from the
// environment.
func (o *options) applyEnv(cmd *cobra.Command) error {
	flags := cmd.Flags()

	if v, ok := os.LookupEnv(envDB); ok && !flags.Changed("db") {
		o.dbPath = v
	}

	if v, ok := os.LookupEnv(envMonitorPort); ok && !flags.Changed("monitor-port") {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.WithContext(
				errors.Wrapf(err, errors.CodeInvalidConfig,
					"invalid %s", envMonitorPort),
				"value", v)
		}

		o.monitorPort = port
	}

	return nil
}

func (o *options) validate() error {
	geometry := map[string]interface{}{
		"s": o.log2NumSets,
		"E": o.numWays,
		"b": o.log2BlockSize,
	}

	switch {
	case o.log2NumSets < 0 || o.numWays < 0 || o.log2BlockSize < 0:
		return errors.WithContextMap(
			errors.New(errors.CodeInvalidConfig,
				"cache parameters must not be negative"),
			geometry)
	case o.numWays == 0:
		return errors.WithContextMap(
			errors.New(errors.CodeInvalidConfig,
				"a set needs at least one line"),
			geometry)
	case o.log2NumSets+o.log2BlockSize > 64:
		return errors.WithContextMap(
			errors.New(errors.CodeInvalidConfig,
				"set and block bits exceed a 64-bit address"),
			geometry)
	case o.log2NumSets > maxSetBits:
		return errors.WithContextMap(
			errors.Newf(errors.CodeInvalidConfig,
				"at most %d set bits are supported", maxSetBits),
			geometry)
	}

	if o.traceFile == "" {
		return errors.New(errors.CodeInvalidConfig, "no trace file given")
	}

	if o.dbPath != "" {
		filename := o.dbPath + ".sqlite3"
		if _, err := os.Stat(filename); err == nil {
			return errors.WithContext(
				errors.New(errors.CodeAlreadyExists,
					"refusing to overwrite an existing database"),
				"file", filename)
		}
	}

	return nil
}

func (o *options) stampPolicy() cache.StampPolicy {
	if o.unifiedStamps {
		return cache.UnifiedStamps
	}

	return cache.LegacyStamps
}

func (o *options) geometry() cache.Geometry {
	return cache.Geometry{
		Log2NumSets:   uint32(o.log2NumSets),
		NumWays:       uint32(o.numWays),
		Log2BlockSize: uint32(o.log2BlockSize),
	}
}

// Package report renders the final statistics of a simulation.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jmgilman/go/errors"

	"github.com/sarchlab/csim/mem/cache"
)

// ResultsFileName is the file the results are written to by default.
const ResultsFileName = ".csim_results"

// Summary prints the one-line summary of the statistics.
func Summary(w io.Writer, stats cache.FinalStats) error {
	_, err := fmt.Fprintf(w,
		"hits:%d misses:%d evictions:%d dirty_bytes_in_cache:%d dirty_bytes_evicted:%d\n",
		stats.Hits,
		stats.Misses,
		stats.Evictions,
		stats.DirtyBytes,
		stats.DirtyEvictionsBytes,
	)

	return err
}

// WriteResults writes the statistics as space-separated numbers.
func WriteResults(w io.Writer, stats cache.FinalStats) error {
	_, err := fmt.Fprintf(w, "%d %d %d %d %d\n",
		stats.Hits,
		stats.Misses,
		stats.Evictions,
		stats.DirtyBytes,
		stats.DirtyEvictionsBytes,
	)

	return err
}

// WriteResultsFile replaces the file at path with the statistics.
func WriteResultsFile(path string, stats cache.FinalStats) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithContext(
			errors.Wrap(err, errors.CodeExecutionFailed,
				"cannot create results file"),
			"path", path)
	}

	err = WriteResults(f, stats)
	if err != nil {
		f.Close()

		return errors.WithContext(
			errors.Wrap(err, errors.CodeExecutionFailed,
				"cannot write results file"),
			"path", path)
	}

	return f.Close()
}

// JSON writes the statistics as an indented JSON object.
func JSON(w io.Writer, stats cache.FinalStats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(stats)
}

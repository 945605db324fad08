package accesstrace

import (
	"context"
	"io"

	"github.com/jmgilman/go/errors"

	"github.com/sarchlab/csim/mem/cache"
)

// Simulator is anything that can serve a memory access.
type Simulator interface {
	Access(kind cache.AccessKind, addr uint64) cache.AccessResult
}

// Progress gets notified as accesses complete.
type Progress interface {
	IncrementFinished(amount uint64)
}

// Replay feeds every access of the trace, in order, to the simulator. It
// stops at the first malformed line or when ctx is cancelled, and returns the
// number of accesses processed. progress may be nil.
func Replay(
	ctx context.Context,
	r *Reader,
	sim Simulator,
	progress Progress,
) (uint64, error) {
	count := uint64(0)

	for {
		if err := ctx.Err(); err != nil {
			return count, errors.WithContext(
				errors.Wrap(err, errors.CodeExecutionFailed, "replay interrupted"),
				"line_number", r.Line())
		}

		a, err := r.Next()
		if err == io.EOF {
			return count, nil
		}

		if err != nil {
			return count, err
		}

		sim.Access(a.Kind, a.Address)
		count++

		if progress != nil {
			progress.IncrementFinished(1)
		}
	}
}

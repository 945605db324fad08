package accesstrace

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/jmgilman/go/errors"
)

// Reader reads accesses from a trace one line at a time.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Open opens a trace file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.WithContext(
			errors.Wrap(err, errors.CodeNotFound, "trace file not found"),
			"path", path)
	}

	if err != nil {
		return nil, errors.WithContext(
			errors.Wrap(err, errors.CodeExecutionFailed, "cannot open trace file"),
			"path", path)
	}

	r := NewReader(f)
	r.closer = f

	return r, nil
}

// Line returns the number of the last line read, starting from 1.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next access. Blank lines are skipped. It returns io.EOF
// once the trace is exhausted.
func (r *Reader) Next() (Access, error) {
	for r.scanner.Scan() {
		r.line++

		text := r.scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		a, err := Parse(text)
		if err != nil {
			return Access{}, errors.WithContext(err, "line_number", r.line)
		}

		a.Line = r.line

		return a, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Access{}, errors.WithContext(
			errors.Wrap(err, errors.CodeExecutionFailed, "cannot read trace"),
			"line_number", r.line)
	}

	return Access{}, io.EOF
}

// Close closes the underlying file, if the Reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer.Close()
}

// Package accesstrace reads memory-access traces and replays them against a
// cache.
//
// A trace has one access per line:
//
//	L 10,1
//	S 18,8
//
// The operation is L (load) or S (store), followed by a hexadecimal address
// and a decimal access size. The size is kept for reporting only.
package accesstrace

import (
	"strconv"
	"strings"

	"github.com/jmgilman/go/errors"

	"github.com/sarchlab/csim/mem/cache"
)

// Access is one parsed trace line.
type Access struct {
	Kind    cache.AccessKind
	Address uint64
	Size    int
	Line    int
}

// Parse parses a single trace line. The returned error carries the line and
// whatever fields could be parsed before the failure.
func Parse(line string) (Access, error) {
	a := Access{}
	partial := map[string]interface{}{"line": line}

	fields := strings.Fields(line)
	if len(fields) != 2 {
		return a, errors.WithContextMap(
			errors.Newf(errors.CodeInvalidInput,
				"expected \"<op> <addr>,<size>\", got %d fields", len(fields)),
			partial)
	}

	op := fields[0]
	partial["op"] = op

	switch op {
	case "L":
		a.Kind = cache.Load
	case "S":
		a.Kind = cache.Store
	default:
		return a, errors.WithContextMap(
			errors.Newf(errors.CodeInvalidInput, "unknown operation %q", op),
			partial)
	}

	addrStr, sizeStr, found := strings.Cut(fields[1], ",")
	if !found {
		return a, errors.WithContextMap(
			errors.New(errors.CodeInvalidInput, "missing size after address"),
			partial)
	}

	addr, err := parseHex(addrStr)
	if err != nil {
		return a, errors.WithContextMap(
			errors.Wrapf(err, errors.CodeInvalidInput,
				"invalid address %q", addrStr),
			partial)
	}

	a.Address = addr
	partial["address"] = addr

	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return a, errors.WithContextMap(
			errors.Wrapf(err, errors.CodeInvalidInput, "invalid size %q", sizeStr),
			partial)
	}

	a.Size = size

	return a, nil
}

func parseHex(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	return strconv.ParseUint(s, 16, 64)
}

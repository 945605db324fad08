// Package trace provides hooks that record every access of a cache.
package trace

import (
	"fmt"

	kitlog "github.com/go-kit/log"

	"github.com/sarchlab/csim/datarecording"
	"github.com/sarchlab/csim/mem/cache"
	"github.com/sarchlab/csim/sim/hooking"
)

// AccessTableName is the table the DB tracer writes to.
const AccessTableName = "cache_accesses"

// accessEntry represents a cache access in the database
type accessEntry struct {
	Cache        string
	Stamp        uint64
	Kind         string
	Address      string
	SetID        int
	WayID        int
	Tag          string
	Hit          bool
	Evicted      bool
	DirtyEvicted bool
}

// Describe summarizes the outcome of an access the way verbose simulators
// print it, e.g. "miss eviction".
func Describe(result cache.AccessResult) string {
	switch {
	case result.Hit:
		return "hit"
	case result.DirtyEvicted:
		return "miss dirty-eviction"
	case result.Evicted:
		return "miss eviction"
	default:
		return "miss"
	}
}

func accessOf(ctx hooking.HookCtx) (cache.AccessResult, bool) {
	if ctx.Pos != cache.HookPosAccess {
		return cache.AccessResult{}, false
	}

	result, ok := ctx.Item.(cache.AccessResult)

	return result, ok
}

func domainName(ctx hooking.HookCtx) string {
	if ctx.Domain == nil {
		return ""
	}

	return ctx.Domain.Name()
}

// A logTracer writes one logfmt record per access.
type logTracer struct {
	logger kitlog.Logger
}

// NewLogTracer creates a tracer that logs every access with the given logger.
func NewLogTracer(logger kitlog.Logger) hooking.Hook {
	return &logTracer{logger: logger}
}

// Func logs the access.
func (t *logTracer) Func(ctx hooking.HookCtx) {
	result, ok := accessOf(ctx)
	if !ok {
		return
	}

	_ = t.logger.Log(
		"cache", domainName(ctx),
		"op", result.Kind.Symbol(),
		"addr", fmt.Sprintf("0x%x", result.Address),
		"set", result.SetID,
		"way", result.WayID,
		"result", Describe(result),
	)
}

// A dbTracer records every access into a database using the data recorder.
type dbTracer struct {
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates a tracer that inserts one row per access into the
// cache_accesses table.
func NewDBTracer(dataRecorder datarecording.DataRecorder) hooking.Hook {
	t := &dbTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(AccessTableName, accessEntry{})

	return t
}

// Func records the access.
func (t *dbTracer) Func(ctx hooking.HookCtx) {
	result, ok := accessOf(ctx)
	if !ok {
		return
	}

	entry := accessEntry{
		Cache:        domainName(ctx),
		Stamp:        result.Stamp,
		Kind:         result.Kind.Symbol(),
		Address:      fmt.Sprintf("0x%x", result.Address),
		SetID:        result.SetID,
		WayID:        result.WayID,
		Tag:          fmt.Sprintf("0x%x", result.Tag),
		Hit:          result.Hit,
		Evicted:      result.Evicted,
		DirtyEvicted: result.DirtyEvicted,
	}

	t.dataRecorder.InsertData(AccessTableName, entry)
}

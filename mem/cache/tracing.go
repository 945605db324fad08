package cache

import (
	"github.com/sarchlab/csim/sim/hooking"
)

// HookPosAccess marks the completion of an access. The hook item is the
// AccessResult.
var HookPosAccess = &hooking.HookPos{Name: "Cache Access"}

func (c *Cache) traceAccess(result AccessResult) {
	ctx := hooking.HookCtx{
		Domain: c,
		Pos:    HookPosAccess,
		Item:   result,
	}

	c.InvokeHook(ctx)
}

package hooking

import (
	"sync"
)

// Tagged is an item that describes itself with a list of tags.
type Tagged interface {
	Tags() []string
}

// OutcomeCounter counts how many times each tag is reported by the items
// passed to hooks. Items that are not Tagged are ignored.
type OutcomeCounter struct {
	pos  *HookPos
	lock sync.Mutex

	tagNames []string
	tagCount map[string]uint64
}

// NewOutcomeCounter creates a new OutcomeCounter that only listens to the
// given position. A nil position listens to every position.
func NewOutcomeCounter(pos *HookPos) *OutcomeCounter {
	return &OutcomeCounter{
		pos:      pos,
		tagCount: make(map[string]uint64),
	}
}

// Func counts the tags of the hooked item.
func (c *OutcomeCounter) Func(ctx HookCtx) {
	if c.pos != nil && ctx.Pos != c.pos {
		return
	}

	item, ok := ctx.Item.(Tagged)
	if !ok {
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	for _, tag := range item.Tags() {
		c.countTag(tag)
	}
}

func (c *OutcomeCounter) countTag(tag string) {
	_, ok := c.tagCount[tag]
	if !ok {
		c.tagNames = append(c.tagNames, tag)
	}

	c.tagCount[tag]++
}

// TagNames returns all the tag names in the order they were first seen.
func (c *OutcomeCounter) TagNames() []string {
	c.lock.Lock()
	defer c.lock.Unlock()

	names := make([]string, len(c.tagNames))
	copy(names, c.tagNames)

	return names
}

// Count returns the number of times a tag has been seen.
func (c *OutcomeCounter) Count(tag string) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.tagCount[tag]
}

// Package cache provides a trace-driven model of a set-associative,
// write-back cache with LRU replacement.
package cache

import (
	"sync"

	"github.com/sarchlab/csim/mem/cache/internal/tagging"
	"github.com/sarchlab/csim/sim/hooking"
)

// Cache models the tag state of a cache. It never stores data; it only keeps
// track of which blocks are resident, which are dirty, and how often accesses
// hit, miss, and evict.
type Cache struct {
	hooking.HookableBase

	name         string
	geometry     Geometry
	stampPolicy  StampPolicy
	tags         tagging.TagArray
	victimFinder tagging.VictimFinder

	lock           sync.RWMutex
	stamp          uint64
	hits           uint64
	misses         uint64
	evictions      uint64
	dirtyEvictions uint64
}

// Line is a snapshot of one cache line.
type Line struct {
	SetID    int    `json:"set_id"`
	WayID    int    `json:"way_id"`
	Valid    bool   `json:"valid"`
	Tag      uint64 `json:"tag"`
	Dirty    bool   `json:"dirty"`
	LastUsed uint64 `json:"last_used"`
}

// Name returns the name of the cache.
func (c *Cache) Name() string {
	return c.name
}

// Geometry returns the shape of the cache.
func (c *Cache) Geometry() Geometry {
	return c.geometry
}

// StampPolicy returns how hits refresh the LRU time of a line.
func (c *Cache) StampPolicy() StampPolicy {
	return c.stampPolicy
}

// Stamp returns the logical time, which equals the number of accesses
// processed so far.
func (c *Cache) Stamp() uint64 {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.stamp
}

// Line returns a snapshot of the line at the given position.
func (c *Cache) Line(setID, wayID int) Line {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return lineFromBlock(c.tags.GetBlock(setID, wayID))
}

// Set returns snapshots of all the lines of a set.
func (c *Cache) Set(setID int) []Line {
	c.lock.RLock()
	defer c.lock.RUnlock()

	lines := make([]Line, c.tags.NumWays())
	for wayID := range lines {
		lines[wayID] = lineFromBlock(c.tags.GetBlock(setID, wayID))
	}

	return lines
}

func lineFromBlock(block tagging.Block) Line {
	return Line{
		SetID:    block.SetID,
		WayID:    block.WayID,
		Valid:    block.IsValid,
		Tag:      block.Tag,
		Dirty:    block.IsDirty,
		LastUsed: block.LastUsed,
	}
}

// Load simulates reading addr.
func (c *Cache) Load(addr uint64) AccessResult {
	return c.Access(Load, addr)
}

// Store simulates writing addr.
func (c *Cache) Store(addr uint64) AccessResult {
	return c.Access(Store, addr)
}

// Access simulates one memory access and advances the logical time by one.
func (c *Cache) Access(kind AccessKind, addr uint64) AccessResult {
	c.lock.Lock()
	result := c.access(kind, addr)
	c.lock.Unlock()

	if c.NumHooks() > 0 {
		c.traceAccess(result)
	}

	return result
}

func (c *Cache) access(kind AccessKind, addr uint64) AccessResult {
	a := c.tags.Decompose(addr)
	result := AccessResult{
		Kind:    kind,
		Address: addr,
		Stamp:   c.stamp,
		SetID:   a.SetID,
		WayID:   -1,
		Tag:     a.Tag,
	}

	block, found := c.tags.Lookup(addr)
	if found {
		c.hit(kind, block, &result)
	} else {
		c.miss(kind, addr, a.Tag, &result)
	}

	c.stamp++

	return result
}

func (c *Cache) hit(kind AccessKind, block tagging.Block, result *AccessResult) {
	c.hits++

	block.LastUsed = c.stamp
	if kind == Store {
		block.IsDirty = true

		if c.stampPolicy == LegacyStamps {
			block.LastUsed = 0
		}
	}

	c.tags.Update(block)

	result.Hit = true
	result.WayID = block.WayID
}

func (c *Cache) miss(
	kind AccessKind,
	addr uint64,
	tag uint64,
	result *AccessResult,
) {
	c.misses++

	victim, ok := c.victimFinder.FindVictim(c.tags, addr)
	if !ok {
		return
	}

	if victim.IsValid {
		c.evictions++
		result.Evicted = true
		result.EvictedTag = victim.Tag

		if victim.IsDirty {
			c.dirtyEvictions++
			result.DirtyEvicted = true
		}
	}

	victim.IsValid = true
	victim.Tag = tag
	victim.IsDirty = kind == Store
	victim.LastUsed = c.stamp
	c.tags.Update(victim)

	result.WayID = victim.WayID
}

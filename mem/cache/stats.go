package cache

// Counters are the running totals of a cache. DirtyEvictions is a count of
// lines, not bytes.
type Counters struct {
	Accesses       uint64 `json:"accesses"`
	Hits           uint64 `json:"hits"`
	Misses         uint64 `json:"misses"`
	Evictions      uint64 `json:"evictions"`
	DirtyEvictions uint64 `json:"dirty_evictions"`
}

// FinalStats is the summary reported once a trace has been replayed.
// Hits, Misses, and Evictions are counts. The two dirty figures are bytes.
type FinalStats struct {
	Hits                uint64 `json:"hits"`
	Misses              uint64 `json:"misses"`
	Evictions           uint64 `json:"evictions"`
	DirtyEvictionsBytes uint64 `json:"dirty_evictions_bytes"`
	DirtyBytes          uint64 `json:"dirty_bytes"`
}

// Counters returns the running totals.
func (c *Cache) Counters() Counters {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return Counters{
		Accesses:       c.stamp,
		Hits:           c.hits,
		Misses:         c.misses,
		Evictions:      c.evictions,
		DirtyEvictions: c.dirtyEvictions,
	}
}

// DirtyLines counts the lines that hold stored data not yet written back.
func (c *Cache) DirtyLines() uint64 {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.countDirtyLines()
}

func (c *Cache) countDirtyLines() uint64 {
	count := uint64(0)

	for setID := 0; setID < c.tags.NumSets(); setID++ {
		for wayID := 0; wayID < c.tags.NumWays(); wayID++ {
			if c.tags.GetBlock(setID, wayID).IsDirty {
				count++
			}
		}
	}

	return count
}

// Finalize scans every line and produces the final summary. It does not
// change the state of the cache, so it can be called more than once.
func (c *Cache) Finalize() FinalStats {
	c.lock.RLock()
	defer c.lock.RUnlock()

	blockSize := c.geometry.BlockSize()

	return FinalStats{
		Hits:                c.hits,
		Misses:              c.misses,
		Evictions:           c.evictions,
		DirtyEvictionsBytes: c.dirtyEvictions * blockSize,
		DirtyBytes:          c.countDirtyLines() * blockSize,
	}
}

package tagging

// A VictimFinder decides which block should be filled by a missing address.
type VictimFinder interface {
	FindVictim(tags TagArray, addr uint64) (Block, bool)
}

// LRUVictimFinder fills the first invalid block of a set, and otherwise picks
// the least recently used one.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the block to replace in the set of addr. The lowest
// indexed invalid block wins. When the set is full, the block with the
// smallest LastUsed is returned; ties go to the lowest way index. The second
// return value is false only for a set without ways.
func (e *LRUVictimFinder) FindVictim(tags TagArray, addr uint64) (Block, bool) {
	set, _ := tags.GetSet(addr)

	for _, block := range set.Blocks {
		if !block.IsValid {
			return block, true
		}
	}

	if len(set.Blocks) == 0 {
		return Block{}, false
	}

	victim := set.Blocks[0]
	for _, block := range set.Blocks[1:] {
		if block.LastUsed < victim.LastUsed {
			victim = block
		}
	}

	return victim, true
}

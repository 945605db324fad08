// Package tagging holds the tag array of a set-associative cache.
package tagging

// TagArray tracks which memory blocks are resident in the cache.
type TagArray interface {
	Decompose(addr uint64) Address
	Lookup(addr uint64) (Block, bool)
	Update(block Block)
	GetSet(addr uint64) (set *Set, setID int)
	GetBlock(setID, wayID int) Block
	NumSets() int
	NumWays() int
	BlockSize() uint64
	Reset()
}

// NewTagArray creates a tag array with 2^log2NumSets sets, numWays ways per
// set and 2^log2BlockSize bytes per block. All blocks start invalid.
func NewTagArray(
	log2NumSets uint32,
	numWays int,
	log2BlockSize uint32,
) TagArray {
	t := &tagArrayImpl{
		Log2NumSets:   log2NumSets,
		NumWaysPerSet: numWays,
		Log2BlockSize: log2BlockSize,
		setMask:       lowBitMask(log2NumSets),
		offsetMask:    lowBitMask(log2BlockSize),
	}

	t.Reset()

	return t
}

// A Block of a cache is the information that is associated with a cache line
type Block struct {
	Tag      uint64
	SetID    int
	WayID    int
	IsValid  bool
	IsDirty  bool
	LastUsed uint64
}

// A Set is a list of blocks where a certain piece memory can be stored at.
type Set struct {
	Blocks []Block
}

// Address is an address split into its tag, set index and block offset.
type Address struct {
	Tag    uint64
	SetID  int
	Offset uint64
}

type tagArrayImpl struct {
	Log2NumSets   uint32
	NumWaysPerSet int
	Log2BlockSize uint32
	Sets          []Set

	setMask    uint64
	offsetMask uint64
}

// lowBitMask returns a mask with the lowest n bits set.
func lowBitMask(n uint32) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << n) - 1
}

// TotalSize returns the maximum number of bytes can be stored in the cache
func (d *tagArrayImpl) TotalSize() uint64 {
	return uint64(len(d.Sets)) * uint64(d.NumWaysPerSet) * d.BlockSize()
}

// NumSets returns the number of sets.
func (d *tagArrayImpl) NumSets() int {
	return len(d.Sets)
}

// NumWays returns the number of blocks in each set.
func (d *tagArrayImpl) NumWays() int {
	return d.NumWaysPerSet
}

// BlockSize returns the number of bytes in a block.
func (d *tagArrayImpl) BlockSize() uint64 {
	return uint64(1) << d.Log2BlockSize
}

// Decompose splits an address. Shifting by 64 bits or more yields zero, so a
// geometry that consumes the whole address maps everything to tag 0.
func (d *tagArrayImpl) Decompose(addr uint64) Address {
	return Address{
		Tag:    addr >> (uint64(d.Log2NumSets) + uint64(d.Log2BlockSize)),
		SetID:  int((addr >> d.Log2BlockSize) & d.setMask),
		Offset: addr & d.offsetMask,
	}
}

// GetSet returns the set that a certain address should store at
func (d *tagArrayImpl) GetSet(addr uint64) (set *Set, setID int) {
	setID = d.Decompose(addr).SetID
	set = &d.Sets[setID]

	return
}

// Lookup finds the valid block that holds addr.
func (d *tagArrayImpl) Lookup(addr uint64) (Block, bool) {
	a := d.Decompose(addr)
	for _, block := range d.Sets[a.SetID].Blocks {
		if block.IsValid && block.Tag == a.Tag {
			return block, true
		}
	}

	return Block{}, false
}

// GetBlock returns a copy of the block at the given position.
func (d *tagArrayImpl) GetBlock(setID, wayID int) Block {
	return d.Sets[setID].Blocks[wayID]
}

// Update updates the block information
func (d *tagArrayImpl) Update(block Block) {
	d.Sets[block.SetID].Blocks[block.WayID] = block
}

// Reset will mark all the blocks in the directory invalid
func (d *tagArrayImpl) Reset() {
	numSets := 1 << d.Log2NumSets

	d.Sets = make([]Set, numSets)
	for i := 0; i < numSets; i++ {
		d.Sets[i].Blocks = make([]Block, d.NumWaysPerSet)
		for j := 0; j < d.NumWaysPerSet; j++ {
			d.Sets[i].Blocks[j] = Block{
				SetID: i,
				WayID: j,
			}
		}
	}
}

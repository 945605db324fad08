package cache

import (
	"github.com/sarchlab/csim/mem/cache/internal/tagging"
	"github.com/sarchlab/csim/sim/naming"
)

// StampPolicy decides which logical time a hit writes into a line.
type StampPolicy int

const (
	// LegacyStamps resets a line to time 0 on a store hit and stamps it with
	// the current time on a load hit. A line refreshed by a store therefore
	// looks older than any line touched by a load.
	LegacyStamps StampPolicy = iota

	// UnifiedStamps stamps a line with the current time on every hit.
	UnifiedStamps
)

// String returns the name of the policy.
func (p StampPolicy) String() string {
	switch p {
	case LegacyStamps:
		return "legacy"
	case UnifiedStamps:
		return "unified"
	default:
		return "unknown"
	}
}

// Geometry is the shape of a cache.
type Geometry struct {
	// Log2NumSets is s, the number of set-index bits.
	Log2NumSets uint32
	// NumWays is E, the number of lines in each set.
	NumWays uint32
	// Log2BlockSize is b, the number of block-offset bits.
	Log2BlockSize uint32
}

// NumSets returns 2^s.
func (g Geometry) NumSets() uint64 {
	return uint64(1) << g.Log2NumSets
}

// BlockSize returns 2^b.
func (g Geometry) BlockSize() uint64 {
	return uint64(1) << g.Log2BlockSize
}

// Builder can build caches.
type Builder struct {
	log2NumSets   uint32
	numWays       uint32
	log2BlockSize uint32
	stampPolicy   StampPolicy
	replacePolicy string
}

// MakeBuilder creates a new builder with a 16-set, 1-way, 16-byte-block cache.
func MakeBuilder() Builder {
	return Builder{
		log2NumSets:   4,
		numWays:       1,
		log2BlockSize: 4,
		stampPolicy:   LegacyStamps,
		replacePolicy: "lru",
	}
}

// WithLog2NumSets sets the number of set-index bits.
func (b Builder) WithLog2NumSets(s uint32) Builder {
	b.log2NumSets = s
	return b
}

// WithWayAssociativity sets the number of lines per set.
func (b Builder) WithWayAssociativity(e uint32) Builder {
	b.numWays = e
	return b
}

// WithLog2BlockSize sets the number of block-offset bits.
func (b Builder) WithLog2BlockSize(bits uint32) Builder {
	b.log2BlockSize = bits
	return b
}

// WithGeometry sets s, E, and b at once.
func (b Builder) WithGeometry(g Geometry) Builder {
	b.log2NumSets = g.Log2NumSets
	b.numWays = g.NumWays
	b.log2BlockSize = g.Log2BlockSize

	return b
}

// WithStampPolicy sets how hits refresh the LRU time of a line.
func (b Builder) WithStampPolicy(p StampPolicy) Builder {
	b.stampPolicy = p
	return b
}

// Build creates the cache. All lines start invalid and clean. It panics if
// the name does not follow the naming convention of package naming.
func (b Builder) Build(name string) *Cache {
	naming.MustBeValid(name)

	c := &Cache{
		name: name,
		geometry: Geometry{
			Log2NumSets:   b.log2NumSets,
			NumWays:       b.numWays,
			Log2BlockSize: b.log2BlockSize,
		},
		stampPolicy: b.stampPolicy,
	}

	c.tags = tagging.NewTagArray(
		b.log2NumSets, int(b.numWays), b.log2BlockSize)
	c.victimFinder = b.createVictimFinder()

	return c
}

func (b Builder) createVictimFinder() tagging.VictimFinder {
	var victimFinder tagging.VictimFinder

	switch b.replacePolicy {
	case "lru":
		victimFinder = tagging.NewLRUVictimFinder()
	default:
		panic("unknown replace strategy: " + b.replacePolicy)
	}

	return victimFinder
}

// New creates a cache with 2^s sets of E lines holding 2^b-byte blocks.
func New(s, e, b uint32) *Cache {
	return MakeBuilder().
		WithLog2NumSets(s).
		WithWayAssociativity(e).
		WithLog2BlockSize(b).
		Build("Cache")
}

package cache

// AccessKind tells whether an access reads or writes memory.
type AccessKind int

// The kinds of accesses a trace can contain.
const (
	Load AccessKind = iota
	Store
)

// String returns "load" or "store".
func (k AccessKind) String() string {
	switch k {
	case Load:
		return "load"
	case Store:
		return "store"
	default:
		return "unknown"
	}
}

// Symbol returns the one-letter trace symbol of the kind.
func (k AccessKind) Symbol() string {
	switch k {
	case Load:
		return "L"
	case Store:
		return "S"
	default:
		return "?"
	}
}

// AccessResult describes what happened during one access.
type AccessResult struct {
	Kind    AccessKind
	Address uint64
	Stamp   uint64

	SetID int
	WayID int
	Tag   uint64

	Hit          bool
	Evicted      bool
	DirtyEvicted bool
	EvictedTag   uint64
}

// Tags lists the outcomes of the access, such as "load-miss" and "eviction".
func (r AccessResult) Tags() []string {
	tags := make([]string, 0, 3)

	if r.Hit {
		tags = append(tags, r.Kind.String()+"-hit")
	} else {
		tags = append(tags, r.Kind.String()+"-miss")
	}

	if r.Evicted {
		tags = append(tags, "eviction")
	}

	if r.DirtyEvicted {
		tags = append(tags, "dirty-eviction")
	}

	return tags
}

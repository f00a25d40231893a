package core

// Interner deduplicates domain/client/upstream strings into small integer
// handles. It is backed by a single growable byte arena plus a hash index,
// per §4.1. The arena is append-only within a process; Flush is the only
// operation that tears it down, and it must only be called by a caller
// already holding the Core mutex (flush invalidates every handle at once).
type Interner struct {
	arena   []byte
	offsets []int32
	lengths []int32
	index   map[string]Handle
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{
		index: make(map[string]Handle, 1024),
	}
}

// Intern returns the handle for s, assigning a new one if s has not been
// seen before. Interning is idempotent: equal bytes always yield the same
// handle; different strings always yield different handles.
func (in *Interner) Intern(s string) Handle {
	if h, ok := in.index[s]; ok {
		return h
	}
	h := Handle(len(in.offsets))
	off := int32(len(in.arena))
	in.arena = append(in.arena, s...)
	in.offsets = append(in.offsets, off)
	in.lengths = append(in.lengths, int32(len(s)))
	in.index[s] = h
	return h
}

// Get returns the bytes for a handle. Callers must not retain the returned
// string across a Flush, and must not retain it across an Intern call that
// could grow the arena if they need a stable backing array — Get returns a
// fresh string header each time, so this is safe for the common case of
// "look it up, format it, move on".
func (in *Interner) Get(h Handle) string {
	if h == NoHandle || int(h) >= len(in.offsets) {
		return ""
	}
	off := in.offsets[h]
	length := in.lengths[h]
	return string(in.arena[off : off+length])
}

// Len returns the number of distinct interned strings.
func (in *Interner) Len() int {
	return len(in.offsets)
}

// Flush discards every interned string and handle. Only valid as part of an
// explicit, whole-Core tear-down (log-flush): every table keyed by a handle
// from this interner must be cleared in the same operation.
func (in *Interner) Flush() {
	in.arena = in.arena[:0]
	in.offsets = in.offsets[:0]
	in.lengths = in.lengths[:0]
	in.index = make(map[string]Handle, 1024)
}

package depnode

// Allocator hands out node ids above every id that existed when it was created
type Allocator struct {
	base int
	last int
}

// NewAllocator scans existing once. An empty scan yields base 0.
func NewAllocator(existing []int) *Allocator {
	base := 0
	for _, id := range existing {
		if id > base {
			base = id
		}
	}
	return &Allocator{base: base, last: base}
}

// Next returns base+1, base+2, ... on successive calls
func (a *Allocator) Next() int {
	a.last++
	return a.last
}

// Base returns the highest pre-existing id seen at construction
func (a *Allocator) Base() int {
	return a.base
}

// Allocated returns how many ids Next has handed out
func (a *Allocator) Allocated() int {
	return a.last - a.base
}

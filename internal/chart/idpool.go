package chart

// IDAllocator hands out the smallest positive id not currently in use.
// Each chart owns one allocator per overlay family, so id scope is explicit.
type IDAllocator struct {
	inUse map[int]bool
}

// NewIDAllocator creates an empty allocator.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{inUse: make(map[int]bool)}
}

// Acquire reserves and returns the lowest free id, starting at 1.
func (a *IDAllocator) Acquire() int {
	id := 1
	for a.inUse[id] {
		id++
	}
	a.inUse[id] = true
	return id
}

// Release returns id to the pool. It reports false if id was not in use.
func (a *IDAllocator) Release(id int) bool {
	if !a.inUse[id] {
		return false
	}
	delete(a.inUse, id)
	return true
}

// InUse reports whether id is currently reserved.
func (a *IDAllocator) InUse(id int) bool {
	return a.inUse[id]
}

// Len returns the number of reserved ids.
func (a *IDAllocator) Len() int {
	return len(a.inUse)
}

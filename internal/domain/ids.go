package domain

import (
	"fmt"
	"math"
)

// Counters is the persisted form of an IDAllocator.
type Counters struct {
	NextProductID uint64
	NextListingID uint64
	NextOrderID   uint64
}

// IDAllocator hands out monotonically increasing ids per entity type.
// Ids start at 0 and are never reused. An allocation that would need to
// advance a counter past math.MaxUint64 fails with ErrIDSpaceExhausted and
// leaves the counter untouched.
type IDAllocator struct {
	c Counters
}

// NewIDAllocator returns an allocator whose counters all start at 0.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// RestoreIDAllocator returns an allocator resuming from saved counters.
func RestoreIDAllocator(c Counters) *IDAllocator {
	return &IDAllocator{c: c}
}

// NextProductID allocates a product id.
func (a *IDAllocator) NextProductID() (uint64, error) {
	return allocate(&a.c.NextProductID, "product")
}

// NextListingID allocates a listing id.
func (a *IDAllocator) NextListingID() (uint64, error) {
	return allocate(&a.c.NextListingID, "listing")
}

// NextOrderID allocates an order id.
func (a *IDAllocator) NextOrderID() (uint64, error) {
	return allocate(&a.c.NextOrderID, "order")
}

// ProductIssued reports whether id has been handed out as a product id.
// Products are never deleted, so this doubles as the existence check.
func (a *IDAllocator) ProductIssued(id uint64) bool {
	return id < a.c.NextProductID
}

// Counters returns the current counter values.
func (a *IDAllocator) Counters() Counters {
	return a.c
}

func allocate(counter *uint64, kind string) (uint64, error) {
	if *counter == math.MaxUint64 {
		return 0, fmt.Errorf("%w: %s", ErrIDSpaceExhausted, kind)
	}
	id := *counter
	*counter++
	return id, nil
}

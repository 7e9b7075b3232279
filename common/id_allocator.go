package common

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxCapacity is returned when an allocator has no free id left.
	ErrMaxCapacity = errors.New("max capacity reached")

	// ErrIdNotAllocated is returned when freeing an id that is out of range or already free.
	ErrIdNotAllocated = errors.New("id not allocated")
)

// LinearIdAllocator hands out ids in [0, capacity) from a fixed arena.
//
// uids[:numUsed] holds the live ids and uids[numUsed:] the free ones. uidToIndex is the
// inverse permutation, so uidToIndex[uids[i]] == i for every i. Freeing swaps the id with
// the last live one and shrinks the live range, which keeps both operations O(1).
type LinearIdAllocator struct {
	uids       []uint32
	uidToIndex []int
	numUsed    int
}

// NewLinearIdAllocator creates an allocator able to hold capacity live ids at once.
// Panics when capacity is not positive.
//
// Parameters:
//   - capacity: the maximum number of simultaneously allocated ids
//
// Returns:
//   - *LinearIdAllocator: the allocator with every id free
func NewLinearIdAllocator(capacity int) *LinearIdAllocator {
	if capacity <= 0 {
		panic(fmt.Sprintf("id allocator capacity must be positive, got %d", capacity))
	}
	a := &LinearIdAllocator{
		uids:       make([]uint32, capacity),
		uidToIndex: make([]int, capacity),
	}
	for i := range capacity {
		a.uids[i] = uint32(i)
		a.uidToIndex[i] = i
	}
	return a
}

// Allocate returns the next free id, or ErrMaxCapacity when every id is live.
func (a *LinearIdAllocator) Allocate() (uint32, error) {
	if a.numUsed == len(a.uids) {
		return 0, fmt.Errorf("allocate id (capacity %d): %w", len(a.uids), ErrMaxCapacity)
	}
	uid := a.uids[a.numUsed]
	a.numUsed++
	return uid, nil
}

// Free returns uid to the pool. Freeing an id twice returns ErrIdNotAllocated.
func (a *LinearIdAllocator) Free(uid uint32) error {
	if int(uid) >= len(a.uids) {
		return fmt.Errorf("free id %d: %w", uid, ErrIdNotAllocated)
	}
	index := a.uidToIndex[uid]
	if index >= a.numUsed {
		return fmt.Errorf("free id %d: %w", uid, ErrIdNotAllocated)
	}

	last := a.numUsed - 1
	lastUid := a.uids[last]
	a.uids[index], a.uids[last] = lastUid, uid
	a.uidToIndex[lastUid] = index
	a.uidToIndex[uid] = last
	a.numUsed--
	return nil
}

// InUse reports whether uid is currently allocated.
func (a *LinearIdAllocator) InUse(uid uint32) bool {
	return int(uid) < len(a.uids) && a.uidToIndex[uid] < a.numUsed
}

// Len returns the number of live ids.
func (a *LinearIdAllocator) Len() int {
	return a.numUsed
}

// Capacity returns the maximum number of live ids.
func (a *LinearIdAllocator) Capacity() int {
	return len(a.uids)
}

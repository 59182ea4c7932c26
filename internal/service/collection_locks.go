package service

import "sync"

// collectionLocks serializes duplicate-state writers per collection. Batch
// commits, manual resolutions and regroups for the same collection must not
// interleave; different collections proceed independently.
type collectionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCollectionLocks() *collectionLocks {
	return &collectionLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for one collection, creating it on first use.
// Locks are never evicted; the per-collection footprint is one mutex.
func (c *collectionLocks) Lock(collectionID string) func() {
	c.mu.Lock()
	lock, ok := c.locks[collectionID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[collectionID] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

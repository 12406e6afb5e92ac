package service

import "sync"

// groupLocks serializes mutating operations per group. Two expenses being
// added to the same group concurrently must not interleave their
// read-validate-write sequences; unrelated groups proceed in parallel.
// Reads never take the lock; they see a consistent snapshot from storage.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for one group, creating it on first use.
// Locks are never reclaimed; the map grows with the number of groups
// mutated in-process, which is bounded in practice.
func (g *groupLocks) Lock(groupID string) func() {
	g.mu.Lock()
	lock, ok := g.locks[groupID]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[groupID] = lock
	}
	g.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

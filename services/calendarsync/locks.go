package calendarsync

import "sync"

// workerLocks serializes the commit-time conflict-check-and-write section
// per worker. Commits for different workers proceed in parallel.
type workerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newWorkerLocks() *workerLocks {
	return &workerLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *workerLocks) get(workerID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, exists := l.locks[workerID]
	if !exists {
		lock = &sync.Mutex{}
		l.locks[workerID] = lock
	}
	return lock
}

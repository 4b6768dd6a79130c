package wallet

import "sync"

// userLocks serialises wallet mutations per user inside this process
type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uint]*userLock)}
}

// lock blocks until the user's lock is held and returns its release func
func (l *userLocks) lock(userID uint) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

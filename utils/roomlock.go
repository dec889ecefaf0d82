package utils

import (
	"sync"
)

// roomLocks serializes the read-check-write sections of join, leave and end
// operations on the same room, so that e.g. two concurrent joins cannot both
// pass the capacity check. Locks are keyed by room code and never removed;
// the map only grows with the number of distinct rooms touched by this
// process.
var roomLocks = struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}{locks: make(map[string]*sync.Mutex)}

// LockRoom acquires the mutex for the given room code and returns the unlock
// function.
func LockRoom(roomCode string) func() {
	roomLocks.mu.Lock()
	l, ok := roomLocks.locks[roomCode]
	if !ok {
		l = &sync.Mutex{}
		roomLocks.locks[roomCode] = l
	}
	roomLocks.mu.Unlock()

	l.Lock()
	return l.Unlock
}

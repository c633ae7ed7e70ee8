package service

import (
	"fmt"
	"sync"
)

// keyedMutex serializes scheduling writes per interviewer calendar day so the
// conflict check and the write cannot interleave with another booking for the
// same (interviewer, date) key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func calendarKey(interviewerID uint, date string) string {
	return fmt.Sprintf("%d:%s", interviewerID, date)
}

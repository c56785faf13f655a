package services

import "sync"

// keyedMutex provides at-most-one-in-flight execution per key without
// blocking: a second caller for the same key is told to go away instead of
// queueing behind a long scoring run.
type keyedMutex struct {
	keys sync.Map
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{}
}

// TryLock acquires the key if it is free. The caller must Unlock with the
// same key when it succeeds.
func (m *keyedMutex) TryLock(key string) bool {
	_, loaded := m.keys.LoadOrStore(key, struct{}{})
	return !loaded
}

func (m *keyedMutex) Unlock(key string) {
	m.keys.Delete(key)
}

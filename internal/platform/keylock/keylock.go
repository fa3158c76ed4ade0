package keylock

import "sync"

// KeyLock provides a try-lock per string key. It serializes work on a single
// key without blocking callers: a second acquirer is told the key is busy and
// can surface a conflict instead of queueing behind a slow agent call.
type KeyLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func New() *KeyLock {
	return &KeyLock{held: map[string]struct{}{}}
}

// TryAcquire reports whether the key was free. The caller must Release the
// key after a successful acquire.
func (k *KeyLock) TryAcquire(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, busy := k.held[key]; busy {
		return false
	}
	k.held[key] = struct{}{}
	return true
}

func (k *KeyLock) Release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.held, key)
}

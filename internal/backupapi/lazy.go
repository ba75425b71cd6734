package backupapi

import "sync"

// lazy holds a value computed at most once. Unlike sync.Once a failed
// computation is not remembered, so the next Get tries again.
type lazy[T any] struct {
	mu    sync.Mutex
	done  bool
	value T
}

// Get returns the cached value or runs compute and caches its result on
// success.
func (l *lazy[T]) Get(compute func() (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return l.value, nil
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	l.value = v
	l.done = true
	return v, nil
}

// Set stores v as if it had been computed.
func (l *lazy[T]) Set(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = v
	l.done = true
}

package keylock

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrTimeout is returned when a lock cannot be acquired within the configured
// wait bound.
var ErrTimeout = errors.New("keylock: acquisition timed out")

type entry struct {
	sem  chan struct{}
	refs int
}

// KeyLock serializes operations per string key. Acquisition waits at most the
// configured timeout so contended callers fail fast instead of deadlocking.
type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeout time.Duration
}

// New creates a KeyLock with the given maximum wait per acquisition.
func New(timeout time.Duration) *KeyLock {
	return &KeyLock{
		entries: make(map[string]*entry),
		timeout: timeout,
	}
}

func (l *KeyLock) get(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *KeyLock) put(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Acquire takes the lock for key, returning a release function. Fails with
// ErrTimeout when the wait bound elapses, or the context error when ctx is
// cancelled first.
func (l *KeyLock) Acquire(ctx context.Context, key string) (func(), error) {
	e := l.get(key)

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-e.sem
				l.put(key, e)
			})
		}
		return release, nil
	case <-timer.C:
		l.put(key, e)
		return nil, ErrTimeout
	case <-ctx.Done():
		l.put(key, e)
		return nil, ctx.Err()
	}
}

// AcquireMany takes all keys in lexicographic order so that concurrent
// multi-key operations (e.g. transfers in opposite directions) cannot
// deadlock. Either all locks are held or none is.
func (l *KeyLock) AcquireMany(ctx context.Context, keys ...string) (func(), error) {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	releases := make([]func(), 0, len(sorted))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, k := range sorted {
		release, err := l.Acquire(ctx, k)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}

	return releaseAll, nil
}

// AcquirePair is a convenience wrapper for two-key operations.
func (l *KeyLock) AcquirePair(ctx context.Context, a, b string) (func(), error) {
	return l.AcquireMany(ctx, a, b)
}

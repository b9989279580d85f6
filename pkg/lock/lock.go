// Package lock serialises writers of the same stock rows across requests.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotAcquired is returned when a key stays held by someone else.
var ErrNotAcquired = errors.New("lock not acquired")

// Release frees every key taken by one Acquire call.
type Release func()

// Locker takes a set of keys together. Keys are locked in sorted order so
// overlapping callers cannot deadlock.
type Locker interface {
	Acquire(ctx context.Context, keys []string, ttl time.Duration) (Release, error)
}

// PartKey is the lock key guarding one part's stock.
func PartKey(partID uint) string {
	return fmt.Sprintf("lock:inventory:part:%d", partID)
}

func normalize(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Local is an in-process Locker for single-replica deployments and tests.
type Local struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

func NewLocal() *Local {
	return &Local{sems: make(map[string]chan struct{})}
}

func (l *Local) sem(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sems[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.sems[key] = s
	}
	return s
}

// Acquire waits for every key until ctx is done or ttl elapses. ttl bounds
// the wait only; local locks do not expire.
func (l *Local) Acquire(ctx context.Context, keys []string, ttl time.Duration) (Release, error) {
	if ttl > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ttl)
		defer cancel()
	}

	var held []chan struct{}
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}
	for _, key := range normalize(keys) {
		s := l.sem(key)
		select {
		case s <- struct{}{}:
			held = append(held, s)
		case <-ctx.Done():
			release()
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		}
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

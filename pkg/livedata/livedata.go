// Package livedata is a single-slot, latest-value holder with observers.
//
// Set may be called from any goroutine. Each observer runs on its own
// goroutine and receives the value present when it registered (if any) and
// then every later value; an observer that falls behind only sees the latest
// value.
package livedata

import (
	"context"
	"sync"
)

type Observer[T any] func(T)

type LiveData[T any] struct {
	mu        sync.Mutex
	value     T
	version   uint64
	observers map[*observation[T]]struct{}
}

func New[T any]() *LiveData[T] {
	return &LiveData[T]{observers: make(map[*observation[T]]struct{})}
}

type observation[T any] struct {
	fn     Observer[T]
	signal chan struct{}
	seen   uint64
}

func (o *observation[T]) wake() {
	select {
	case o.signal <- struct{}{}:
	default:
	}
}

// Set replaces the held value and wakes every observer.
func (l *LiveData[T]) Set(v T) {
	l.mu.Lock()
	l.value = v
	l.version++
	for o := range l.observers {
		o.wake()
	}
	l.mu.Unlock()
}

// Value returns the held value and whether one was ever set.
func (l *LiveData[T]) Value() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.version > 0
}

// Observe attaches fn until ctx is done or the returned func is called.
func (l *LiveData[T]) Observe(ctx context.Context, fn Observer[T]) func() {
	o := &observation[T]{fn: fn, signal: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.observers[o] = struct{}{}
	if l.version > 0 {
		o.wake()
	}
	l.mu.Unlock()

	go l.run(ctx, o)
	return cancel
}

func (l *LiveData[T]) run(ctx context.Context, o *observation[T]) {
	defer func() {
		l.mu.Lock()
		delete(l.observers, o)
		l.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.signal:
			l.mu.Lock()
			v, version := l.value, l.version
			l.mu.Unlock()
			if version == o.seen {
				continue
			}
			o.seen = version
			if ctx.Err() != nil {
				return
			}
			o.fn(v)
		}
	}
}

// ObserverCount reports how many observers are attached.
func (l *LiveData[T]) ObserverCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.observers)
}

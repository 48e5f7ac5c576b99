package livedata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("observer was not called")
	}
	return 0
}

func nothing(t *testing.T, ch <-chan int) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected value %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLiveData_NoReplayBeforeFirstSet(t *testing.T) {
	l := New[int]()
	_, ok := l.Value()
	assert.False(t, ok)

	got := make(chan int, 8)
	cancel := l.Observe(context.Background(), func(v int) { got <- v })
	defer cancel()

	nothing(t, got)
	l.Set(1)
	assert.Equal(t, 1, recv(t, got))
}

func TestLiveData_ReplaysLatestOnObserve(t *testing.T) {
	l := New[int]()
	l.Set(1)
	l.Set(2)

	got := make(chan int, 8)
	cancel := l.Observe(context.Background(), func(v int) { got <- v })
	defer cancel()

	assert.Equal(t, 2, recv(t, got))
	nothing(t, got)

	l.Set(3)
	assert.Equal(t, 3, recv(t, got))
}

func TestLiveData_SlowObserverSeesLatest(t *testing.T) {
	l := New[int]()
	release := make(chan struct{})
	got := make(chan int, 8)

	cancel := l.Observe(context.Background(), func(v int) {
		got <- v
		<-release
	})
	defer cancel()

	l.Set(1)
	assert.Equal(t, 1, recv(t, got))
	l.Set(2)
	l.Set(3)
	close(release)

	assert.Equal(t, 3, recv(t, got))
	nothing(t, got)
}

func TestLiveData_DetachOnOwnerDone(t *testing.T) {
	l := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan int, 8)

	l.Observe(ctx, func(v int) { got <- v })
	require.Equal(t, 1, l.ObserverCount())

	cancel()
	require.Eventually(t, func() bool { return l.ObserverCount() == 0 }, time.Second, 5*time.Millisecond)

	l.Set(1)
	nothing(t, got)
}

func TestLiveData_DetachFunc(t *testing.T) {
	l := New[string]()
	got := make(chan string, 1)
	detach := l.Observe(context.Background(), func(v string) { got <- v })

	detach()
	require.Eventually(t, func() bool { return l.ObserverCount() == 0 }, time.Second, 5*time.Millisecond)
	l.Set("late")

	select {
	case v := <-got:
		t.Fatalf("unexpected value %q", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLiveData_MultipleObservers(t *testing.T) {
	l := New[int]()
	a := make(chan int, 8)
	b := make(chan int, 8)
	defer l.Observe(context.Background(), func(v int) { a <- v })()
	defer l.Observe(context.Background(), func(v int) { b <- v })()

	l.Set(7)
	assert.Equal(t, 7, recv(t, a))
	assert.Equal(t, 7, recv(t, b))
}

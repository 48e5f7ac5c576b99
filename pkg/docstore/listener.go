package docstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

type fetchFunc func(ctx context.Context, path string) (*Snapshot, error)

// registration owns one listener. Change checks are coalesced through a
// one-slot signal channel and run on the registration's own goroutine, so the
// listener is never invoked concurrently with itself.
type registration struct {
	path     string
	listener Listener
	fetch    fetchFunc
	signal   chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	removed  atomic.Bool

	delivered  bool
	lastExists bool
	lastETag   string
}

func (r *registration) Remove() {
	r.removed.Store(true)
	r.cancel()
}

func (r *registration) notify() {
	select {
	case r.signal <- struct{}{}:
	default:
	}
}

func (r *registration) run(done func()) {
	defer done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.signal:
			r.check()
		}
	}
}

func (r *registration) check() {
	snap, err := r.fetch(r.ctx, r.path)
	if r.removed.Load() || r.ctx.Err() != nil {
		return
	}
	if err != nil {
		r.listener(nil, err)
		return
	}
	if r.delivered && snap.Exists() == r.lastExists && snap.ETag() == r.lastETag {
		return
	}
	r.delivered = true
	r.lastExists = snap.Exists()
	r.lastETag = snap.ETag()
	r.listener(snap, nil)
}

// hub tracks registrations by document path.
type hub struct {
	mu   sync.Mutex
	regs map[string]map[*registration]struct{}
}

func newHub() *hub {
	return &hub{regs: make(map[string]map[*registration]struct{})}
}

func (h *hub) add(ctx context.Context, path string, fetch fetchFunc, l Listener) *registration {
	regCtx, cancel := context.WithCancel(ctx)
	r := &registration{
		path:     path,
		listener: l,
		fetch:    fetch,
		signal:   make(chan struct{}, 1),
		ctx:      regCtx,
		cancel:   cancel,
	}

	h.mu.Lock()
	if h.regs[path] == nil {
		h.regs[path] = make(map[*registration]struct{})
	}
	h.regs[path][r] = struct{}{}
	h.mu.Unlock()

	r.notify()
	go r.run(func() { h.remove(r) })
	return r
}

func (h *hub) remove(r *registration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.regs[r.path]
	delete(set, r)
	if len(set) == 0 {
		delete(h.regs, r.path)
	}
}

func (h *hub) notify(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for r := range h.regs[path] {
		r.notify()
	}
}

func (h *hub) notifyAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.regs {
		for r := range set {
			r.notify()
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, set := range h.regs {
		n += len(set)
	}
	return n
}

func newETag() string {
	return uuid.Must(uuid.NewV7()).String()
}

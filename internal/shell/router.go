package shell

import (
	"sort"
	"sync"
)

// Listener is notified with the new path after every navigation.
type Listener func(path string)

// Router holds the current path and notifies subscribers when it changes.
type Router interface {
	CurrentPath() string
	Navigate(path string)
	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn Listener) (unsubscribe func())
}

// MemoryRouter is an in-process Router. Listeners run synchronously on the
// goroutine that called Navigate, in subscription order.
type MemoryRouter struct {
	mu        sync.Mutex
	path      string
	history   []string
	listeners map[int]Listener
	nextID    int
}

// NewMemoryRouter creates a router positioned at initial.
func NewMemoryRouter(initial string) *MemoryRouter {
	return &MemoryRouter{
		path:      initial,
		listeners: make(map[int]Listener),
	}
}

func (r *MemoryRouter) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Navigate moves to path and notifies every listener.
func (r *MemoryRouter) Navigate(path string) {
	r.mu.Lock()
	r.path = path
	r.history = append(r.history, path)
	listeners := r.snapshot()
	r.mu.Unlock()

	// Listeners may navigate again, so the lock is not held while they run.
	for _, fn := range listeners {
		fn(path)
	}
}

func (r *MemoryRouter) Subscribe(fn Listener) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

// History returns every path navigated to, oldest first. The initial path is
// not included.
func (r *MemoryRouter) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

func (r *MemoryRouter) snapshot() []Listener {
	ids := make([]int, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.listeners[id])
	}
	return out
}

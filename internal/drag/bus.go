package drag

import "sync"

// Handler receives pointer events while it holds the bus.
type Handler interface {
	Move(x float64)
	Release() (bool, error)
}

// Bus routes global pointer events to at most one subscriber at a time.
type Bus struct {
	mu    sync.Mutex
	owner Handler
}

// NewBus returns an idle bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe makes h the sole receiver of pointer events.
func (b *Bus) Subscribe(h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owner != nil && b.owner != h {
		return ErrBusy
	}
	b.owner = h
	return nil
}

// Unsubscribe releases the bus if h holds it.
func (b *Bus) Unsubscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owner == h {
		b.owner = nil
	}
}

// Active reports whether a gesture currently holds the bus.
func (b *Bus) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owner != nil
}

func (b *Bus) current() Handler {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owner
}

// Move forwards a pointer move. It reports whether anyone was listening.
func (b *Bus) Move(x float64) bool {
	h := b.current()
	if h == nil {
		return false
	}
	h.Move(x)
	return true
}

// Release forwards pointer-up to the subscriber and reports whether it
// committed a change.
func (b *Bus) Release() (bool, error) {
	h := b.current()
	if h == nil {
		return false, nil
	}
	return h.Release()
}

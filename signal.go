package wlroots

import "slices"

// A Listener is a handle to a single signal subscription. Destroying it
// detaches the callback; destroying it more than once is harmless.
type Listener struct {
	remove func()
}

func (lis *Listener) Destroy() {
	if lis == nil || lis.remove == nil {
		return
	}
	lis.remove()
	lis.remove = nil
}

// A Signal is a typed callback registry. The zero value is ready to
// use. Handlers run synchronously, in subscription order, and may
// detach themselves or other listeners while an emit is in progress.
type Signal[T any] struct {
	handlers []*handler[T]
}

type handler[T any] struct {
	f func(T)
}

func (s *Signal[T]) Add(f func(T)) *Listener {
	h := &handler[T]{f: f}
	s.handlers = append(s.handlers, h)
	return &Listener{remove: func() {
		// Clear the callback first so emits already iterating a
		// snapshot skip it.
		h.f = nil
		if i := slices.Index(s.handlers, h); i >= 0 {
			s.handlers = slices.Delete(s.handlers, i, i+1)
		}
	}}
}

func (s *Signal[T]) Emit(v T) {
	// Snapshot so handlers may detach listeners or emit the same
	// signal again without disturbing this iteration.
	for _, h := range slices.Clone(s.handlers) {
		if f := h.f; f != nil {
			f(v)
		}
	}
}

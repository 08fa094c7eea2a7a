// Package event provides synchronous, typed notification channels with
// closeable subscription handles.
package event

import "sort"

// Signal delivers values of type T to its connected handlers, in
// connection order, on the emitting goroutine.
//
// Signal is not safe for concurrent use.
type Signal[T any] struct {
	handlers map[uint64]func(T)
	next     uint64
}

// Subscription is the handle returned by Connect. Close detaches the
// handler; closing more than once is a no-op.
type Subscription interface {
	Close()
}

type subscription struct {
	close func()
}

func (s *subscription) Close() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}

// Connect registers fn and returns the handle that removes it
func (s *Signal[T]) Connect(fn func(T)) Subscription {
	if s.handlers == nil {
		s.handlers = make(map[uint64]func(T))
	}
	id := s.next
	s.next++
	s.handlers[id] = fn
	return &subscription{close: func() { delete(s.handlers, id) }}
}

// Emit calls every handler connected at the time of the call.
// Handlers connected or closed during delivery take effect on the
// next Emit.
func (s *Signal[T]) Emit(value T) {
	if len(s.handlers) == 0 {
		return
	}
	ids := make([]uint64, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	snapshot := make([]func(T), len(ids))
	for i, id := range ids {
		snapshot[i] = s.handlers[id]
	}
	for _, fn := range snapshot {
		fn(value)
	}
}

// Len returns the number of connected handlers
func (s *Signal[T]) Len() int {
	return len(s.handlers)
}

// Group closes a set of subscriptions together
type Group []Subscription

// Close closes every subscription in the group
func (g *Group) Close() {
	for _, sub := range *g {
		sub.Close()
	}
	*g = nil
}

// Package signal provides typed, synchronous, multi-subscriber callback channels.
//
// Handlers run inline on the emitting goroutine. Dispatch iterates a snapshot of the
// subscriber list, so handlers may connect, disconnect or re-emit while a dispatch is
// in flight: handlers connected mid-dispatch are first called on the next Emit, and
// handlers disconnected mid-dispatch are not called again.
package signal

import "sort"

// Connection is the token returned by Connect. Disconnecting it removes the handler.
// A nil Connection is valid and Disconnect on it is a no-op.
type Connection struct {
	disconnect func()
}

// Disconnect removes the handler from its signal. Calling it more than once is safe.
func (c *Connection) Disconnect() {
	if c == nil || c.disconnect == nil {
		return
	}
	fn := c.disconnect
	c.disconnect = nil
	fn()
}

// Connected reports whether the handler is still registered.
func (c *Connection) Connected() bool {
	return c != nil && c.disconnect != nil
}

type slot[T any] struct {
	conn     *Connection
	handler  func(T)
	priority float32
	active   bool
}

// Signal is a typed event channel. The zero value is ready to use.
type Signal[T any] struct {
	slots []*slot[T]
}

// New creates an empty Signal.
func New[T any]() *Signal[T] {
	return &Signal[T]{}
}

// Connect registers handler with priority 0.
//
// Parameters:
//   - handler: the callback invoked on every Emit
//
// Returns:
//   - *Connection: the token that unsubscribes handler
func (s *Signal[T]) Connect(handler func(T)) *Connection {
	return s.ConnectPriority(handler, 0)
}

// ConnectPriority registers handler so that higher priorities run first.
// Handlers with equal priority run in connection order.
//
// Parameters:
//   - handler: the callback invoked on every Emit
//   - priority: the dispatch priority, higher first
//
// Returns:
//   - *Connection: the token that unsubscribes handler
func (s *Signal[T]) ConnectPriority(handler func(T), priority float32) *Connection {
	if handler == nil {
		panic("signal: nil handler")
	}
	sl := &slot[T]{handler: handler, priority: priority, active: true}
	sl.conn = &Connection{}
	sl.conn.disconnect = func() { s.remove(sl) }

	i := sort.Search(len(s.slots), func(i int) bool {
		return s.slots[i].priority < priority
	})
	s.slots = append(s.slots, nil)
	copy(s.slots[i+1:], s.slots[i:])
	s.slots[i] = sl
	return sl.conn
}

// Emit calls every connected handler with v.
func (s *Signal[T]) Emit(v T) {
	if len(s.slots) == 0 {
		return
	}
	snapshot := make([]*slot[T], len(s.slots))
	copy(snapshot, s.slots)
	for _, sl := range snapshot {
		if sl.active {
			sl.handler(v)
		}
	}
}

// Count returns the number of connected handlers.
func (s *Signal[T]) Count() int {
	return len(s.slots)
}

// DisconnectAll removes every handler.
func (s *Signal[T]) DisconnectAll() {
	for _, sl := range s.slots {
		sl.active = false
		sl.conn.disconnect = nil
	}
	s.slots = nil
}

func (s *Signal[T]) remove(target *slot[T]) {
	target.active = false
	for i, sl := range s.slots {
		if sl == target {
			s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
			return
		}
	}
}

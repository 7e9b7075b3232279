package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitCallsHandlersInConnectionOrder(t *testing.T) {
	s := New[int]()
	var got []string
	s.Connect(func(v int) { got = append(got, "a") })
	s.Connect(func(v int) { got = append(got, "b") })

	s.Emit(1)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestPriorityOrdersDispatch(t *testing.T) {
	s := New[int]()
	var got []string
	s.ConnectPriority(func(int) { got = append(got, "low") }, -1)
	s.Connect(func(int) { got = append(got, "mid") })
	s.ConnectPriority(func(int) { got = append(got, "high") }, 10)

	s.Emit(0)
	assert.Equal(t, []string{"high", "mid", "low"}, got)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	s := New[string]()
	calls := 0
	c := s.Connect(func(string) { calls++ })

	c.Disconnect()
	c.Disconnect()
	s.Emit("x")

	assert.Equal(t, 0, calls)
	assert.False(t, c.Connected())
	assert.Equal(t, 0, s.Count())

	var nilConn *Connection
	assert.NotPanics(t, func() { nilConn.Disconnect() })
}

func TestReentrantConnectAndDisconnect(t *testing.T) {
	s := New[int]()
	var late, second int
	var secondConn *Connection

	s.Connect(func(int) {
		s.Connect(func(int) { late++ })
		secondConn.Disconnect()
	})
	secondConn = s.Connect(func(int) { second++ })

	s.Emit(1)
	assert.Equal(t, 0, late, "handlers connected during dispatch wait for the next emit")
	assert.Equal(t, 0, second, "handlers disconnected during dispatch are skipped")

	s.Emit(2)
	assert.Equal(t, 1, late)
}

func TestReentrantEmit(t *testing.T) {
	s := New[int]()
	var seen []int
	s.Connect(func(v int) {
		seen = append(seen, v)
		if v < 3 {
			s.Emit(v + 1)
		}
	})

	s.Emit(1)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestSlotsDisconnectAll(t *testing.T) {
	a, b := New[int](), New[int]()
	calls := 0
	var slots Slots
	slots.Add(a.Connect(func(int) { calls++ }), b.Connect(func(int) { calls++ }))
	assert.Equal(t, 2, slots.Len())

	slots.DisconnectAll()
	a.Emit(0)
	b.Emit(0)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, slots.Len())
}

func TestDisconnectAll(t *testing.T) {
	s := New[int]()
	c := s.Connect(func(int) {})
	s.DisconnectAll()

	assert.Equal(t, 0, s.Count())
	assert.False(t, c.Connected())
}

package signal

// Slots groups connections that share a lifetime, such as every subscription a
// component makes while attached to a node.
type Slots struct {
	conns []*Connection
}

// Add keeps track of one or more connections.
func (s *Slots) Add(conns ...*Connection) {
	s.conns = append(s.conns, conns...)
}

// DisconnectAll disconnects and forgets every tracked connection.
func (s *Slots) DisconnectAll() {
	for _, c := range s.conns {
		c.Disconnect()
	}
	s.conns = nil
}

// Len returns the number of tracked connections.
func (s *Slots) Len() int {
	return len(s.conns)
}

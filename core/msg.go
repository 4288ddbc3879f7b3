package core

import "github.com/sarchlab/akita/v4/sim"

// AccessMsg carries one block of memory accesses from a processor to the
// component its port is bound to.
type AccessMsg struct {
	sim.MsgMeta

	PID    int
	Insts  int
	IsData bool
}

// Meta returns the meta data of the message.
func (m *AccessMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone returns a copy of the message with a new ID.
func (m *AccessMsg) Clone() sim.Msg {
	clone := *m
	clone.ID = sim.GetIDGenerator().Generate()

	return &clone
}

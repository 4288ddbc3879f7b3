package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Unit stands in for every non-processor component that owns bound ports:
// caches, crossbars, interrupt controllers and memory controllers. It drains
// the accesses it receives and forwards them through its first bound request
// port, if it has one.
type Unit struct {
	*sim.TickingComponent

	kind     string
	inputs   []sim.Port
	forward  *portPair
	pending  []*AccessMsg
	received uint64
}

// Kind returns the kind of the component the unit stands in for.
func (u *Unit) Kind() string {
	return u.kind
}

// Received returns the number of accesses that arrived at the unit.
func (u *Unit) Received() uint64 {
	return u.received
}

func (u *Unit) addInput(p sim.Port) {
	u.inputs = append(u.inputs, p)
}

func (u *Unit) setForward(local sim.Port, remote sim.RemotePort) {
	if u.forward == nil {
		u.forward = &portPair{local: local, remote: remote}
	}
}

// Tick moves messages from the input ports to the forward port.
func (u *Unit) Tick() bool {
	madeProgress := u.send()
	madeProgress = u.recv() || madeProgress

	return madeProgress || len(u.pending) > 0
}

func (u *Unit) recv() bool {
	madeProgress := false

	for _, p := range u.inputs {
		item := p.RetrieveIncoming()
		if item == nil {
			continue
		}

		madeProgress = true
		u.received++

		msg, ok := item.(*AccessMsg)
		if !ok || u.forward == nil {
			continue
		}

		u.pending = append(u.pending, msg)
	}

	return madeProgress
}

func (u *Unit) send() bool {
	if len(u.pending) == 0 || !u.forward.local.CanSend() {
		return false
	}

	msg := u.pending[0].Clone().(*AccessMsg)
	msg.Src = u.forward.local.AsRemote()
	msg.Dst = u.forward.remote

	if err := u.forward.local.Send(msg); err != nil {
		return false
	}

	u.pending = u.pending[1:]

	return true
}

package core

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/neuralprobe/gem5/api"
	"github.com/neuralprobe/gem5/selection"
)

type portPair struct {
	local  sim.Port
	remote sim.RemotePort
}

type thread struct {
	pid     int
	retired uint64
	target  uint64
	limit   uint64
}

func (t *thread) done() bool {
	return t.retired >= t.target
}

// Core is a processor that retires the instructions of its threads at the
// rate of its model and issues the matching fetch and data accesses through
// its cache ports.
type Core struct {
	*sim.TickingComponent

	model       selection.CPUModel
	threads     []*thread
	ports       map[string]*portPair
	monitor     *exitMonitor
	switchedOut bool

	stall     int
	next      int
	sent      uint64
	sendFails uint64
}

// Model returns the processor model in use.
func (c *Core) Model() selection.CPUModel {
	return c.model
}

// Retired returns the instructions retired by every thread.
func (c *Core) Retired() []uint64 {
	r := make([]uint64, len(c.threads))
	for i, t := range c.threads {
		r[i] = t.retired
	}

	return r
}

// Sent returns the number of accesses sent through the cache ports.
func (c *Core) Sent() uint64 {
	return c.sent
}

// SetRemotePort sets where the messages of a cache port go.
func (c *Core) SetRemotePort(name string, local sim.Port, remote sim.RemotePort) {
	c.ports[name] = &portPair{local: local, remote: remote}
}

// AddThread adds a thread that retires target instructions. A non-zero
// limit ends the slice once any thread has retired that many instructions.
func (c *Core) AddThread(pid int, target, limit uint64) {
	c.threads = append(c.threads, &thread{pid: pid, target: target, limit: limit})
}

func (c *Core) active() bool {
	if c.switchedOut {
		return false
	}

	for _, t := range c.threads {
		if !t.done() {
			return true
		}
	}

	return false
}

// switchTo hands the threads over to a new model. Instruction limits count
// from the moment of the switch.
func (c *Core) switchTo(model selection.CPUModel, maxInsts uint64) {
	c.model = model
	c.stall = 0

	for _, t := range c.threads {
		t.limit = 0
		if maxInsts > 0 {
			t.limit = t.retired + maxInsts
		}
	}

	slog.Debug("CoreSwitch", "Core", c.Name(), "Model", model.Name)
}

// Tick runs one cycle of the core.
func (c *Core) Tick() bool {
	if c.monitor.posted || !c.active() {
		return false
	}

	now := toTick(c.Engine.CurrentTime())
	if now >= c.monitor.end {
		c.monitor.post(c.monitor.end, api.CauseLimit)
		return false
	}

	if c.stall > 0 {
		c.stall--
		return true
	}

	c.retire(now)
	c.stall = c.model.StallCycles

	LogProgress(c)

	return !c.monitor.posted && c.active()
}

func (c *Core) retire(now uint64) {
	width := max(c.model.IssueWidth, 1)

	for width > 0 {
		t := c.pickThread()
		if t == nil {
			return
		}

		n := min(uint64(width), t.target-t.retired)
		if t.limit > 0 {
			n = min(n, t.limit-t.retired)
		}

		t.retired += n
		width -= int(n)

		c.access(t, int(n))

		if t.limit > 0 && t.retired >= t.limit {
			c.monitor.post(now, api.CauseMaxInsts)
			return
		}

		if t.done() {
			c.monitor.threadDone(now)
		}
	}
}

func (c *Core) pickThread() *thread {
	for range c.threads {
		t := c.threads[c.next%len(c.threads)]
		c.next++

		if !t.done() {
			return t
		}
	}

	return nil
}

func (c *Core) access(t *thread, insts int) {
	c.send("icache_port", t, insts, false)

	if t.retired%2 == 0 {
		c.send("dcache_port", t, insts, true)
	}
}

func (c *Core) send(portName string, t *thread, insts int, isData bool) {
	pp, ok := c.ports[portName]
	if !ok || !pp.local.CanSend() {
		return
	}

	msg := &AccessMsg{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: pp.local.AsRemote(),
			Dst: pp.remote,
		},
		PID:    t.pid,
		Insts:  insts,
		IsData: isData,
	}

	if err := pp.local.Send(msg); err != nil {
		c.sendFails++
		Trace("Backpressure",
			"Core", c.Name(),
			"Port", portName,
			"Error", fmt.Sprintf("%v", err),
		)

		return
	}

	c.sent++
}

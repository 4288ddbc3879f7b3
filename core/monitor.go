package core

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/neuralprobe/gem5/api"
)

// exitMonitor collects the first exit event posted during a simulation
// slice. Later posts are ignored until the monitor is reset.
type exitMonitor struct {
	end    uint64
	active int
	posted bool
	event  api.ExitEvent
}

func (m *exitMonitor) reset(end uint64) {
	m.end = end
	m.posted = false
	m.event = api.ExitEvent{}
}

func (m *exitMonitor) post(tick uint64, cause string) {
	if m.posted {
		return
	}

	m.posted = true
	m.event = api.ExitEvent{Tick: tick, Cause: cause}

	Trace("Exit", "Tick", tick, "Cause", cause)
}

func (m *exitMonitor) threadDone(tick uint64) {
	m.active--
	if m.active <= 0 {
		m.post(tick, api.CauseLastThread)
	}
}

// eventCounter counts the events the engine handles.
type eventCounter struct {
	count uint64
}

// Func implements sim.Hook.
func (h *eventCounter) Func(ctx sim.HookCtx) {
	if ctx.Pos == sim.HookPosBeforeEvent {
		h.count++
	}
}

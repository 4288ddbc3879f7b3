package core

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/neuralprobe/gem5/selection"
)

// Builder can create new cores and units.
type Builder struct {
	engine  sim.Engine
	freq    sim.Freq
	model   selection.CPUModel
	monitor *exitMonitor
}

// MakeBuilder creates a builder with a 1 GHz clock and the atomic model.
func MakeBuilder() Builder {
	model, err := selection.LookupCPU("AtomicSimpleCPU")
	if err != nil {
		panic(fmt.Sprintf("default cpu model: %v", err))
	}

	return Builder{
		freq:  1 * sim.GHz,
		model: model,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the component.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithModel sets the processor model of a core.
func (b Builder) WithModel(model selection.CPUModel) Builder {
	b.model = model
	return b
}

func (b Builder) withMonitor(m *exitMonitor) Builder {
	b.monitor = m
	return b
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	c := &Core{
		model:   b.model,
		ports:   make(map[string]*portPair),
		monitor: b.monitor,
	}

	if c.monitor == nil {
		c.monitor = &exitMonitor{end: ^uint64(0)}
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}

// BuildUnit creates a unit standing in for a component of the given kind.
func (b Builder) BuildUnit(name, kind string) *Unit {
	u := &Unit{kind: kind}
	u.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, u)

	return u
}

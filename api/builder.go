package api

import (
	"log/slog"

	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
	"github.com/neuralprobe/gem5/selection"
)

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	sim    Simulator
	topo   *hw.Topology
	cfg    options.Config
	sel    selection.Result
	logger *slog.Logger
}

// MakeDriverBuilder creates a DriverBuilder with default parameters.
func MakeDriverBuilder() DriverBuilder {
	return DriverBuilder{
		cfg:    options.Default(),
		logger: slog.Default(),
	}
}

// WithSimulator sets the engine that advances simulated time.
func (b DriverBuilder) WithSimulator(sim Simulator) DriverBuilder {
	b.sim = sim
	return b
}

// WithTopology sets the system to simulate.
func (b DriverBuilder) WithTopology(topo *hw.Topology) DriverBuilder {
	b.topo = topo
	return b
}

// WithConfig sets the run limits and the checkpoint schedule.
func (b DriverBuilder) WithConfig(cfg options.Config) DriverBuilder {
	b.cfg = cfg
	return b
}

// WithSelection sets the selected variants. A future processor model makes
// the driver switch processors at the first instruction limit.
func (b DriverBuilder) WithSelection(sel selection.Result) DriverBuilder {
	b.sel = sel
	return b
}

// WithLogger sets the logger.
func (b DriverBuilder) WithLogger(logger *slog.Logger) DriverBuilder {
	b.logger = logger
	return b
}

// Build creates a driver.
func (b DriverBuilder) Build() Driver {
	if b.sim == nil || b.topo == nil {
		panic("driver needs a simulator and a topology")
	}

	return &driverImpl{
		sim:           b.sim,
		topo:          b.topo,
		cfg:           b.cfg,
		logger:        b.logger,
		state:         StateBuilt,
		switchPending: b.sel.Future != nil,
	}
}

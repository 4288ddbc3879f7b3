// Package se assembles a complete syscall-emulation system from a
// configuration: it resolves the workloads, selects the variants, assigns
// work to processors, builds the topology and validates it.
package se

import (
	"fmt"
	"log/slog"

	"github.com/neuralprobe/gem5/config"
	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
	"github.com/neuralprobe/gem5/selection"
	"github.com/neuralprobe/gem5/validate"
	"github.com/neuralprobe/gem5/workload"
)

// DeprecationWarning is logged every time a system is prepared.
const DeprecationWarning = "The se.py script is deprecated. It will be removed " +
	"in future releases of  gem5."

// System is an assembled system ready to be instantiated.
type System struct {
	Config     options.Config
	Selection  selection.Result
	Assignment workload.Assignment
	Topology   *hw.Topology
}

// Preparer assembles systems.
type Preparer struct {
	host     *workload.Host
	registry *workload.Registry
	logger   *slog.Logger
}

// MakePreparer creates a Preparer that resolves benchmarks from the default
// registry and runs processes in the current directory.
func MakePreparer() Preparer {
	return Preparer{
		registry: workload.DefaultRegistry(),
		logger:   slog.Default(),
	}
}

// WithHost sets the host properties processes inherit.
func (p Preparer) WithHost(host workload.Host) Preparer {
	p.host = &host
	return p
}

// WithRegistry sets where benchmarks are looked up.
func (p Preparer) WithRegistry(reg *workload.Registry) Preparer {
	p.registry = reg
	return p
}

// WithLogger sets the logger.
func (p Preparer) WithLogger(logger *slog.Logger) Preparer {
	p.logger = logger
	return p
}

// Prepare runs every step from options to a validated topology. The first
// failing step ends the preparation.
func (p Preparer) Prepare(cfg options.Config) (*System, error) {
	p.logger.Warn(DeprecationWarning)

	if err := cfg.Check(); err != nil {
		return nil, err
	}

	host, err := p.currentHost()
	if err != nil {
		return nil, err
	}

	procs, err := workload.Resolve(cfg.Workload, cfg.ISA, cfg.NumCPUs, host, p.registry)
	if err != nil {
		return nil, err
	}

	sel, err := selection.Select(cfg)
	if err != nil {
		return nil, err
	}

	for _, w := range sel.Warnings {
		p.logger.Warn(w)
	}

	if errs := validate.Options(cfg, sel); len(errs) > 0 {
		return nil, errs
	}

	assign, err := workload.Assign(procs, cfg.NumCPUs, cfg.SMT, cfg.NumThreads, sel.CPU)
	if err != nil {
		return nil, err
	}

	topo, err := config.MakeSystemBuilder().
		WithConfig(cfg).
		WithSelection(sel).
		WithAssignment(assign).
		WithLogger(p.logger).
		Build("system")
	if err != nil {
		return nil, fmt.Errorf("failed to build system: %w", err)
	}

	if errs := validate.Topology(topo); len(errs) > 0 {
		return nil, errs
	}

	p.logger.Info("system prepared",
		slog.String("id", topo.ID()),
		slog.String("cpu", sel.CPU.Name),
		slog.String("mem_mode", sel.MemMode),
		slog.Int("processes", len(procs)))

	return &System{
		Config:     cfg,
		Selection:  sel,
		Assignment: assign,
		Topology:   topo,
	}, nil
}

func (p Preparer) currentHost() (workload.Host, error) {
	if p.host != nil {
		return *p.host, nil
	}

	return workload.CurrentHost()
}

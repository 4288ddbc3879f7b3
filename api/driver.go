// Package api defines the driver that takes an assembled system through
// instantiation and simulation, and reports why the simulation ended.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
)

// Exit causes reported by a Simulator.
const (
	CauseLastThread    = "exiting with last active thread context"
	CauseLimit         = "simulate() limit reached"
	CauseMaxInsts      = "a thread reached the max instruction count"
	CauseCheckpoint    = "checkpoint"
	CauseUserInterrupt = "user interrupt received"
)

// ErrInvalidState is returned when an operation is called out of order.
var ErrInvalidState = errors.New("operation not allowed in the current driver state")

// An ExitEvent tells why a simulation slice stopped.
type ExitEvent struct {
	Tick  uint64
	Cause string
}

// Simulator is the engine that advances simulated time.
type Simulator interface {
	// Instantiate creates the simulation objects of a frozen topology.
	Instantiate(topo *hw.Topology) error

	// Simulate runs for at most budget ticks and returns the event that
	// stopped it.
	Simulate(budget uint64) (ExitEvent, error)

	// CurTick returns the current simulated tick.
	CurTick() uint64

	// SwitchCPUs hands execution over from the running processors to the
	// switched out ones.
	SwitchCPUs() error

	// Checkpoint writes the simulation state into dir.
	Checkpoint(dir string) error
}

// State is the lifecycle state of a driver.
type State int

// Driver states.
const (
	StateBuilt State = iota
	StateInstantiated
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateInstantiated:
		return "instantiated"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// Driver controls one simulation run.
type Driver interface {
	// Instantiate freezes the topology and creates the simulation objects.
	Instantiate() error

	// Run simulates until a terminal exit event. Checkpoints and processor
	// switches requested on the way are handled without returning.
	// Cancelling ctx ends the run after the current slice.
	Run(ctx context.Context) (ExitEvent, error)

	// State returns the lifecycle state.
	State() State

	// Report returns the final exit line.
	Report() string

	// Summary renders every exit event seen during the run.
	Summary() string
}

type action string

const (
	actionTerminate  action = "terminate"
	actionCheckpoint action = "checkpoint"
	actionSwitch     action = "switch cpus"
)

type exitRecord struct {
	event  ExitEvent
	action action
}

type driverImpl struct {
	sim    Simulator
	topo   *hw.Topology
	cfg    options.Config
	logger *slog.Logger

	state         State
	switchPending bool

	maxTick        uint64
	nextCheckpoint uint64
	period         uint64
	checkpoints    int

	history []exitRecord
	exit    *ExitEvent
}

func (d *driverImpl) State() State {
	return d.state
}

func (d *driverImpl) Instantiate() error {
	if d.state != StateBuilt {
		return fmt.Errorf("%w: instantiate in state %s", ErrInvalidState, d.state)
	}

	start, period, err := d.cfg.CheckpointSchedule()
	if err != nil {
		return err
	}

	d.topo.Freeze()

	if err := d.sim.Instantiate(d.topo); err != nil {
		d.state = StateTerminated
		return fmt.Errorf("failed to instantiate: %w", err)
	}

	cur := d.sim.CurTick()
	d.maxTick = d.cfg.MaxTick(cur)
	d.nextCheckpoint = start
	d.period = period

	if period > 0 && start < cur {
		d.nextCheckpoint = cur
	}

	d.state = StateInstantiated

	return nil
}

func (d *driverImpl) checkpointDue() bool {
	return d.period > 0 &&
		d.checkpoints < d.cfg.MaxCheckpoints &&
		d.nextCheckpoint < d.maxTick
}

func (d *driverImpl) Run(ctx context.Context) (ExitEvent, error) {
	if d.state != StateInstantiated {
		return ExitEvent{}, fmt.Errorf("%w: run in state %s", ErrInvalidState, d.state)
	}

	d.state = StateRunning
	defer func() { d.state = StateTerminated }()

	for {
		cur := d.sim.CurTick()

		if ctx.Err() != nil {
			return d.terminate(ExitEvent{Tick: cur, Cause: CauseUserInterrupt}), nil
		}

		target := d.maxTick
		ckpt := d.checkpointDue()

		if ckpt {
			target = min(target, d.nextCheckpoint)
		}

		var (
			ev  ExitEvent
			err error
		)

		switch {
		case target > cur:
			ev, err = d.sim.Simulate(target - cur)
			if err != nil {
				return ExitEvent{}, fmt.Errorf("simulation failed at tick %d: %w", cur, err)
			}
		default:
			ev = ExitEvent{Tick: cur, Cause: CauseLimit}
		}

		next, err := d.handle(ev, ckpt)
		if err != nil {
			return ExitEvent{}, err
		}

		if next == actionTerminate {
			return d.terminate(ev), nil
		}
	}
}

func (d *driverImpl) handle(ev ExitEvent, ckpt bool) (action, error) {
	act := actionTerminate

	switch {
	case ev.Cause == CauseLimit && ckpt && ev.Tick >= d.nextCheckpoint:
		act = actionCheckpoint
		d.nextCheckpoint += d.period
	case ev.Cause == CauseMaxInsts && d.switchPending:
		act = actionSwitch
	case ev.Cause == CauseCheckpoint:
		act = actionCheckpoint
	}

	d.history = append(d.history, exitRecord{event: ev, action: act})
	d.logger.Debug("exit event",
		slog.Uint64("tick", ev.Tick),
		slog.String("cause", ev.Cause),
		slog.String("action", string(act)))

	switch act {
	case actionCheckpoint:
		return act, d.checkpoint(ev.Tick)
	case actionSwitch:
		d.switchPending = false
		d.logger.Info("switching cpus", slog.Uint64("tick", ev.Tick))

		if err := d.sim.SwitchCPUs(); err != nil {
			return act, fmt.Errorf("failed to switch cpus: %w", err)
		}
	}

	return act, nil
}

func (d *driverImpl) checkpoint(tick uint64) error {
	dir := filepath.Join(d.cfg.CheckpointDir, fmt.Sprintf("cpt.%d", tick))

	if err := d.sim.Checkpoint(dir); err != nil {
		return fmt.Errorf("failed to write checkpoint %s: %w", dir, err)
	}

	d.checkpoints++
	d.logger.Info("writing checkpoint", slog.String("dir", dir))

	return nil
}

func (d *driverImpl) terminate(ev ExitEvent) ExitEvent {
	d.exit = &ev
	return ev
}

func (d *driverImpl) Report() string {
	if d.exit == nil {
		return ""
	}

	return fmt.Sprintf("Exiting @ tick %d because %s", d.exit.Tick, d.exit.Cause)
}

func (d *driverImpl) Summary() string {
	t := table.NewWriter()
	t.SetTitle("Exit events")
	t.AppendHeader(table.Row{"#", "Tick", "Cause", "Action"})

	for i, r := range d.history {
		t.AppendRow(table.Row{i, r.event.Tick, r.event.Cause, string(r.action)})
	}

	t.AppendFooter(table.Row{"", "", "checkpoints", d.checkpoints})

	return t.Render()
}

// Package validate checks cross-component constraints on a configuration and
// on the topology built from it. Checks never modify what they inspect, so
// running them twice yields the same result.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
	"github.com/neuralprobe/gem5/selection"
)

// Fatal configuration errors.
var (
	ErrSMTMultiCPU         = errors.New("cannot use SMT with multiple CPUs")
	ErrSimpointCPU         = errors.New("SimPoint/BPProbe should be done with an atomic cpu")
	ErrSimpointMultiCPU    = errors.New("SimPoint generation not supported with more than one CPUs")
	ErrElasticTraceCPU     = errors.New("elastic trace capture needs the DerivO3CPU")
	ErrNoContextWithWork   = errors.New("no execution context has a workload")
	ErrTopologyNotComplete = errors.New("topology has unbound ports")
)

// UnboundPortError reports a port that must be bound but is not.
type UnboundPortError struct {
	Port string
}

func (e *UnboundPortError) Error() string {
	return fmt.Sprintf("port %s is not bound", e.Port)
}

// Unwrap allows matching any unbound port with ErrTopologyNotComplete.
func (e *UnboundPortError) Unwrap() error {
	return ErrTopologyNotComplete
}

// Errors collects every violation found by a check.
type Errors []error

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, "\n")
}

// Unwrap returns the individual violations.
func (e Errors) Unwrap() []error {
	return e
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}

	return e
}

// Check runs the configuration checks and the structural checks. It returns
// nil when nothing is violated.
func Check(cfg options.Config, sel selection.Result, topo *hw.Topology) error {
	errs := Options(cfg, sel)
	errs = append(errs, Topology(topo)...)

	return errs.orNil()
}

// Options checks constraints between configuration values and the selected
// variants.
func Options(cfg options.Config, sel selection.Result) Errors {
	var errs Errors

	if cfg.SMT && cfg.NumCPUs > 1 {
		errs = append(errs, ErrSMTMultiCPU)
	}

	if sel.HostExecution {
		if err := selection.HostExecution(cfg.ISA); err != nil {
			errs = append(errs, err)
		}
	}

	if cfg.SimpointProfile {
		if !sel.CPU.IsAtomic() {
			errs = append(errs, ErrSimpointCPU)
		}

		if cfg.NumCPUs > 1 {
			errs = append(errs, ErrSimpointMultiCPU)
		}
	}

	if cfg.ElasticTrace && !sel.FinalCPU().IsO3() {
		errs = append(errs, ErrElasticTraceCPU)
	}

	return errs
}

// Topology checks that the assembled system is complete: every timing
// request port of a live component is bound, every memory controller is
// reachable, and every processor has work.
func Topology(topo *hw.Topology) Errors {
	var errs Errors

	checkPorts(topo.Root(), &errs)

	hasWork := false

	for _, cpu := range topo.CPUs() {
		ctxs := topo.ContextsOf(cpu)
		if len(ctxs) == 0 {
			errs = append(errs, fmt.Errorf("%s has no execution context", cpu.Path()))
			continue
		}

		for _, ctx := range ctxs {
			if len(ctx.Workloads()) > 0 {
				hasWork = true
			}
		}
	}

	if !hasWork {
		errs = append(errs, ErrNoContextWithWork)
	}

	return errs
}

func checkPorts(c *hw.Component, errs *Errors) {
	// Switched out processors take over the ports of their peers later.
	if c.BoolParam(hw.ParamSwitchedOut) {
		return
	}

	for _, p := range c.Ports() {
		if p.Functional() || p.Bound() {
			continue
		}

		if p.Role() == hw.RoleRequest || c.Kind() == hw.KindMemCtrl {
			*errs = append(*errs, &UnboundPortError{Port: p.Path()})
		}
	}

	for _, child := range c.Children() {
		checkPorts(child, errs)
	}
}

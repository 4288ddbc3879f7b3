package workload

import (
	"errors"
	"fmt"

	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/selection"
)

// ErrSMTRequiresO3 is returned when SMT is requested on a processor that
// cannot run several threads.
var ErrSMTRequiresO3 = errors.New("SMT requires the DerivO3CPU")

// ContextAssignmentError is returned when an execution context is left
// without a workload.
type ContextAssignmentError struct {
	Context   int
	Workloads int
}

func (e *ContextAssignmentError) Error() string {
	return fmt.Sprintf("context %d has no workload, only %d workloads for more cpus",
		e.Context, e.Workloads)
}

// An Assignment maps processor index to the workloads it runs.
type Assignment struct {
	PerCPU     [][]*hw.Process
	NumThreads int

	// Unassigned holds the processes that no processor runs.
	Unassigned []*hw.Process
}

// Assign distributes the processes over numCPUs processors of the given
// model. With SMT, every processor runs all workloads as threads; a single
// workload is broadcast to every processor; otherwise workloads map to
// processors by index.
func Assign(
	procs []*hw.Process,
	numCPUs int,
	smt bool,
	numThreads int,
	cpu selection.CPUModel,
) (Assignment, error) {
	if len(procs) == 0 {
		return Assignment{}, ErrNoWorkload
	}

	a := Assignment{
		PerCPU:     make([][]*hw.Process, numCPUs),
		NumThreads: 1,
	}

	switch {
	case smt:
		if !cpu.IsO3() {
			return Assignment{}, fmt.Errorf("%w, got %s", ErrSMTRequiresO3, cpu.Name)
		}

		if len(procs) < 2 {
			return Assignment{}, fmt.Errorf("SMT needs at least two workloads, got %d", len(procs))
		}

		if numThreads != 0 && numThreads != len(procs) {
			return Assignment{}, fmt.Errorf(
				"SMT thread count %d does not match %d workloads", numThreads, len(procs))
		}

		a.NumThreads = len(procs)
		for i := range a.PerCPU {
			a.PerCPU[i] = append([]*hw.Process(nil), procs...)
		}
	case len(procs) == 1:
		for i := range a.PerCPU {
			a.PerCPU[i] = []*hw.Process{procs[0]}
		}
	default:
		if len(procs) < numCPUs {
			return Assignment{}, &ContextAssignmentError{
				Context: len(procs), Workloads: len(procs),
			}
		}

		for i := range a.PerCPU {
			a.PerCPU[i] = []*hw.Process{procs[i]}
		}

		a.Unassigned = procs[numCPUs:]
	}

	return a, nil
}

// Package selection maps configuration flags to concrete component variants:
// the processor model, the memory system style, the memory controller, the
// branch predictors, and the cache parameter profiles.
package selection

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Memory access modes of a system.
const (
	MemModeAtomic           = "atomic"
	MemModeTiming           = "timing"
	MemModeAtomicNonCaching = "atomic_noncaching"
)

// CPUKind groups processor models by execution style.
type CPUKind int

// Processor execution styles.
const (
	CPUAtomic CPUKind = iota
	CPUNonCaching
	CPUTiming
	CPUMinor
	CPUO3
	CPUKvm
)

// A CPUModel describes one processor implementation.
type CPUModel struct {
	Name          string
	Kind          CPUKind
	MemMode       string
	RequireCaches bool
	DefaultBP     string

	// IssueWidth and StallCycles shape the synthetic core that stands in for
	// the execution model.
	IssueWidth  int
	StallCycles int
}

// IsO3 tells if the model is the out-of-order processor.
func (m CPUModel) IsO3() bool {
	return m.Kind == CPUO3
}

// IsKvm tells if the model runs natively on the host.
func (m CPUModel) IsKvm() bool {
	return m.Kind == CPUKvm
}

// IsAtomic tells if the model is a functional, non-timing processor.
func (m CPUModel) IsAtomic() bool {
	return m.Kind == CPUAtomic || m.Kind == CPUNonCaching
}

var cpuModels = map[string]CPUModel{
	"AtomicSimpleCPU": {
		Name: "AtomicSimpleCPU", Kind: CPUAtomic, MemMode: MemModeAtomic,
		IssueWidth: 1,
	},
	"NonCachingSimpleCPU": {
		Name: "NonCachingSimpleCPU", Kind: CPUNonCaching,
		MemMode: MemModeAtomicNonCaching, IssueWidth: 1,
	},
	"TimingSimpleCPU": {
		Name: "TimingSimpleCPU", Kind: CPUTiming, MemMode: MemModeTiming,
		IssueWidth: 1, StallCycles: 1,
	},
	"MinorCPU": {
		Name: "MinorCPU", Kind: CPUMinor, MemMode: MemModeTiming,
		RequireCaches: true, DefaultBP: "TournamentBP",
		IssueWidth: 2, StallCycles: 1,
	},
	"DerivO3CPU": {
		Name: "DerivO3CPU", Kind: CPUO3, MemMode: MemModeTiming,
		RequireCaches: true, DefaultBP: "TournamentBP",
		IssueWidth: 8,
	},
	"X86KvmCPU": {
		Name: "X86KvmCPU", Kind: CPUKvm, MemMode: MemModeAtomicNonCaching,
		IssueWidth: 4,
	},
}

var cpuAliases = map[string]string{
	"O3CPU":              "DerivO3CPU",
	"X86O3CPU":           "DerivO3CPU",
	"KvmCPU":             "X86KvmCPU",
	"X86AtomicSimpleCPU": "AtomicSimpleCPU",
	"X86TimingSimpleCPU": "TimingSimpleCPU",
	"X86MinorCPU":        "MinorCPU",
}

// UnknownVariantError reports a name that no list contains.
type UnknownVariantError struct {
	What  string
	Name  string
	Valid []string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("%s %q is not available, valid options: %s",
		e.What, e.Name, strings.Join(e.Valid, ", "))
}

// LookupCPU returns the processor model of the given name or alias.
func LookupCPU(name string) (CPUModel, error) {
	if alias, ok := cpuAliases[name]; ok {
		name = alias
	}

	m, ok := cpuModels[name]
	if !ok {
		return CPUModel{}, &UnknownVariantError{
			What: "CPU type", Name: name, Valid: CPUNames(),
		}
	}

	return m, nil
}

// CPUNames returns the names of all processor models.
func CPUNames() []string {
	return sortedKeys(cpuModels)
}

// ErrHostExecutionUnsupported is returned when host-accelerated execution is
// requested for an instruction set that cannot run natively.
var ErrHostExecutionUnsupported = errors.New("KvmCPU can only be used in SE mode with x86")

// HostExecution checks that the instruction set supports host-accelerated
// execution.
func HostExecution(isa string) error {
	if !strings.EqualFold(isa, "X86") {
		return fmt.Errorf("%w (isa %s)", ErrHostExecutionUnsupported, isa)
	}

	return nil
}

// AttachChecker tells whether a functional checker is built alongside a
// processor of the given model.
func AttachChecker(m CPUModel) (bool, error) {
	switch m.Kind {
	case CPUO3:
		return true, nil
	case CPUMinor:
		return false, fmt.Errorf("checker not yet supported by %s", m.Name)
	default:
		return false, nil
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

package selection

import (
	"fmt"

	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
)

// MemStyle selects how the memory system is built. The two styles are
// mutually exclusive.
type MemStyle int

// Memory system styles.
const (
	MemClassic MemStyle = iota
	MemRuby
)

func (s MemStyle) String() string {
	if s == MemRuby {
		return "ruby"
	}

	return "classic"
}

var memTypes = map[string]bool{
	"SimpleMemory":      true,
	"DDR3_1600_8x8":     true,
	"DDR4_2400_16x4":    true,
	"LPDDR3_1600_1x32":  true,
	"HBM_1000_4H_1x128": true,
}

var branchPredictors = map[string]bool{
	"LocalBP":                        true,
	"TournamentBP":                   true,
	"BiModeBP":                       true,
	"TAGE":                           true,
	"LTAGE":                          true,
	"TAGE_SC_L_8KB":                  true,
	"TAGE_SC_L_64KB":                 true,
	"MultiperspectivePerceptron8KB":  true,
	"MultiperspectivePerceptron64KB": true,
}

var indirectPredictors = map[string]bool{
	"SimpleIndirectPredictor": true,
	"ITTAGE":                  true,
}

// Result holds every variant chosen for a run.
type Result struct {
	// CPU is the model the processors start with; Future is the model they
	// switch to mid-run, nil when there is no switch.
	CPU    CPUModel
	Future *CPUModel

	MemMode           string
	MemStyle          MemStyle
	MemType           string
	BranchPredictor   string
	IndirectPredictor string
	Checker           bool
	HostExecution     bool

	Warnings []string
}

// FinalCPU returns the model that runs the region of interest.
func (r Result) FinalCPU() CPUModel {
	if r.Future != nil {
		return *r.Future
	}

	return r.CPU
}

// Select resolves the processor and memory variants from the configuration.
func Select(cfg options.Config) (Result, error) {
	requested, err := LookupCPU(cfg.CPUType)
	if err != nil {
		return Result{}, err
	}

	if requested.RequireCaches && !cfg.Caches && !cfg.Ruby {
		return Result{}, fmt.Errorf("%s must be used with caches", requested.Name)
	}

	r := Result{
		CPU:      requested,
		MemMode:  requested.MemMode,
		MemStyle: MemClassic,
	}

	if cfg.FastForward > 0 {
		future := requested
		r.Future = &future
		r.CPU = cpuModels["AtomicSimpleCPU"]
		r.MemMode = MemModeAtomic
	}

	if cfg.Ruby {
		r.MemStyle = MemRuby

		if r.MemMode == MemModeAtomic {
			r.Warnings = append(r.Warnings,
				"Memory mode will be changed to atomic_noncaching")
			r.MemMode = MemModeAtomicNonCaching
		}
	}

	r.HostExecution = r.CPU.IsKvm() || (r.Future != nil && r.Future.IsKvm())

	if err := r.selectMemType(cfg); err != nil {
		return Result{}, err
	}

	if err := r.selectPredictors(cfg); err != nil {
		return Result{}, err
	}

	if cfg.Checker {
		attach, err := AttachChecker(r.FinalCPU())
		if err != nil {
			return Result{}, err
		}

		if !attach {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"%s does not support a checker, ignoring --checker",
				r.FinalCPU().Name))
		}

		r.Checker = attach
	}

	return r, nil
}

func (r *Result) selectMemType(cfg options.Config) error {
	if !memTypes[cfg.MemType] {
		return &UnknownVariantError{
			What: "memory type", Name: cfg.MemType, Valid: sortedKeys(memTypes),
		}
	}

	r.MemType = cfg.MemType

	return nil
}

func (r *Result) selectPredictors(cfg options.Config) error {
	if cfg.BPType != "" {
		if !branchPredictors[cfg.BPType] {
			return &UnknownVariantError{
				What: "branch predictor", Name: cfg.BPType,
				Valid: sortedKeys(branchPredictors),
			}
		}

		r.BranchPredictor = cfg.BPType
	}

	if cfg.IndirectBPType == "" {
		return nil
	}

	if !indirectPredictors[cfg.IndirectBPType] {
		return &UnknownVariantError{
			What: "indirect branch predictor", Name: cfg.IndirectBPType,
			Valid: sortedKeys(indirectPredictors),
		}
	}

	if r.BranchPredictor == "" && r.FinalCPU().DefaultBP == "" {
		return fmt.Errorf(
			"indirect branch predictor %s needs a branch predictor, %s has none; set --bp-type",
			cfg.IndirectBPType, r.FinalCPU().Name)
	}

	r.IndirectPredictor = cfg.IndirectBPType

	return nil
}

// ApplyHostExecution returns copies of the processes prepared for
// host-accelerated execution: architectural page tables and host-compatible
// process flags.
func ApplyHostExecution(isa string, procs []*hw.Process) ([]*hw.Process, error) {
	if err := HostExecution(isa); err != nil {
		return nil, err
	}

	out := make([]*hw.Process, len(procs))
	for i, p := range procs {
		spec := p.Spec()
		spec.UseArchPT = true
		spec.KvmInSE = true
		out[i] = hw.NewProcess(spec)
	}

	return out, nil
}

package options

import (
	"github.com/spf13/pflag"
)

// RegisterFlags binds the command-line surface to the fields of cfg. The
// current values of cfg become the flag defaults.
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	w := &cfg.Workload

	fs.StringVarP(&w.Cmd, "cmd", "c", w.Cmd,
		"The binary to run in syscall emulation mode. Separate multiple programs with ';'.")
	fs.StringVarP(&w.Options, "options", "o", w.Options,
		"The options to pass to the binary, use \" \" around the entire string. Separate per-program options with ';'.")
	fs.StringVarP(&w.Input, "input", "i", w.Input, "Read stdin from a file.")
	fs.StringVar(&w.Output, "output", w.Output, "Redirect stdout to a file.")
	fs.StringVar(&w.Errout, "errout", w.Errout, "Redirect stderr to a file.")
	fs.StringVar(&w.Env, "env", w.Env, "Initialize workload environment from text file.")
	fs.StringVarP(&w.Bench, "bench", "b", w.Bench,
		"Hyphen-separated list of benchmarks to run in a multiprogrammed workload.")
	fs.StringVar(&w.SpecInput, "spec-input", w.SpecInput, "Input set size for SPEC CPU2000 benchmarks.")
	fs.StringVar(&w.SpecDir, "spec-dir", w.SpecDir, "Root directory of the SPEC CPU2000 installation.")
	fs.StringVar(&w.ArmISet, "arm-iset", w.ArmISet, "ARM instruction set used by benchmark binaries.")

	fs.StringVar(&cfg.ISA, "isa", cfg.ISA, "Instruction set of the simulated system (X86, ARM, RISCV).")
	fs.IntVarP(&cfg.NumCPUs, "num-cpus", "n", cfg.NumCPUs, "Number of processors.")
	fs.StringVar(&cfg.CPUType, "cpu-type", cfg.CPUType, "Type of CPU.")
	fs.StringVar(&cfg.CPUClock, "cpu-clock", cfg.CPUClock, "Clock for blocks running at CPU speed.")
	fs.StringVar(&cfg.SysClock, "sys-clock", cfg.SysClock, "Top-level clock for blocks running at system speed.")
	fs.StringVar(&cfg.SysVoltage, "sys-voltage", cfg.SysVoltage, "Top-level voltage for blocks running at system power supply.")

	fs.StringVar(&cfg.MemType, "mem-type", cfg.MemType, "Type of memory to use.")
	fs.StringVar(&cfg.MemSize, "mem-size", cfg.MemSize, "Specify the physical memory size (single memory).")
	fs.IntVar(&cfg.MemChannels, "mem-channels", cfg.MemChannels, "Number of memory channels.")
	fs.IntVar(&cfg.CacheLineSize, "cacheline_size", cfg.CacheLineSize, "Cache line size in bytes.")

	fs.BoolVar(&cfg.Caches, "caches", cfg.Caches, "Use private first-level caches.")
	fs.BoolVar(&cfg.L2Cache, "l2cache", cfg.L2Cache, "Use a shared second-level cache.")
	fs.StringVar(&cfg.L1ISize, "l1i_size", cfg.L1ISize, "First-level instruction cache size.")
	fs.StringVar(&cfg.L1DSize, "l1d_size", cfg.L1DSize, "First-level data cache size.")
	fs.StringVar(&cfg.L2Size, "l2_size", cfg.L2Size, "Second-level cache size.")
	fs.IntVar(&cfg.L1IAssoc, "l1i_assoc", cfg.L1IAssoc, "First-level instruction cache associativity.")
	fs.IntVar(&cfg.L1DAssoc, "l1d_assoc", cfg.L1DAssoc, "First-level data cache associativity.")
	fs.IntVar(&cfg.L2Assoc, "l2_assoc", cfg.L2Assoc, "Second-level cache associativity.")

	fs.BoolVar(&cfg.Ruby, "ruby", cfg.Ruby, "Use the Ruby coherence subsystem instead of classic caches.")
	fs.StringVar(&cfg.RubyClock, "ruby-clock", cfg.RubyClock, "Clock for blocks running at Ruby system's speed.")
	fs.IntVar(&cfg.NumDirs, "num-dirs", cfg.NumDirs, "Number of Ruby directory controllers.")

	fs.BoolVar(&cfg.SMT, "smt", cfg.SMT,
		"Only used if multiple programs are specified. If true, then the number of threads per cpu is same as the number of programs.")
	fs.IntVar(&cfg.NumThreads, "num-threads", cfg.NumThreads, "Explicit number of SMT threads; 0 derives it from the workloads.")
	fs.BoolVar(&cfg.Checker, "checker", cfg.Checker, "Attach a functional checker to each CPU.")
	fs.StringVar(&cfg.BPType, "bp-type", cfg.BPType, "Type of branch predictor to use with the CPU.")
	fs.StringVar(&cfg.IndirectBPType, "indirect-bp-type", cfg.IndirectBPType, "Type of indirect branch predictor to use with the CPU.")
	fs.BoolVar(&cfg.SimpointProfile, "simpoint-profile", cfg.SimpointProfile, "Enable basic block profiling for SimPoints.")
	fs.Uint64Var(&cfg.SimpointInterval, "simpoint-interval", cfg.SimpointInterval, "SimPoint interval in num of instructions.")
	fs.BoolVar(&cfg.ElasticTrace, "elastic-trace-en", cfg.ElasticTrace, "Enable capturing instruction and data dependency traces.")

	fs.Uint64VarP(&cfg.FastForward, "fast-forward", "F", cfg.FastForward,
		"Number of instructions to fast forward before switching to the selected CPU.")
	fs.Uint64Var(&cfg.MaxInsts, "maxinsts", cfg.MaxInsts,
		"Total number of instructions to simulate (default: run forever).")
	fs.Uint64Var(&cfg.AbsMaxTick, "abs-max-tick", cfg.AbsMaxTick, "Run to absolute simulated tick.")
	fs.Uint64Var(&cfg.RelMaxTick, "rel-max-tick", cfg.RelMaxTick, "Simulate for specified number of ticks relative to the start tick.")
	fs.Float64Var(&cfg.MaxTime, "maxtime", cfg.MaxTime, "Run to the specified absolute simulated time in seconds.")
	fs.StringVar(&cfg.TakeCheckpoints, "take-checkpoints", cfg.TakeCheckpoints,
		"<M,N> take checkpoints at tick M and every N ticks thereafter.")
	fs.IntVar(&cfg.MaxCheckpoints, "max-checkpoints", cfg.MaxCheckpoints, "The maximum number of checkpoints to drop.")
	fs.StringVar(&cfg.CheckpointDir, "checkpoint-dir", cfg.CheckpointDir, "Place all checkpoints in this absolute directory.")

	fs.Uint64Var(&cfg.SyntheticInsts, "synthetic-insts", cfg.SyntheticInsts,
		"Instructions each process retires on the built-in synthetic core.")
}

// ApplyOverrides loads the YAML file at path into cfg while keeping every flag
// the user set explicitly on the command line.
func ApplyOverrides(path string, cfg *Config, fs *pflag.FlagSet) error {
	changed := make(map[string]string)
	fs.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	if err := Load(path, cfg); err != nil {
		return err
	}

	for name, value := range changed {
		if err := fs.Set(name, value); err != nil {
			return err
		}
	}

	return nil
}

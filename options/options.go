// Package options defines the configuration record that every builder,
// selector, and validator reads. A Config is assembled once from defaults, an
// optional YAML file, and command-line flags, and is then passed by value.
package options

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"gopkg.in/yaml.v3"
)

// TicksPerSecond is the resolution of simulated time.
const TicksPerSecond = 1_000_000_000_000

// MaxTick is the largest representable tick.
const MaxTick = math.MaxUint64

// Workload describes what the processors run.
type Workload struct {
	Cmd       string `yaml:"cmd"`
	Options   string `yaml:"options"`
	Input     string `yaml:"input"`
	Output    string `yaml:"output"`
	Errout    string `yaml:"errout"`
	Env       string `yaml:"env"`
	Bench     string `yaml:"bench"`
	SpecInput string `yaml:"spec_input"`
	SpecDir   string `yaml:"spec_dir"`
	ArmISet   string `yaml:"arm_iset"`
	OS        string `yaml:"os"`
}

// Config is the complete configuration of one simulation run.
type Config struct {
	ISA      string   `yaml:"isa"`
	Workload Workload `yaml:"workload"`

	NumCPUs    int    `yaml:"num_cpus"`
	CPUType    string `yaml:"cpu_type"`
	CPUClock   string `yaml:"cpu_clock"`
	SysClock   string `yaml:"sys_clock"`
	SysVoltage string `yaml:"sys_voltage"`

	MemType       string `yaml:"mem_type"`
	MemSize       string `yaml:"mem_size"`
	MemChannels   int    `yaml:"mem_channels"`
	CacheLineSize int    `yaml:"cacheline_size"`

	Caches   bool   `yaml:"caches"`
	L2Cache  bool   `yaml:"l2cache"`
	L1ISize  string `yaml:"l1i_size"`
	L1DSize  string `yaml:"l1d_size"`
	L2Size   string `yaml:"l2_size"`
	L1IAssoc int    `yaml:"l1i_assoc"`
	L1DAssoc int    `yaml:"l1d_assoc"`
	L2Assoc  int    `yaml:"l2_assoc"`

	Ruby      bool   `yaml:"ruby"`
	RubyClock string `yaml:"ruby_clock"`
	NumDirs   int    `yaml:"num_dirs"`

	SMT              bool   `yaml:"smt"`
	NumThreads       int    `yaml:"num_threads"`
	Checker          bool   `yaml:"checker"`
	BPType           string `yaml:"bp_type"`
	IndirectBPType   string `yaml:"indirect_bp_type"`
	SimpointProfile  bool   `yaml:"simpoint_profile"`
	SimpointInterval uint64 `yaml:"simpoint_interval"`
	ElasticTrace     bool   `yaml:"elastic_trace_en"`

	FastForward     uint64  `yaml:"fast_forward"`
	MaxInsts        uint64  `yaml:"maxinsts"`
	AbsMaxTick      uint64  `yaml:"abs_max_tick"`
	RelMaxTick      uint64  `yaml:"rel_max_tick"`
	MaxTime         float64 `yaml:"maxtime"`
	TakeCheckpoints string  `yaml:"take_checkpoints"`
	MaxCheckpoints  int     `yaml:"max_checkpoints"`
	CheckpointDir   string  `yaml:"checkpoint_dir"`

	SyntheticInsts uint64 `yaml:"synthetic_insts"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		ISA: "X86",
		Workload: Workload{
			SpecInput: "ref",
			SpecDir:   "spec2000",
			ArmISet:   "aarch64",
			OS:        "linux",
		},
		NumCPUs:          1,
		CPUType:          "AtomicSimpleCPU",
		CPUClock:         "2GHz",
		SysClock:         "1GHz",
		SysVoltage:       "1.0V",
		MemType:          "DDR3_1600_8x8",
		MemSize:          "512MB",
		MemChannels:      1,
		CacheLineSize:    64,
		RubyClock:        "2GHz",
		NumDirs:          1,
		SimpointInterval: 100_000_000,
		AbsMaxTick:       MaxTick,
		MaxCheckpoints:   5,
		CheckpointDir:    "m5out",
		SyntheticInsts:   10_000,
	}
}

// Load reads a YAML file on top of cfg.
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// Check verifies that individual values are well formed. Cross-option
// constraints are the business of the validate package.
func (c Config) Check() error {
	var errs []error

	if c.NumCPUs <= 0 {
		errs = append(errs, fmt.Errorf("num_cpus must be positive, got %d", c.NumCPUs))
	}

	if c.CacheLineSize <= 0 || c.CacheLineSize&(c.CacheLineSize-1) != 0 {
		errs = append(errs, fmt.Errorf("cacheline_size must be a power of two, got %d", c.CacheLineSize))
	}

	if c.MemChannels <= 0 {
		errs = append(errs, fmt.Errorf("mem_channels must be positive, got %d", c.MemChannels))
	}

	if _, err := c.MemBytes(); err != nil {
		errs = append(errs, err)
	}

	for name, v := range map[string]string{
		"l1i_size": c.L1ISize,
		"l1d_size": c.L1DSize,
		"l2_size":  c.L2Size,
	} {
		if v == "" {
			continue
		}

		if _, err := ParseSize(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	for name, v := range map[string]string{
		"cpu_clock":  c.CPUClock,
		"sys_clock":  c.SysClock,
		"ruby_clock": c.RubyClock,
	} {
		if _, err := ParseFrequency(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if c.Ruby && c.NumDirs <= 0 {
		errs = append(errs, fmt.Errorf("num_dirs must be positive, got %d", c.NumDirs))
	}

	if _, _, err := c.CheckpointSchedule(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// MemBytes returns the memory size in bytes.
func (c Config) MemBytes() (uint64, error) {
	n, err := ParseSize(c.MemSize)
	if err != nil {
		return 0, fmt.Errorf("mem_size: %w", err)
	}

	return n, nil
}

// MaxTick returns the tick at which the simulation must stop, combining the
// absolute limit, the limit relative to start, and the wall of simulated
// seconds. The smallest one wins.
func (c Config) MaxTick(start uint64) uint64 {
	limit := uint64(MaxTick)
	if c.AbsMaxTick != 0 {
		limit = c.AbsMaxTick
	}

	if c.RelMaxTick != 0 {
		limit = min(limit, saturatingAdd(start, c.RelMaxTick))
	}

	if c.MaxTime > 0 {
		limit = min(limit, saturatingAdd(start, uint64(math.Round(c.MaxTime*TicksPerSecond))))
	}

	return limit
}

// CheckpointSchedule decodes take_checkpoints, given as "<start>,<period>"
// in ticks. An empty value means no checkpoints.
func (c Config) CheckpointSchedule() (start, period uint64, err error) {
	if c.TakeCheckpoints == "" {
		return 0, 0, nil
	}

	fields := strings.Split(c.TakeCheckpoints, ",")
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("take_checkpoints must be <start>,<period>, got %q", c.TakeCheckpoints)
	}

	start, err = strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("take_checkpoints start: %w", err)
	}

	period, err = strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("take_checkpoints period: %w", err)
	}

	if period == 0 {
		return 0, 0, fmt.Errorf("take_checkpoints period must be positive")
	}

	return start, period, nil
}

// ParseSize converts "64kB", "512MB", or "2GB" into bytes. Units are binary.
func ParseSize(s string) (uint64, error) {
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, err
	}

	if n <= 0 {
		return 0, fmt.Errorf("size must be positive: %q", s)
	}

	return uint64(n), nil
}

var freqUnits = []struct {
	suffix string
	hz     float64
}{
	{"GHz", 1e9},
	{"MHz", 1e6},
	{"kHz", 1e3},
	{"Hz", 1},
}

// ParseFrequency converts "2GHz" or "500MHz" into Hz.
func ParseFrequency(s string) (float64, error) {
	for _, u := range freqUnits {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, u.suffix)), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
		}

		if v <= 0 {
			return 0, fmt.Errorf("frequency must be positive: %q", s)
		}

		return v * u.hz, nil
	}

	return 0, fmt.Errorf("invalid frequency %q", s)
}

func saturatingAdd(a, b uint64) uint64 {
	if a > MaxTick-b {
		return MaxTick
	}

	return a + b
}

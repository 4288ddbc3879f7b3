package workload

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
)

// BenchmarkCountError is returned when the number of benchmarks differs from
// the number of processors.
type BenchmarkCountError struct {
	Benchmarks int
	CPUs       int
}

func (e *BenchmarkCountError) Error() string {
	return fmt.Sprintf("number of benchmarks not equal to set num_cpus! (%d benchmarks, %d cpus)",
		e.Benchmarks, e.CPUs)
}

// NotFoundError is returned when a benchmark has no entry for the ISA.
type NotFoundError struct {
	ISA  string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Unable to find workload for %s: %s", e.ISA, e.Name)
}

// Suite locates one benchmark build.
type Suite struct {
	// Root is the installation directory of the benchmark suite.
	Root string
	// BinDir selects the binaries, e.g. "x86" or "arm_aarch64".
	BinDir string
	OS     string
	Input  string
}

// A Factory describes how to launch a benchmark from a suite.
type Factory func(s Suite) hw.ProcessSpec

// Registry maps ISA and benchmark name to a factory.
type Registry struct {
	factories map[string]map[string]Factory
}

// NewRegistry creates an empty benchmark registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]map[string]Factory)}
}

// Register adds a factory under an ISA and a name.
func (r *Registry) Register(isa, name string, f Factory) {
	isa = strings.ToUpper(isa)

	if r.factories[isa] == nil {
		r.factories[isa] = make(map[string]Factory)
	}

	r.factories[isa][name] = f
}

// Lookup returns the factory of a benchmark.
func (r *Registry) Lookup(isa, name string) (Factory, bool) {
	f, ok := r.factories[strings.ToUpper(isa)][name]
	return f, ok
}

// BinDir returns the binary directory for an ISA. ARM builds are split by
// instruction set; every other ISA uses its lower-case name.
func BinDir(isa, armISet string) string {
	if strings.EqualFold(isa, "ARM") {
		return "arm_" + armISet
	}

	return strings.ToLower(isa)
}

// Resolve creates one process per '-' separated benchmark name. The list must
// have one entry per processor, which is checked before any name is looked
// up.
func (r *Registry) Resolve(
	w options.Workload,
	isa string,
	numCPUs int,
) ([]*hw.Process, error) {
	names := strings.Split(w.Bench, "-")
	if len(names) != numCPUs {
		return nil, &BenchmarkCountError{Benchmarks: len(names), CPUs: numCPUs}
	}

	suite := Suite{
		Root:   w.SpecDir,
		BinDir: BinDir(isa, w.ArmISet),
		OS:     w.OS,
		Input:  w.SpecInput,
	}

	procs := make([]*hw.Process, 0, len(names))

	for i, name := range names {
		f, ok := r.Lookup(isa, name)
		if !ok {
			return nil, &NotFoundError{ISA: strings.ToUpper(isa), Name: name}
		}

		spec := f(suite)
		spec.PID = FirstPID + i

		procs = append(procs, hw.NewProcess(spec))
	}

	return procs, nil
}

type cpu2000Bench struct {
	number string
	name   string
	binary string
	args   map[string][]string
	input  map[string]string
}

func (b cpu2000Bench) factory(s Suite) hw.ProcessSpec {
	dir := filepath.Join(s.Root, b.number+"."+b.name)
	exe := filepath.Join(dir, "binaries", s.BinDir, s.OS, b.binary)

	return hw.ProcessSpec{
		Executable: exe,
		Cwd:        filepath.Join(dir, "data", s.Input, "input"),
		Args:       append([]string{exe}, b.args[s.Input]...),
		Input:      b.input[s.Input],
		Output:     b.name + "." + s.Input + ".out",
	}
}

var cpu2000 = []cpu2000Bench{
	{
		number: "164", name: "gzip", binary: "gzip",
		args: map[string][]string{
			"ref":   {"input.source", "60"},
			"test":  {"input.compressed", "2"},
			"smred": {"input.source", "1"},
			"mdred": {"input.source", "1"},
			"lgred": {"input.source", "1"},
			"train": {"input.combined", "32"},
		},
	},
	{
		number: "181", name: "mcf", binary: "mcf",
		args: map[string][]string{
			"ref":   {"inp.in"},
			"test":  {"inp.in"},
			"train": {"inp.in"},
			"smred": {"smred.in"},
			"mdred": {"mdred.in"},
			"lgred": {"lgred.in"},
		},
	},
	{
		number: "256", name: "bzip2", binary: "bzip2",
		args: map[string][]string{
			"ref":   {"input.source", "58"},
			"test":  {"input.random", "2"},
			"train": {"input.compressed", "8"},
			"smred": {"input.source", "1"},
			"mdred": {"input.source", "1"},
			"lgred": {"input.source", "1"},
		},
	},
	{
		number: "197", name: "parser", binary: "parser",
		args: map[string][]string{
			"ref":   {"2.1.dict", "-batch"},
			"test":  {"2.1.dict", "-batch"},
			"train": {"2.1.dict", "-batch"},
		},
		input: map[string]string{
			"ref":   "ref.in",
			"test":  "test.in",
			"train": "train.in",
		},
	},
	{
		number: "300", name: "twolf", binary: "twolf",
		args: map[string][]string{
			"ref":   {"ref"},
			"test":  {"test"},
			"train": {"train"},
			"smred": {"smred"},
			"mdred": {"mdred"},
			"lgred": {"lgred"},
		},
	},
}

// DefaultRegistry returns the CPU2000 integer benchmarks for every supported
// ISA.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, isa := range []string{"X86", "ARM", "RISCV"} {
		for _, b := range cpu2000 {
			r.Register(isa, b.name, b.factory)
		}
	}

	return r
}

// Package config assembles the simulated system: clock domains, processors,
// execution contexts, and the memory system, with every port bound.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
	"github.com/neuralprobe/gem5/selection"
	"github.com/neuralprobe/gem5/workload"
)

// M5OpsBase is the address of the pseudo-instruction page used under host
// execution.
const M5OpsBase = 0xFFFF0000

// SystemBuilder can build simulated systems.
type SystemBuilder struct {
	cfg    options.Config
	sel    selection.Result
	assign workload.Assignment
	logger *slog.Logger
}

// MakeSystemBuilder creates a SystemBuilder with default parameters.
func MakeSystemBuilder() SystemBuilder {
	return SystemBuilder{
		cfg:    options.Default(),
		logger: slog.Default(),
	}
}

// WithConfig sets the configuration the system is built from.
func (b SystemBuilder) WithConfig(cfg options.Config) SystemBuilder {
	b.cfg = cfg
	return b
}

// WithSelection sets the component variants.
func (b SystemBuilder) WithSelection(sel selection.Result) SystemBuilder {
	b.sel = sel
	return b
}

// WithAssignment sets the workloads of each processor.
func (b SystemBuilder) WithAssignment(a workload.Assignment) SystemBuilder {
	b.assign = a
	return b
}

// WithLogger sets the logger that receives build warnings.
func (b SystemBuilder) WithLogger(logger *slog.Logger) SystemBuilder {
	b.logger = logger
	return b
}

// Build creates the system. Construction follows a fixed order: domains,
// processors, execution contexts, host execution support, and finally the
// memory system.
func (b SystemBuilder) Build(name string) (*hw.Topology, error) {
	if len(b.assign.PerCPU) != b.cfg.NumCPUs {
		return nil, fmt.Errorf("workloads are assigned to %d cpus, %d cpus requested",
			len(b.assign.PerCPU), b.cfg.NumCPUs)
	}

	s := &system{
		SystemBuilder: b,
		topo:          hw.NewTopology(name),
	}

	s.buildRoot()
	s.buildDomains()
	s.buildCPUs()
	s.buildContexts()
	s.buildHostExecution()

	if b.sel.MemStyle == selection.MemRuby {
		s.buildRuby()
	} else {
		s.buildClassic()
	}

	if s.err != nil {
		return nil, s.err
	}

	if n := len(b.assign.Unassigned); n > 0 {
		b.logger.Warn("workloads left without a processor", "count", n)
	}

	return s.topo, nil
}

// system holds the state of one build. The first error stops every later
// step.
type system struct {
	SystemBuilder

	topo *hw.Topology
	err  error

	sysClock  *hw.ClockDomain
	cpuClock  *hw.ClockDomain
	rubyClock *hw.ClockDomain

	cpus      []*hw.Component
	hostProcs map[*hw.Process]*hw.Process
}

func (s *system) fail(err error) {
	if s.err == nil && err != nil {
		s.err = err
	}
}

func (s *system) add(
	parent *hw.Component,
	name string,
	kind hw.Kind,
	typeName string,
) *hw.Component {
	if s.err != nil {
		return nil
	}

	c, err := s.topo.NewComponent(parent, name, kind, typeName)
	s.fail(err)

	return c
}

func (s *system) port(
	c *hw.Component,
	name string,
	role hw.Role,
	opts ...hw.PortOption,
) {
	if s.err != nil {
		return
	}

	_, err := c.AddPort(name, role, opts...)
	s.fail(err)
}

func (s *system) param(c *hw.Component, key string, value any) {
	if s.err != nil {
		return
	}

	s.fail(c.SetParam(key, value))
}

func (s *system) clock(c *hw.Component, d *hw.ClockDomain) {
	if s.err != nil {
		return
	}

	s.fail(c.SetClock(d))
}

func (s *system) bind(
	reqOwner *hw.Component, reqPort string,
	respOwner *hw.Component, respPort string,
) {
	if s.err != nil {
		return
	}

	_, err := s.topo.Registry().BindByName(reqOwner, reqPort, respOwner, respPort)
	s.fail(err)
}

func (s *system) connect(fn func(r *hw.Registry) error) {
	if s.err != nil {
		return
	}

	s.fail(fn(s.topo.Registry()))
}

func (s *system) isX86() bool {
	return strings.EqualFold(s.cfg.ISA, "X86")
}

func (s *system) buildRoot() {
	root := s.topo.Root()

	memBytes, err := s.cfg.MemBytes()
	s.fail(err)

	s.param(root, hw.ParamISA, strings.ToUpper(s.cfg.ISA))
	s.param(root, hw.ParamMemMode, s.sel.MemMode)
	s.param(root, hw.ParamMemRange, memBytes)
	s.param(root, hw.ParamCacheLineSize, s.cfg.CacheLineSize)
	s.param(root, "multi_thread", s.assign.NumThreads > 1)
	s.port(root, "system_port", hw.RoleRequest)

	for _, procs := range s.assign.PerCPU {
		if len(procs) > 0 {
			s.param(root, "se_workload", procs[0].Executable())
			break
		}
	}
}

func (s *system) buildDomains() {
	if s.err != nil {
		return
	}

	sysVoltage, err := s.topo.NewVoltageDomain("voltage_domain", s.cfg.SysVoltage)
	s.fail(err)

	s.sysClock, err = s.topo.NewClockDomain("clk_domain", s.cfg.SysClock, sysVoltage)
	s.fail(err)

	cpuVoltage, err := s.topo.NewVoltageDomain("cpu_voltage_domain", "1.0V")
	s.fail(err)

	s.cpuClock, err = s.topo.NewClockDomain("cpu_clk_domain", s.cfg.CPUClock, cpuVoltage)
	s.fail(err)

	if s.sel.MemStyle == selection.MemRuby {
		s.rubyClock, err = s.topo.NewClockDomain(
			"ruby_clk_domain", s.cfg.RubyClock, sysVoltage)
		s.fail(err)
	}

	s.clock(s.topo.Root(), s.sysClock)
}

func (s *system) buildCPUs() {
	for i := 0; i < s.cfg.NumCPUs; i++ {
		cpu := s.newCPU(fmt.Sprintf("cpu[%d]", i), s.sel.CPU, i)
		s.cpus = append(s.cpus, cpu)
	}

	if s.sel.Future == nil {
		return
	}

	for i := 0; i < s.cfg.NumCPUs; i++ {
		sw := s.add(s.topo.Root(), fmt.Sprintf("switch_cpus[%d]", i),
			hw.KindSwitchCPU, s.sel.Future.Name)
		if sw == nil {
			return
		}

		s.param(sw, "cpu_id", i)
		s.param(sw, hw.ParamSwitchedOut, true)
		s.param(sw, "switch_of", s.cpus[i].Path())
		s.param(sw, hw.ParamNumThreads, s.assign.NumThreads)
		s.clock(sw, s.cpuClock)
		s.port(sw, "icache_port", hw.RoleRequest)
		s.port(sw, "dcache_port", hw.RoleRequest)
		s.addCPUChildren(sw, *s.sel.Future)

		if s.cfg.MaxInsts > 0 {
			s.param(sw, "max_insts_any_thread", s.cfg.MaxInsts)
		}
	}
}

func (s *system) newCPU(name string, model selection.CPUModel, id int) *hw.Component {
	cpu := s.add(s.topo.Root(), name, hw.KindCPU, model.Name)
	if cpu == nil {
		return nil
	}

	s.param(cpu, "cpu_id", id)
	s.param(cpu, hw.ParamNumThreads, s.assign.NumThreads)
	s.param(cpu, "issue_width", model.IssueWidth)
	s.param(cpu, "stall_cycles", model.StallCycles)
	s.clock(cpu, s.cpuClock)
	s.port(cpu, "icache_port", hw.RoleRequest)
	s.port(cpu, "dcache_port", hw.RoleRequest)

	s.addInterrupts(cpu)
	s.addCPUChildren(cpu, model)

	if s.cfg.SimpointProfile {
		probe := s.add(cpu, "simpoint", hw.KindProbe, "SimPoint")
		s.param(probe, "interval", s.cfg.SimpointInterval)
	}

	if s.cfg.ElasticTrace {
		probe := s.add(cpu, "traceListener", hw.KindProbe, "ElasticTrace")
		s.param(probe, "instFetchTraceFile", "fetchtrace.proto.gz")
		s.param(probe, "dataDepTraceFile", "deptrace.proto.gz")
	}

	switch {
	case s.sel.Future != nil && s.cfg.FastForward > 0:
		s.param(cpu, "max_insts_any_thread", s.cfg.FastForward)
	case s.cfg.MaxInsts > 0:
		s.param(cpu, "max_insts_any_thread", s.cfg.MaxInsts)
	}

	return cpu
}

// addInterrupts creates the interrupt controller. Only x86 controllers carry
// message ports.
func (s *system) addInterrupts(cpu *hw.Component) {
	if !s.isX86() {
		s.add(cpu, "interrupts", hw.KindInterrupts, strings.ToUpper(s.cfg.ISA)+"Interrupts")
		return
	}

	intr := s.add(cpu, "interrupts", hw.KindInterrupts, "X86LocalApic")
	if intr == nil {
		return
	}

	s.port(intr, "pio", hw.RoleResponse, hw.Functional())
	s.port(intr, "int_requestor", hw.RoleRequest, hw.Functional())
	s.port(intr, "int_responder", hw.RoleResponse, hw.Functional())
}

func (s *system) addCPUChildren(cpu *hw.Component, model selection.CPUModel) {
	if s.sel.Checker && model.IsO3() {
		s.add(cpu, "checker", hw.KindChecker, "O3Checker")
	}

	bp := s.sel.BranchPredictor
	if bp == "" {
		bp = model.DefaultBP
	}

	if bp == "" {
		return
	}

	pred := s.add(cpu, "branchPred", hw.KindBranchPredictor, bp)

	if s.sel.IndirectPredictor != "" {
		s.add(pred, "indirectBranchPred", hw.KindBranchPredictor, s.sel.IndirectPredictor)
	}
}

func (s *system) buildContexts() {
	if s.err != nil {
		return
	}

	for i, cpu := range s.cpus {
		procs := s.assign.PerCPU[i]

		if s.sel.HostExecution {
			var err error

			procs, err = s.hostProcesses(procs)
			if err != nil {
				s.fail(err)
				return
			}
		}

		_, err := s.topo.AddContext(cpu, procs)
		s.fail(err)
	}
}

// hostProcesses swaps processes for their host execution variants, keeping
// a process shared by several processors shared.
func (s *system) hostProcesses(procs []*hw.Process) ([]*hw.Process, error) {
	if s.hostProcs == nil {
		s.hostProcs = make(map[*hw.Process]*hw.Process)
	}

	out := make([]*hw.Process, len(procs))

	for i, p := range procs {
		if hp, ok := s.hostProcs[p]; ok {
			out[i] = hp
			continue
		}

		converted, err := selection.ApplyHostExecution(s.cfg.ISA, []*hw.Process{p})
		if err != nil {
			return nil, err
		}

		s.hostProcs[p] = converted[0]
		out[i] = converted[0]
	}

	return out, nil
}

func (s *system) buildHostExecution() {
	if !s.sel.HostExecution {
		return
	}

	s.add(s.topo.Root(), "kvm_vm", hw.KindKvmVM, "KvmVM")
	s.param(s.topo.Root(), "m5ops_base", uint64(M5OpsBase))
}

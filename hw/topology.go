package hw

import (
	"fmt"
	"strings"

	"github.com/rs/xid"
)

// Parameter names that are read across packages.
const (
	ParamVariant       = "variant"
	ParamMemMode       = "mem_mode"
	ParamCacheLineSize = "cache_line_size"
	ParamMemRange      = "mem_range"
	ParamISA           = "isa"
	ParamSwitchedOut   = "switched_out"
	ParamNumThreads    = "num_threads"
)

// Cache variant tags.
const (
	VariantL1I = "L1I"
	VariantL1D = "L1D"
	VariantL2  = "L2"
)

// A VoltageDomain is a shared voltage reference.
type VoltageDomain struct {
	name    string
	voltage string
}

// Name returns the name of the domain.
func (d *VoltageDomain) Name() string { return d.name }

// Voltage returns the voltage, e.g. "1.0V".
func (d *VoltageDomain) Voltage() string { return d.voltage }

// A ClockDomain is a shared timing reference.
type ClockDomain struct {
	name    string
	clock   string
	voltage *VoltageDomain
}

// Name returns the name of the domain.
func (d *ClockDomain) Name() string { return d.name }

// Clock returns the clock frequency, e.g. "2GHz".
func (d *ClockDomain) Clock() string { return d.clock }

// VoltageDomain returns the voltage domain the clock runs from.
func (d *ClockDomain) VoltageDomain() *VoltageDomain { return d.voltage }

// A Topology is the assembled system: the component tree, its bindings, and
// the execution contexts with their workloads.
type Topology struct {
	id       string
	root     *Component
	registry *Registry
	frozen   bool

	cpus           []*Component
	contexts       []*ExecutionContext
	voltageDomains []*VoltageDomain
	clockDomains   []*ClockDomain
}

// NewTopology creates an empty topology with a system root.
func NewTopology(rootName string) *Topology {
	t := &Topology{id: xid.New().String()}
	t.registry = &Registry{topo: t}
	t.root = &Component{
		topo:     t,
		name:     rootName,
		kind:     KindSystem,
		typeName: "System",
		params:   make(map[string]any),
	}

	return t
}

// ID returns a unique identifier of the topology.
func (t *Topology) ID() string {
	return t.id
}

// Root returns the system component.
func (t *Topology) Root() *Component {
	return t.root
}

// Registry returns the port binding registry.
func (t *Topology) Registry() *Registry {
	return t.registry
}

// Freeze fixes the structure of the topology.
func (t *Topology) Freeze() {
	t.frozen = true
}

// Frozen tells if the topology has been fixed.
func (t *Topology) Frozen() bool {
	return t.frozen
}

func (t *Topology) mustBeMutable() error {
	if t.frozen {
		return ErrFrozen
	}

	return nil
}

// NewComponent creates a component owned by parent.
func (t *Topology) NewComponent(
	parent *Component,
	name string,
	kind Kind,
	typeName string,
) (*Component, error) {
	if err := t.mustBeMutable(); err != nil {
		return nil, err
	}

	if parent == nil || parent.topo != t {
		return nil, fmt.Errorf("parent of %s does not belong to the topology", name)
	}

	if parent.Child(name) != nil {
		return nil, fmt.Errorf("%s already has a child named %s", parent.Path(), name)
	}

	c := &Component{
		topo:     t,
		name:     name,
		kind:     kind,
		typeName: typeName,
		parent:   parent,
		params:   make(map[string]any),
	}
	parent.children = append(parent.children, c)

	if kind == KindCPU {
		t.cpus = append(t.cpus, c)
	}

	return c, nil
}

// NewVoltageDomain creates a voltage domain owned by the system.
func (t *Topology) NewVoltageDomain(name, voltage string) (*VoltageDomain, error) {
	if err := t.mustBeMutable(); err != nil {
		return nil, err
	}

	d := &VoltageDomain{name: name, voltage: voltage}
	t.voltageDomains = append(t.voltageDomains, d)

	return d, nil
}

// NewClockDomain creates a clock domain owned by the system.
func (t *Topology) NewClockDomain(
	name, clock string,
	voltage *VoltageDomain,
) (*ClockDomain, error) {
	if err := t.mustBeMutable(); err != nil {
		return nil, err
	}

	if voltage == nil {
		return nil, fmt.Errorf("clock domain %s needs a voltage domain", name)
	}

	d := &ClockDomain{name: name, clock: clock, voltage: voltage}
	t.clockDomains = append(t.clockDomains, d)

	return d, nil
}

// VoltageDomains returns the voltage domains of the system.
func (t *Topology) VoltageDomains() []*VoltageDomain {
	return append([]*VoltageDomain(nil), t.voltageDomains...)
}

// ClockDomains returns the clock domains of the system.
func (t *Topology) ClockDomains() []*ClockDomain {
	return append([]*ClockDomain(nil), t.clockDomains...)
}

// CPUs returns the processor components in creation order.
func (t *Topology) CPUs() []*Component {
	return append([]*Component(nil), t.cpus...)
}

// AddContext creates an execution context on cpu holding the given
// workloads.
func (t *Topology) AddContext(
	cpu *Component,
	workloads []*Process,
) (*ExecutionContext, error) {
	if err := t.mustBeMutable(); err != nil {
		return nil, err
	}

	if cpu.topo != t || cpu.kind != KindCPU {
		return nil, fmt.Errorf("%s is not a processor of the topology", cpu.Path())
	}

	ctx := &ExecutionContext{
		index:     len(t.contexts),
		cpu:       cpu,
		workloads: append([]*Process(nil), workloads...),
	}
	t.contexts = append(t.contexts, ctx)

	return ctx, nil
}

// Contexts returns all execution contexts.
func (t *Topology) Contexts() []*ExecutionContext {
	return append([]*ExecutionContext(nil), t.contexts...)
}

// ContextsOf returns the execution contexts of one processor.
func (t *Topology) ContextsOf(cpu *Component) []*ExecutionContext {
	var list []*ExecutionContext

	for _, c := range t.contexts {
		if c.cpu == cpu {
			list = append(list, c)
		}
	}

	return list
}

// Processes returns every distinct process assigned to a context.
func (t *Topology) Processes() []*Process {
	seen := make(map[*Process]bool)

	var list []*Process

	for _, c := range t.contexts {
		for _, p := range c.workloads {
			if !seen[p] {
				seen[p] = true
				list = append(list, p)
			}
		}
	}

	return list
}

// Components returns every component, depth first from the root.
func (t *Topology) Components() []*Component {
	var list []*Component

	t.root.Walk(func(c *Component) {
		list = append(list, c)
	})

	return list
}

// Find returns the component with the given path, or nil.
func (t *Topology) Find(path string) *Component {
	tokens := strings.Split(path, ".")
	if tokens[0] != t.root.name {
		return nil
	}

	c := t.root
	for _, tok := range tokens[1:] {
		c = c.Child(tok)
		if c == nil {
			return nil
		}
	}

	return c
}

// MemMode returns the memory access mode of the system.
func (t *Topology) MemMode() string {
	return t.root.StringParam(ParamMemMode)
}

// ISA returns the instruction set the system is built for.
func (t *Topology) ISA() string {
	return t.root.StringParam(ParamISA)
}

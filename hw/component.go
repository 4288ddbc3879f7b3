// Package hw describes the simulated hardware as a tree of components whose
// ports are cross-linked by bindings, together with the workloads that run on
// the processors.
package hw

import (
	"fmt"
	"sort"
	"strings"
)

// Kind tags what a component models.
type Kind int

// The kinds of components that a system can contain.
const (
	KindSystem Kind = iota
	KindCPU
	KindSwitchCPU
	KindCache
	KindXBar
	KindMemCtrl
	KindDRAM
	KindInterrupts
	KindChecker
	KindBranchPredictor
	KindProbe
	KindKvmVM
	KindRuby
	KindRubyNetwork
	KindL1Controller
	KindSequencer
	KindDirectory
)

var kindNames = map[Kind]string{
	KindSystem:          "System",
	KindCPU:             "CPU",
	KindSwitchCPU:       "SwitchCPU",
	KindCache:           "Cache",
	KindXBar:            "XBar",
	KindMemCtrl:         "MemCtrl",
	KindDRAM:            "DRAM",
	KindInterrupts:      "Interrupts",
	KindChecker:         "Checker",
	KindBranchPredictor: "BranchPredictor",
	KindProbe:           "Probe",
	KindKvmVM:           "KvmVM",
	KindRuby:            "Ruby",
	KindRubyNetwork:     "RubyNetwork",
	KindL1Controller:    "L1Controller",
	KindSequencer:       "Sequencer",
	KindDirectory:       "Directory",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// A Component is one simulated hardware unit. Components form an ownership
// tree rooted at the system; ports link them across the tree.
type Component struct {
	topo     *Topology
	name     string
	kind     Kind
	typeName string
	parent   *Component
	children []*Component
	params   map[string]any
	ports    []*Port
	clock    *ClockDomain
}

// Name returns the local name of the component.
func (c *Component) Name() string {
	return c.name
}

// Kind returns the kind tag.
func (c *Component) Kind() Kind {
	return c.kind
}

// Type returns the concrete variant, for example "TimingSimpleCPU".
func (c *Component) Type() string {
	return c.typeName
}

// Parent returns the owner of the component, nil for the root.
func (c *Component) Parent() *Component {
	return c.parent
}

// Children returns the owned components in creation order.
func (c *Component) Children() []*Component {
	return append([]*Component(nil), c.children...)
}

// Child returns the direct child with the given name, or nil.
func (c *Component) Child(name string) *Component {
	for _, child := range c.children {
		if child.name == name {
			return child
		}
	}

	return nil
}

// Path returns the dotted hierarchical name, e.g. "system.cpu[0].icache".
func (c *Component) Path() string {
	if c.parent == nil {
		return c.name
	}

	return c.parent.Path() + "." + c.name
}

// Clock returns the clock domain the component is clocked from. Components
// without an explicit domain inherit the one of their parent.
func (c *Component) Clock() *ClockDomain {
	for comp := c; comp != nil; comp = comp.parent {
		if comp.clock != nil {
			return comp.clock
		}
	}

	return nil
}

// SetClock makes the component reference the given domain.
func (c *Component) SetClock(d *ClockDomain) error {
	if err := c.topo.mustBeMutable(); err != nil {
		return err
	}

	c.clock = d

	return nil
}

// SetParam sets a parameter value.
func (c *Component) SetParam(key string, value any) error {
	if err := c.topo.mustBeMutable(); err != nil {
		return err
	}

	c.params[key] = value

	return nil
}

// Param returns a parameter value.
func (c *Component) Param(key string) (any, bool) {
	v, ok := c.params[key]
	return v, ok
}

// StringParam returns a string parameter, or "" if it is absent or not a
// string.
func (c *Component) StringParam(key string) string {
	s, _ := c.params[key].(string)
	return s
}

// IntParam returns an integer parameter, or 0 if it is absent.
func (c *Component) IntParam(key string) int {
	switch v := c.params[key].(type) {
	case int:
		return v
	case uint64:
		return int(v)
	case int64:
		return int(v)
	}

	return 0
}

// BoolParam returns a boolean parameter, false if it is absent.
func (c *Component) BoolParam(key string) bool {
	b, _ := c.params[key].(bool)
	return b
}

// ParamNames returns the sorted parameter names.
func (c *Component) ParamNames() []string {
	names := make([]string, 0, len(c.params))
	for k := range c.params {
		names = append(names, k)
	}

	sort.Strings(names)

	return names
}

// ParamString renders the parameters as sorted key=value pairs joined by sep.
func (c *Component) ParamString(sep string) string {
	names := c.ParamNames()
	pairs := make([]string, 0, len(names))

	for _, n := range names {
		pairs = append(pairs, fmt.Sprintf("%s=%v", n, c.params[n]))
	}

	return strings.Join(pairs, sep)
}

// PortOption customizes a port when it is added to a component.
type PortOption func(p *Port)

// Functional marks a port as carrying no timing, such as PIO and interrupt
// ports.
func Functional() PortOption {
	return func(p *Port) {
		p.functional = true
	}
}

// Vector marks a port as a vector port. A vector request port spawns a new
// element for every binding.
func Vector() PortOption {
	return func(p *Port) {
		p.vector = true
	}
}

// AddPort creates a port on the component.
func (c *Component) AddPort(
	name string,
	role Role,
	opts ...PortOption,
) (*Port, error) {
	if err := c.topo.mustBeMutable(); err != nil {
		return nil, err
	}

	if c.findPort(name) != nil {
		return nil, fmt.Errorf("port %s already exists on %s", name, c.Path())
	}

	p := &Port{name: name, owner: c, role: role}
	for _, opt := range opts {
		opt(p)
	}

	c.ports = append(c.ports, p)

	return p, nil
}

// Port returns the port with the given name. A missing port is a contract
// violation of whoever asked for it.
func (c *Component) Port(name string) (*Port, error) {
	p := c.findPort(name)
	if p == nil {
		return nil, &PortNotFoundError{Component: c.Path(), Port: name}
	}

	return p, nil
}

func (c *Component) findPort(name string) *Port {
	for _, p := range c.ports {
		if p.name == name {
			return p
		}

		for _, e := range p.elements {
			if e.name == name {
				return e
			}
		}
	}

	return nil
}

// Ports returns the ports declared on the component, vector elements
// excluded.
func (c *Component) Ports() []*Port {
	return append([]*Port(nil), c.ports...)
}

// Walk visits the component and all its descendants depth first.
func (c *Component) Walk(fn func(*Component)) {
	fn(c)

	for _, child := range c.children {
		child.Walk(fn)
	}
}

func (c *Component) String() string {
	var b strings.Builder

	b.WriteString(c.Path())
	b.WriteString(" (")
	b.WriteString(c.typeName)
	b.WriteString(")")

	return b.String()
}

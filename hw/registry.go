package hw

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned when a topology is modified after instantiation.
var ErrFrozen = errors.New("topology is frozen")

// ErrRoleMismatch is returned when a binding does not go from a request port
// to a response port.
var ErrRoleMismatch = errors.New("binding must go from a request port to a response port")

// BindingConflictError reports an attempt to rebind a request port.
type BindingConflictError struct {
	Port      string
	BoundTo   string
	Requested string
}

func (e *BindingConflictError) Error() string {
	return fmt.Sprintf(
		"request port %s is already bound to %s, cannot bind to %s",
		e.Port, e.BoundTo, e.Requested,
	)
}

// PortNotFoundError reports that a component lacks a port that the builder
// expected it to have.
type PortNotFoundError struct {
	Component string
	Port      string
}

func (e *PortNotFoundError) Error() string {
	return fmt.Sprintf("component %s has no port %s", e.Component, e.Port)
}

// A Binding links one request port to one response port.
type Binding struct {
	Request  *Port
	Response *Port
}

// Registry records the port bindings of a topology.
type Registry struct {
	topo     *Topology
	bindings []Binding
}

// Bindings returns all bindings in creation order.
func (r *Registry) Bindings() []Binding {
	return append([]Binding(nil), r.bindings...)
}

// Bind links a request port to a response port. A request port can only be
// bound once; a response port accepts any number of requesters. Binding a
// vector request port binds a newly spawned element of it.
func (r *Registry) Bind(req, resp *Port) (Binding, error) {
	if err := r.topo.mustBeMutable(); err != nil {
		return Binding{}, err
	}

	if req.role != RoleRequest || resp.role != RoleResponse {
		return Binding{}, fmt.Errorf("%w: %s (%s) -> %s (%s)",
			ErrRoleMismatch, req.Path(), req.role, resp.Path(), resp.role)
	}

	if req.vector {
		req = req.newElement()
	}

	if len(req.peers) > 0 {
		return Binding{}, &BindingConflictError{
			Port:      req.Path(),
			BoundTo:   req.peers[0].Path(),
			Requested: resp.Path(),
		}
	}

	req.peers = append(req.peers, resp)
	resp.peers = append(resp.peers, req)

	b := Binding{Request: req, Response: resp}
	r.bindings = append(r.bindings, b)

	return b, nil
}

// BindByName looks up both ports and binds them.
func (r *Registry) BindByName(
	reqOwner *Component, reqPort string,
	respOwner *Component, respPort string,
) (Binding, error) {
	req, err := reqOwner.Port(reqPort)
	if err != nil {
		return Binding{}, err
	}

	resp, err := respOwner.Port(respPort)
	if err != nil {
		return Binding{}, err
	}

	return r.Bind(req, resp)
}

// ConnectCache binds the CPU port matching the cache variant (instruction or
// data) to the CPU-facing side of the cache.
func (r *Registry) ConnectCache(cache, cpu *Component) error {
	var cpuPort string

	switch cache.StringParam(ParamVariant) {
	case VariantL1I:
		cpuPort = "icache_port"
	case VariantL1D:
		cpuPort = "dcache_port"
	default:
		return fmt.Errorf("cache %s is not a first-level cache", cache.Path())
	}

	_, err := r.BindByName(cpu, cpuPort, cache, "cpu_side")

	return err
}

// ConnectBus binds the memory side of a cache to the CPU side of a bus.
func (r *Registry) ConnectBus(cache, bus *Component) error {
	_, err := r.BindByName(cache, "mem_side", bus, "cpu_side_ports")
	return err
}

// ConnectCPUSideBus binds the memory side of a bus to the CPU side of a
// cache. It is used for caches below the first level.
func (r *Registry) ConnectCPUSideBus(cache, bus *Component) error {
	_, err := r.BindByName(bus, "mem_side_ports", cache, "cpu_side")
	return err
}

// ConnectCPUToBus binds the instruction and data ports of a CPU directly to a
// bus, for systems without caches.
func (r *Registry) ConnectCPUToBus(cpu, bus *Component) error {
	for _, name := range []string{"icache_port", "dcache_port"} {
		if _, err := r.BindByName(cpu, name, bus, "cpu_side_ports"); err != nil {
			return err
		}
	}

	return nil
}

// ConnectInterrupts binds the PIO and interrupt ports of the CPU's interrupt
// controller to the system bus. These ports are functional only.
func (r *Registry) ConnectInterrupts(cpu, bus *Component) error {
	intr := cpu.Child("interrupts")
	if intr == nil {
		return &PortNotFoundError{Component: cpu.Path(), Port: "interrupts"}
	}

	if _, err := r.BindByName(bus, "mem_side_ports", intr, "pio"); err != nil {
		return err
	}

	if _, err := r.BindByName(intr, "int_requestor", bus, "cpu_side_ports"); err != nil {
		return err
	}

	_, err := r.BindByName(bus, "mem_side_ports", intr, "int_responder")

	return err
}

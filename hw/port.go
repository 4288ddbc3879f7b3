package hw

import "fmt"

// Role tells whether a port initiates or serves requests.
type Role int

// Port roles.
const (
	RoleRequest Role = iota
	RoleResponse
)

func (r Role) String() string {
	if r == RoleRequest {
		return "request"
	}

	return "response"
}

// A Port is a communication endpoint owned by a component.
type Port struct {
	name       string
	owner      *Component
	role       Role
	functional bool
	vector     bool

	vectorOf *Port
	elements []*Port
	peers    []*Port
}

// Name returns the port name. Elements of a vector port are named with an
// index suffix, e.g. "mem_side_ports[2]".
func (p *Port) Name() string {
	return p.name
}

// Path returns the port name qualified by its owner path.
func (p *Port) Path() string {
	return p.owner.Path() + "." + p.name
}

// Owner returns the component that owns the port.
func (p *Port) Owner() *Component {
	return p.owner
}

// Role returns the role of the port.
func (p *Port) Role() Role {
	return p.role
}

// Functional returns true for ports that carry no timing.
func (p *Port) Functional() bool {
	if p.vectorOf != nil {
		return p.vectorOf.functional
	}

	return p.functional
}

// Vector returns true if the port is a vector port.
func (p *Port) Vector() bool {
	return p.vector
}

// Elements returns the spawned elements of a vector request port.
func (p *Port) Elements() []*Port {
	return append([]*Port(nil), p.elements...)
}

// Peers returns the ports bound to this one.
func (p *Port) Peers() []*Port {
	return append([]*Port(nil), p.peers...)
}

// Bound returns true if the port, or any element of a vector port, is bound.
func (p *Port) Bound() bool {
	if len(p.peers) > 0 {
		return true
	}

	for _, e := range p.elements {
		if len(e.peers) > 0 {
			return true
		}
	}

	return false
}

// Peer returns the response port a request port is bound to, or nil.
func (p *Port) Peer() *Port {
	if p.role != RoleRequest || len(p.peers) == 0 {
		return nil
	}

	return p.peers[0]
}

func (p *Port) newElement() *Port {
	e := &Port{
		name:     fmt.Sprintf("%s[%d]", p.name, len(p.elements)),
		owner:    p.owner,
		role:     p.role,
		vectorOf: p,
	}
	p.elements = append(p.elements, e)

	return e
}

func (p *Port) String() string {
	return p.Path()
}

package core

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/neuralprobe/gem5/api"
	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
	"github.com/neuralprobe/gem5/selection"
)

// Errors returned by the simulator.
var (
	ErrNotInstantiated     = errors.New("simulator is not instantiated")
	ErrAlreadyInstantiated = errors.New("simulator is already instantiated")
	ErrTopologyNotFrozen   = errors.New("topology must be frozen before instantiation")
	ErrNoSwitchCPUs        = errors.New("no switched out cpus to switch to")
)

const portBufferSize = 4

// SimulatorBuilder creates simulators.
type SimulatorBuilder struct {
	engine         sim.Engine
	syntheticInsts uint64
	logger         *slog.Logger
}

// MakeSimulatorBuilder creates a SimulatorBuilder with default parameters.
func MakeSimulatorBuilder() SimulatorBuilder {
	return SimulatorBuilder{
		syntheticInsts: options.Default().SyntheticInsts,
		logger:         slog.Default(),
	}
}

// WithEngine sets the engine. A serial engine is created if none is set.
func (b SimulatorBuilder) WithEngine(engine sim.Engine) SimulatorBuilder {
	b.engine = engine
	return b
}

// WithSyntheticInsts sets the number of instructions each workload retires.
func (b SimulatorBuilder) WithSyntheticInsts(n uint64) SimulatorBuilder {
	b.syntheticInsts = n
	return b
}

// WithLogger sets the logger.
func (b SimulatorBuilder) WithLogger(logger *slog.Logger) SimulatorBuilder {
	b.logger = logger
	return b
}

// Build creates a simulator.
func (b SimulatorBuilder) Build() *Simulator {
	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	s := &Simulator{
		engine:         engine,
		syntheticInsts: b.syntheticInsts,
		logger:         b.logger,
		events:         &eventCounter{},
		monitor:        &exitMonitor{},
	}

	engine.AcceptHook(s.events)

	return s
}

// Simulator runs a frozen topology on an akita engine.
type Simulator struct {
	engine         sim.Engine
	syntheticInsts uint64
	logger         *slog.Logger
	events         *eventCounter
	monitor        *exitMonitor

	topo      *hw.Topology
	cores     []*Core
	coreOf    map[*hw.Component]*Core
	unitOf    map[*hw.Component]*Unit
	units     []*Unit
	ports     map[*hw.Port]sim.Port
	conns     map[*hw.Port]*directconnection.Comp
	curTick   uint64
	switchCnt int
}

var _ api.Simulator = (*Simulator)(nil)

// Cores returns the processors in creation order.
func (s *Simulator) Cores() []*Core {
	return s.cores
}

// Units returns the non-processor components in creation order.
func (s *Simulator) Units() []*Unit {
	return s.units
}

// Events returns the number of events the engine has handled.
func (s *Simulator) Events() uint64 {
	return s.events.count
}

// Connections returns the number of connections created.
func (s *Simulator) Connections() int {
	return len(s.conns)
}

// CurTick returns the tick of the last exit event.
func (s *Simulator) CurTick() uint64 {
	return s.curTick
}

// Instantiate creates one ticking component per live component with bound
// ports and connects their ports following the bindings of the topology.
func (s *Simulator) Instantiate(topo *hw.Topology) error {
	if s.topo != nil {
		return ErrAlreadyInstantiated
	}

	if !topo.Frozen() {
		return ErrTopologyNotFrozen
	}

	s.coreOf = make(map[*hw.Component]*Core)
	s.unitOf = make(map[*hw.Component]*Unit)
	s.ports = make(map[*hw.Port]sim.Port)
	s.conns = make(map[*hw.Port]*directconnection.Comp)

	for _, c := range topo.Components() {
		if switchedOut(c) {
			continue
		}

		if err := s.instantiateComponent(topo, c); err != nil {
			return err
		}
	}

	for _, b := range topo.Registry().Bindings() {
		if err := s.connect(b); err != nil {
			return err
		}
	}

	s.topo = topo

	s.logger.Info("instantiated",
		slog.String("topology", topo.ID()),
		slog.Int("cores", len(s.cores)),
		slog.Int("units", len(s.units)),
		slog.Int("connections", len(s.conns)),
		slog.Int("threads", s.monitor.active))

	return nil
}

func switchedOut(c *hw.Component) bool {
	for p := c; p != nil; p = p.Parent() {
		if p.BoolParam(hw.ParamSwitchedOut) {
			return true
		}
	}

	return false
}

func hasBoundPort(c *hw.Component) bool {
	for _, p := range c.Ports() {
		if p.Bound() {
			return true
		}
	}

	return false
}

func frequencyOf(c *hw.Component) (sim.Freq, error) {
	d := c.Clock()
	if d == nil {
		return 1 * sim.GHz, nil
	}

	hz, err := options.ParseFrequency(d.Clock())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", c.Path(), err)
	}

	return sim.Freq(hz), nil
}

func (s *Simulator) instantiateComponent(topo *hw.Topology, c *hw.Component) error {
	if c.Kind() != hw.KindCPU && !hasBoundPort(c) {
		return nil
	}

	freq, err := frequencyOf(c)
	if err != nil {
		return err
	}

	b := MakeBuilder().
		WithEngine(s.engine).
		WithFreq(freq).
		withMonitor(s.monitor)

	if c.Kind() != hw.KindCPU {
		u := b.BuildUnit(akitaName(c.Path()), c.Kind().String())
		s.unitOf[c] = u
		s.units = append(s.units, u)

		return nil
	}

	model, err := selection.LookupCPU(c.Type())
	if err != nil {
		return err
	}

	core := b.WithModel(model).Build(akitaName(c.Path()))
	limit := uint64(c.IntParam("max_insts_any_thread"))

	for _, ctx := range topo.ContextsOf(c) {
		for _, p := range ctx.Workloads() {
			core.AddThread(p.PID(), s.syntheticInsts, limit)

			if s.syntheticInsts > 0 {
				s.monitor.active++
			}
		}
	}

	s.coreOf[c] = core
	s.cores = append(s.cores, core)

	return nil
}

func (s *Simulator) component(c *hw.Component) sim.Component {
	if core, ok := s.coreOf[c]; ok {
		return core
	}

	if u, ok := s.unitOf[c]; ok {
		return u
	}

	return nil
}

func (s *Simulator) port(p *hw.Port) sim.Port {
	if sp, ok := s.ports[p]; ok {
		return sp
	}

	owner := s.component(p.Owner())
	sp := sim.NewPort(owner, portBufferSize, portBufferSize, akitaName(p.Path()))
	owner.AddPort(akitaToken(p.Name()), sp)
	s.ports[p] = sp

	if u, ok := s.unitOf[p.Owner()]; ok && p.Role() == hw.RoleResponse {
		u.addInput(sp)
	}

	return sp
}

func (s *Simulator) connect(b hw.Binding) error {
	if s.component(b.Request.Owner()) == nil || s.component(b.Response.Owner()) == nil {
		return nil
	}

	resp := s.port(b.Response)
	req := s.port(b.Request)

	conn, ok := s.conns[b.Response]
	if !ok {
		freq, err := frequencyOf(b.Response.Owner())
		if err != nil {
			return err
		}

		conn = directconnection.MakeBuilder().
			WithEngine(s.engine).
			WithFreq(freq).
			Build(akitaName(b.Response.Path()) + "Conn")
		conn.PlugIn(resp)
		s.conns[b.Response] = conn
	}

	conn.PlugIn(req)

	if core, ok := s.coreOf[b.Request.Owner()]; ok {
		core.SetRemotePort(b.Request.Name(), req, resp.AsRemote())
		return nil
	}

	if u, ok := s.unitOf[b.Request.Owner()]; ok && forwards(b) {
		u.setForward(req, resp.AsRemote())
	}

	return nil
}

// forwards reports whether accesses flow through a binding towards memory.
func forwards(b hw.Binding) bool {
	switch b.Request.Owner().Kind() {
	case hw.KindCache, hw.KindXBar:
	default:
		return false
	}

	return !b.Request.Functional() && b.Response.Owner().Kind() != hw.KindInterrupts
}

// Simulate runs until an exit event or until budget ticks have passed.
func (s *Simulator) Simulate(budget uint64) (api.ExitEvent, error) {
	if s.topo == nil {
		return api.ExitEvent{}, ErrNotInstantiated
	}

	end := s.curTick + budget
	if end < s.curTick {
		end = options.MaxTick
	}

	s.monitor.reset(end)

	for _, c := range s.cores {
		if c.active() {
			c.TickLater()
		}
	}

	if err := s.engine.Run(); err != nil {
		return api.ExitEvent{}, err
	}

	if !s.monitor.posted {
		s.monitor.post(s.curTick, api.CauseLastThread)
	}

	s.curTick = s.monitor.event.Tick

	return s.monitor.event, nil
}

// SwitchCPUs moves the threads of every processor to the model of its
// switched out counterpart.
func (s *Simulator) SwitchCPUs() error {
	if s.topo == nil {
		return ErrNotInstantiated
	}

	switched := 0

	for _, sw := range s.topo.Components() {
		if sw.Kind() != hw.KindSwitchCPU {
			continue
		}

		target := s.topo.Find(sw.StringParam("switch_of"))
		core, ok := s.coreOf[target]
		if !ok {
			return fmt.Errorf("%s switches a cpu that does not exist", sw.Path())
		}

		model, err := selection.LookupCPU(sw.Type())
		if err != nil {
			return err
		}

		core.switchTo(model, uint64(sw.IntParam("max_insts_any_thread")))
		switched++
	}

	if switched == 0 {
		return ErrNoSwitchCPUs
	}

	s.switchCnt++
	s.logger.Info("switched cpus",
		slog.Uint64("tick", s.curTick),
		slog.Int("cpus", switched))

	return nil
}

// Switches returns how many times the processors were switched.
func (s *Simulator) Switches() int {
	return s.switchCnt
}

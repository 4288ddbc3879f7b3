package config

import (
	"fmt"

	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/selection"
)

func (s *system) newBus(name, typeName string) *hw.Component {
	bus := s.add(s.topo.Root(), name, hw.KindXBar, typeName)
	s.port(bus, "cpu_side_ports", hw.RoleResponse, hw.Vector())
	s.port(bus, "mem_side_ports", hw.RoleRequest, hw.Vector())

	return bus
}

// newCache creates a cache of the given variant. All cache levels share this
// shape and differ in their profile only.
func (s *system) newCache(parent *hw.Component, name, variant string) *hw.Component {
	if s.err != nil {
		return nil
	}

	profile, err := selection.Profile(variant, s.cfg)
	if err != nil {
		s.fail(err)
		return nil
	}

	cache := s.add(parent, name, hw.KindCache, "Cache")
	for k, v := range profile.Params() {
		s.param(cache, k, v)
	}

	s.port(cache, "cpu_side", hw.RoleResponse)
	s.port(cache, "mem_side", hw.RoleRequest)

	return cache
}

func (s *system) newMemCtrl(name string, channel, channels int) *hw.Component {
	ctrl := s.add(s.topo.Root(), name, hw.KindMemCtrl, "MemCtrl")
	s.port(ctrl, "port", hw.RoleResponse)

	dram := s.add(ctrl, "dram", hw.KindDRAM, s.sel.MemType)
	s.param(dram, hw.ParamMemRange, s.topo.Root().IntParam(hw.ParamMemRange))
	s.param(dram, "intlv_match", channel)
	s.param(dram, "intlv_channels", channels)

	return ctrl
}

// buildClassic creates the system bus, the optional cache hierarchy, and the
// memory controllers.
func (s *system) buildClassic() {
	membus := s.newBus("membus", "SystemXBar")
	s.bind(s.topo.Root(), "system_port", membus, "cpu_side_ports")

	var l2bus *hw.Component

	if s.cfg.Caches && s.cfg.L2Cache {
		l2bus = s.newBus("tol2bus", "L2XBar")
		s.clock(l2bus, s.cpuClock)

		l2 := s.newCache(s.topo.Root(), "l2", hw.VariantL2)
		s.clock(l2, s.cpuClock)
		s.connect(func(r *hw.Registry) error { return r.ConnectCPUSideBus(l2, l2bus) })
		s.connect(func(r *hw.Registry) error { return r.ConnectBus(l2, membus) })
	}

	for _, cpu := range s.cpus {
		s.connectCPU(cpu, membus, l2bus)

		if s.isX86() {
			s.connect(func(r *hw.Registry) error { return r.ConnectInterrupts(cpu, membus) })
		}
	}

	for i := 0; i < s.cfg.MemChannels; i++ {
		ctrl := s.newMemCtrl(fmt.Sprintf("mem_ctrls[%d]", i), i, s.cfg.MemChannels)
		s.bind(membus, "mem_side_ports", ctrl, "port")
	}
}

func (s *system) connectCPU(cpu, membus, l2bus *hw.Component) {
	if !s.cfg.Caches {
		s.connect(func(r *hw.Registry) error { return r.ConnectCPUToBus(cpu, membus) })
		return
	}

	below := membus
	if l2bus != nil {
		below = l2bus
	}

	for _, l1 := range []struct{ name, variant string }{
		{"icache", hw.VariantL1I},
		{"dcache", hw.VariantL1D},
	} {
		cache := s.newCache(cpu, l1.name, l1.variant)
		s.connect(func(r *hw.Registry) error { return r.ConnectCache(cache, cpu) })
		s.connect(func(r *hw.Registry) error { return r.ConnectBus(cache, below) })
	}
}

// buildRuby creates the coherent memory system. Every processor gets a first
// level controller whose sequencer serves the processor ports; every
// directory owns one memory controller.
func (s *system) buildRuby() {
	root := s.topo.Root()

	ruby := s.add(root, "ruby", hw.KindRuby, "RubySystem")
	s.clock(ruby, s.rubyClock)
	s.param(ruby, "num_of_sequencers", s.cfg.NumCPUs)
	s.param(ruby, "block_size_bytes", s.cfg.CacheLineSize)

	s.add(ruby, "network", hw.KindRubyNetwork, "SimpleNetwork")

	proxy := s.add(ruby, "sys_port_proxy", hw.KindSequencer, "RubyPortProxy")
	s.port(proxy, "in_ports", hw.RoleResponse, hw.Vector())
	s.bind(root, "system_port", proxy, "in_ports")

	for i, cpu := range s.cpus {
		if s.err != nil {
			return
		}

		ctrl := s.add(ruby, fmt.Sprintf("l1_cntrl[%d]", i), hw.KindL1Controller, "L1Cache_Controller")
		s.param(ctrl, "version", i)

		seq := s.add(ctrl, "sequencer", hw.KindSequencer, "RubySequencer")
		s.param(seq, "version", i)
		s.port(seq, "in_ports", hw.RoleResponse, hw.Vector())
		s.port(seq, "interrupt_out_port", hw.RoleRequest, hw.Vector(), hw.Functional())

		s.bind(cpu, "icache_port", seq, "in_ports")
		s.bind(cpu, "dcache_port", seq, "in_ports")

		if s.isX86() {
			intr := cpu.Child("interrupts")
			s.bind(seq, "interrupt_out_port", intr, "pio")
			s.bind(intr, "int_requestor", seq, "in_ports")
			s.bind(seq, "interrupt_out_port", intr, "int_responder")
		}
	}

	for i := 0; i < s.cfg.NumDirs; i++ {
		dir := s.add(ruby, fmt.Sprintf("dir_cntrl[%d]", i), hw.KindDirectory, "Directory_Controller")
		s.param(dir, "version", i)
		s.port(dir, "memory_out_port", hw.RoleRequest)

		ctrl := s.newMemCtrl(fmt.Sprintf("mem_ctrls[%d]", i), i, s.cfg.NumDirs)
		s.bind(dir, "memory_out_port", ctrl, "port")
	}
}

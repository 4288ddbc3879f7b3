package hw_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/neuralprobe/gem5/hw"
)

var _ = Describe("Registry", func() {
	var (
		topo     *hw.Topology
		registry *hw.Registry
		cpu      *hw.Component
		bus      *hw.Component
	)

	BeforeEach(func() {
		var err error

		topo = hw.NewTopology("system")
		registry = topo.Registry()

		cpu, err = topo.NewComponent(topo.Root(), "cpu", hw.KindCPU, "TimingSimpleCPU")
		Expect(err).NotTo(HaveOccurred())
		_, err = cpu.AddPort("icache_port", hw.RoleRequest)
		Expect(err).NotTo(HaveOccurred())
		_, err = cpu.AddPort("dcache_port", hw.RoleRequest)
		Expect(err).NotTo(HaveOccurred())

		bus, err = topo.NewComponent(topo.Root(), "membus", hw.KindXBar, "SystemXBar")
		Expect(err).NotTo(HaveOccurred())
		_, err = bus.AddPort("cpu_side_ports", hw.RoleResponse, hw.Vector())
		Expect(err).NotTo(HaveOccurred())
		_, err = bus.AddPort("mem_side_ports", hw.RoleRequest, hw.Vector())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should record a binding on both sides", func() {
		b, err := registry.BindByName(cpu, "icache_port", bus, "cpu_side_ports")

		Expect(err).NotTo(HaveOccurred())
		Expect(b.Request.Path()).To(Equal("system.cpu.icache_port"))
		Expect(b.Request.Peer()).To(Equal(b.Response))
		Expect(b.Response.Peers()).To(ConsistOf(b.Request))
		Expect(registry.Bindings()).To(HaveLen(1))
	})

	It("should refuse to rebind a request port", func() {
		_, err := registry.BindByName(cpu, "icache_port", bus, "cpu_side_ports")
		Expect(err).NotTo(HaveOccurred())

		_, err = registry.BindByName(cpu, "icache_port", bus, "cpu_side_ports")

		var conflict *hw.BindingConflictError
		Expect(err).To(BeAssignableToTypeOf(conflict))
		Expect(err.Error()).To(ContainSubstring("system.cpu.icache_port"))
		Expect(registry.Bindings()).To(HaveLen(1))
	})

	It("should let a response port serve many requesters", func() {
		Expect(registry.ConnectCPUToBus(cpu, bus)).To(Succeed())

		resp, err := bus.Port("cpu_side_ports")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Peers()).To(HaveLen(2))
	})

	It("should spawn an element per binding of a vector request port", func() {
		ctrl, err := topo.NewComponent(topo.Root(), "mem_ctrl", hw.KindMemCtrl, "MemCtrl")
		Expect(err).NotTo(HaveOccurred())
		_, err = ctrl.AddPort("port", hw.RoleResponse)
		Expect(err).NotTo(HaveOccurred())
		other, err := topo.NewComponent(topo.Root(), "mem_ctrl2", hw.KindMemCtrl, "MemCtrl")
		Expect(err).NotTo(HaveOccurred())
		_, err = other.AddPort("port", hw.RoleResponse)
		Expect(err).NotTo(HaveOccurred())

		b1, err := registry.BindByName(bus, "mem_side_ports", ctrl, "port")
		Expect(err).NotTo(HaveOccurred())
		b2, err := registry.BindByName(bus, "mem_side_ports", other, "port")
		Expect(err).NotTo(HaveOccurred())

		Expect(b1.Request.Name()).To(Equal("mem_side_ports[0]"))
		Expect(b2.Request.Name()).To(Equal("mem_side_ports[1]"))

		vec, err := bus.Port("mem_side_ports")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec.Elements()).To(HaveLen(2))
		Expect(vec.Bound()).To(BeTrue())
	})

	It("should reject bindings in the wrong direction", func() {
		_, err := registry.BindByName(bus, "cpu_side_ports", cpu, "icache_port")

		Expect(err).To(MatchError(hw.ErrRoleMismatch))
	})

	It("should report a missing port", func() {
		_, err := registry.BindByName(cpu, "walker_port", bus, "cpu_side_ports")

		var notFound *hw.PortNotFoundError
		Expect(err).To(BeAssignableToTypeOf(notFound))
	})

	It("should refuse to bind after the topology is frozen", func() {
		topo.Freeze()

		_, err := registry.BindByName(cpu, "icache_port", bus, "cpu_side_ports")

		Expect(err).To(MatchError(hw.ErrFrozen))
	})

	Context("with a first-level cache", func() {
		var icache *hw.Component

		BeforeEach(func() {
			var err error
			icache, err = topo.NewComponent(cpu, "icache", hw.KindCache, "Cache")
			Expect(err).NotTo(HaveOccurred())
			Expect(icache.SetParam(hw.ParamVariant, hw.VariantL1I)).To(Succeed())
			_, err = icache.AddPort("cpu_side", hw.RoleResponse)
			Expect(err).NotTo(HaveOccurred())
			_, err = icache.AddPort("mem_side", hw.RoleRequest)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should connect the instruction port of the CPU", func() {
			Expect(registry.ConnectCache(icache, cpu)).To(Succeed())
			Expect(registry.ConnectBus(icache, bus)).To(Succeed())

			port, _ := cpu.Port("icache_port")
			Expect(port.Peer().Owner()).To(Equal(icache))
			memSide, _ := icache.Port("mem_side")
			Expect(memSide.Peer().Owner()).To(Equal(bus))
		})

		It("should refuse a cache without a first-level variant", func() {
			Expect(icache.SetParam(hw.ParamVariant, hw.VariantL2)).To(Succeed())

			Expect(registry.ConnectCache(icache, cpu)).NotTo(Succeed())
		})
	})

	It("should fail to connect interrupts when none were built", func() {
		err := registry.ConnectInterrupts(cpu, bus)

		var notFound *hw.PortNotFoundError
		Expect(err).To(BeAssignableToTypeOf(notFound))
	})
})

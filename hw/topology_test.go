package hw_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/neuralprobe/gem5/hw"
)

var _ = Describe("Topology", func() {
	var topo *hw.Topology

	BeforeEach(func() {
		topo = hw.NewTopology("system")
	})

	It("should name components hierarchically", func() {
		cpu, err := topo.NewComponent(topo.Root(), "cpu[0]", hw.KindCPU, "AtomicSimpleCPU")
		Expect(err).NotTo(HaveOccurred())
		dcache, err := topo.NewComponent(cpu, "dcache", hw.KindCache, "Cache")
		Expect(err).NotTo(HaveOccurred())

		Expect(dcache.Path()).To(Equal("system.cpu[0].dcache"))
		Expect(topo.Find("system.cpu[0].dcache")).To(Equal(dcache))
		Expect(topo.CPUs()).To(ConsistOf(cpu))
	})

	It("should render parameters sorted by name", func() {
		cache, err := topo.NewComponent(topo.Root(), "l2", hw.KindCache, "Cache")
		Expect(err).NotTo(HaveOccurred())
		Expect(cache.SetParam("size", uint64(256<<10))).To(Succeed())
		Expect(cache.SetParam("assoc", 8)).To(Succeed())

		Expect(cache.ParamString(" ")).To(Equal("assoc=8 size=262144"))
		Expect(cache.ParamString(";")).To(Equal("assoc=8;size=262144"))
	})

	It("should reject duplicated children", func() {
		_, err := topo.NewComponent(topo.Root(), "membus", hw.KindXBar, "SystemXBar")
		Expect(err).NotTo(HaveOccurred())

		_, err = topo.NewComponent(topo.Root(), "membus", hw.KindXBar, "SystemXBar")
		Expect(err).To(HaveOccurred())
	})

	It("should share clock domains by reference", func() {
		vd, err := topo.NewVoltageDomain("voltage_domain", "1.0V")
		Expect(err).NotTo(HaveOccurred())
		clk, err := topo.NewClockDomain("cpu_clk_domain", "2GHz", vd)
		Expect(err).NotTo(HaveOccurred())

		cpu0, _ := topo.NewComponent(topo.Root(), "cpu[0]", hw.KindCPU, "AtomicSimpleCPU")
		cpu1, _ := topo.NewComponent(topo.Root(), "cpu[1]", hw.KindCPU, "AtomicSimpleCPU")
		icache, _ := topo.NewComponent(cpu0, "icache", hw.KindCache, "Cache")
		Expect(cpu0.SetClock(clk)).To(Succeed())
		Expect(cpu1.SetClock(clk)).To(Succeed())

		Expect(cpu0.Clock()).To(BeIdenticalTo(cpu1.Clock()))
		Expect(icache.Clock()).To(BeIdenticalTo(clk))
		Expect(clk.VoltageDomain()).To(BeIdenticalTo(vd))
	})

	It("should keep processes immutable", func() {
		args := []string{"./prog", "-v"}
		p := hw.NewProcess(hw.ProcessSpec{PID: 100, Executable: "./prog", Args: args})

		args[1] = "-q"
		got := p.Args()
		got[0] = "changed"

		Expect(p.Args()).To(Equal([]string{"./prog", "-v"}))
	})

	It("should assign contexts to processors only", func() {
		cpu, _ := topo.NewComponent(topo.Root(), "cpu", hw.KindCPU, "AtomicSimpleCPU")
		bus, _ := topo.NewComponent(topo.Root(), "membus", hw.KindXBar, "SystemXBar")
		p := hw.NewProcess(hw.ProcessSpec{PID: 100, Executable: "a"})

		ctx, err := topo.AddContext(cpu, []*hw.Process{p})
		Expect(err).NotTo(HaveOccurred())
		Expect(ctx.Index()).To(Equal(0))
		Expect(ctx.CPU()).To(Equal(cpu))

		_, err = topo.AddContext(bus, []*hw.Process{p})
		Expect(err).To(HaveOccurred())

		_, err = topo.AddContext(cpu, []*hw.Process{p})
		Expect(err).NotTo(HaveOccurred())
		Expect(topo.Processes()).To(HaveLen(1))
	})

	It("should refuse structural changes once frozen", func() {
		cpu, _ := topo.NewComponent(topo.Root(), "cpu", hw.KindCPU, "AtomicSimpleCPU")
		topo.Freeze()

		_, err := topo.NewComponent(topo.Root(), "l2bus", hw.KindXBar, "L2XBar")
		Expect(err).To(MatchError(hw.ErrFrozen))
		_, err = cpu.AddPort("icache_port", hw.RoleRequest)
		Expect(err).To(MatchError(hw.ErrFrozen))
		Expect(cpu.SetParam("x", 1)).To(MatchError(hw.ErrFrozen))
	})
})

package core

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/neuralprobe/gem5/api"
)

var _ = Describe("Naming", func() {
	DescribeTable("akitaName",
		func(path, expected string) {
			Expect(akitaName(path)).To(Equal(expected))
		},
		Entry("root", "system", "System"),
		Entry("indexed component", "system.cpu[0]", "System.Cpu[0]"),
		Entry("snake case port", "system.cpu[0].icache_port", "System.Cpu[0].IcachePort"),
		Entry("vector element", "system.membus.mem_side_ports[2]", "System.Membus.MemSidePorts[2]"),
		Entry("camel case child", "system.cpu[1].branchPred", "System.Cpu[1].BranchPred"),
	)

	It("should convert engine time to ticks", func() {
		Expect(toTick(sim.VTimeInSec(0))).To(Equal(uint64(0)))
		Expect(toTick(sim.VTimeInSec(1e-9))).To(Equal(uint64(1000)))
		Expect(toTick(sim.VTimeInSec(0.5e-9))).To(Equal(uint64(500)))
	})
})

var _ = Describe("exitMonitor", func() {
	var m *exitMonitor

	BeforeEach(func() {
		m = &exitMonitor{active: 2}
		m.reset(1000)
	})

	It("should keep the first event", func() {
		m.post(10, api.CauseMaxInsts)
		m.post(20, api.CauseLimit)

		Expect(m.posted).To(BeTrue())
		Expect(m.event).To(Equal(api.ExitEvent{Tick: 10, Cause: api.CauseMaxInsts}))
	})

	It("should post last thread when every thread is done", func() {
		m.threadDone(5)
		Expect(m.posted).To(BeFalse())

		m.threadDone(7)
		Expect(m.event).To(Equal(api.ExitEvent{Tick: 7, Cause: api.CauseLastThread}))
	})

	It("should forget the event on reset", func() {
		m.post(10, api.CauseLimit)
		m.reset(2000)

		Expect(m.posted).To(BeFalse())
		Expect(m.end).To(Equal(uint64(2000)))
	})
})

var _ = Describe("Core", func() {
	var (
		engine sim.Engine
		m      *exitMonitor
		c      *Core
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		m = &exitMonitor{}
		m.reset(^uint64(0))
		c = MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			withMonitor(m).
			Build("Cpu")
	})

	It("should retire instructions of every thread", func() {
		c.AddThread(100, 3, 0)
		c.AddThread(101, 3, 0)
		m.active = 2

		c.TickLater()
		Expect(engine.Run()).To(Succeed())

		Expect(c.Retired()).To(Equal([]uint64{3, 3}))
		Expect(m.event.Cause).To(Equal(api.CauseLastThread))
	})

	It("should stop at the instruction limit", func() {
		c.AddThread(100, 10, 4)
		m.active = 1

		c.TickLater()
		Expect(engine.Run()).To(Succeed())

		Expect(c.Retired()).To(Equal([]uint64{4}))
		Expect(m.event.Cause).To(Equal(api.CauseMaxInsts))
	})

	It("should count limits from the switch", func() {
		c.AddThread(100, 10, 4)
		m.active = 1
		c.TickLater()
		Expect(engine.Run()).To(Succeed())

		c.switchTo(c.model, 3)
		m.reset(^uint64(0))
		c.TickLater()
		Expect(engine.Run()).To(Succeed())

		Expect(c.Retired()).To(Equal([]uint64{7}))
		Expect(m.event.Cause).To(Equal(api.CauseMaxInsts))
	})

	It("should render the progress table", func() {
		c.AddThread(100, 3, 0)

		out := PrintProgress([]*Core{c})

		Expect(out).To(ContainSubstring("Thread progress"))
		Expect(out).To(ContainSubstring("AtomicSimpleCPU"))
	})
})

package record_test

import (
	"math"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/neuralprobe/gem5/api"
	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
	"github.com/neuralprobe/gem5/record"
)

func smallTopology() *hw.Topology {
	topo := hw.NewTopology("system")

	cpu, err := topo.NewComponent(topo.Root(), "cpu[0]", hw.KindCPU, "AtomicSimpleCPU")
	Expect(err).NotTo(HaveOccurred())
	Expect(cpu.SetParam("cpu_id", 0)).To(Succeed())
	_, err = cpu.AddPort("icache_port", hw.RoleRequest)
	Expect(err).NotTo(HaveOccurred())

	bus, err := topo.NewComponent(topo.Root(), "membus", hw.KindXBar, "SystemXBar")
	Expect(err).NotTo(HaveOccurred())
	_, err = bus.AddPort("cpu_side_ports", hw.RoleResponse, hw.Vector())
	Expect(err).NotTo(HaveOccurred())

	_, err = topo.Registry().BindByName(cpu, "icache_port", bus, "cpu_side_ports")
	Expect(err).NotTo(HaveOccurred())

	return topo
}

var _ = Describe("Recorder", func() {
	var (
		path string
		r    *record.Recorder
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "run")

		var err error
		r, err = record.Open(path)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		r.Close()
	})

	It("should add the file extension", func() {
		Expect(r.Path()).To(Equal(path + ".sqlite3"))
	})

	It("should not overwrite an existing database", func() {
		_, err := record.Open(path)

		Expect(err).To(MatchError(record.ErrExists))
	})

	It("should store components and bindings", func() {
		topo := smallTopology()

		Expect(r.Topology(topo)).To(Succeed())

		var n int
		Expect(r.QueryRow(`SELECT COUNT(*) FROM component`).Scan(&n)).To(Succeed())
		Expect(n).To(Equal(3))

		var req, resp string
		Expect(r.QueryRow(`SELECT request, response FROM binding`).Scan(&req, &resp)).
			To(Succeed())
		Expect(req).To(Equal("system.cpu[0].icache_port"))
		Expect(resp).To(Equal("system.membus.cpu_side_ports"))

		var params string
		Expect(r.QueryRow(`SELECT params FROM component WHERE path = ?`,
			"system.cpu[0]").Scan(&params)).To(Succeed())
		Expect(params).To(Equal("cpu_id=0"))
	})

	It("should store the exit event", func() {
		ev := api.ExitEvent{Tick: 1234, Cause: api.CauseLimit}

		Expect(r.Exit("run-1", ev)).To(Succeed())

		var (
			tick  int64
			cause string
		)
		Expect(r.QueryRow(`SELECT tick, cause FROM exit_event WHERE run_id = ?`,
			"run-1").Scan(&tick, &cause)).To(Succeed())
		Expect(tick).To(Equal(int64(1234)))
		Expect(cause).To(Equal(api.CauseLimit))
	})

	It("should clamp ticks beyond the integer range", func() {
		ev := api.ExitEvent{Tick: options.MaxTick, Cause: api.CauseLimit}

		Expect(r.Exit("run-2", ev)).To(Succeed())

		var tick int64
		Expect(r.QueryRow(`SELECT tick FROM exit_event WHERE run_id = ?`,
			"run-2").Scan(&tick)).To(Succeed())
		Expect(tick).To(Equal(int64(math.MaxInt64)))
	})
})

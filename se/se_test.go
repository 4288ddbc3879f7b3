package se_test

import (
	"bytes"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/neuralprobe/gem5/hw"
	"github.com/neuralprobe/gem5/options"
	"github.com/neuralprobe/gem5/se"
	"github.com/neuralprobe/gem5/selection"
	"github.com/neuralprobe/gem5/validate"
	"github.com/neuralprobe/gem5/workload"
)

var _ = Describe("Preparer", func() {
	var (
		cfg options.Config
		buf *bytes.Buffer
		p   se.Preparer
	)

	BeforeEach(func() {
		cfg = options.Default()
		cfg.Workload.Cmd = "tests/hello"
		buf = &bytes.Buffer{}
		p = se.MakePreparer().
			WithHost(workload.Host{Cwd: "/work", GID: 7}).
			WithLogger(slog.New(slog.NewTextHandler(buf, nil)))
	})

	It("should prepare a valid system", func() {
		sys, err := p.Prepare(cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(sys.Topology.CPUs()).To(HaveLen(1))
		Expect(sys.Selection.CPU.Name).To(Equal("AtomicSimpleCPU"))
		Expect(sys.Topology.Processes()[0].Cwd()).To(Equal("/work"))
		Expect(buf.String()).To(ContainSubstring(
			"The se.py script is deprecated. It will be removed in future releases of  gem5."))
	})

	It("should fail without a workload", func() {
		cfg.Workload.Cmd = ""

		_, err := p.Prepare(cfg)

		Expect(err).To(MatchError(workload.ErrNoWorkload))
	})

	It("should reject malformed values before anything else", func() {
		cfg.NumCPUs = 0

		_, err := p.Prepare(cfg)

		Expect(err).To(MatchError(ContainSubstring("num_cpus must be positive")))
	})

	It("should report configuration violations", func() {
		cfg.SMT = true
		cfg.NumCPUs = 2

		_, err := p.Prepare(cfg)

		Expect(errors.Is(err, validate.ErrSMTMultiCPU)).To(BeTrue())
	})

	It("should reject host execution outside x86", func() {
		cfg.ISA = "ARM"
		cfg.CPUType = "KvmCPU"

		_, err := p.Prepare(cfg)

		Expect(errors.Is(err, selection.ErrHostExecutionUnsupported)).To(BeTrue())
	})

	It("should log the ruby memory mode change", func() {
		cfg.Ruby = true

		sys, err := p.Prepare(cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(sys.Topology.MemMode()).To(Equal(selection.MemModeAtomicNonCaching))
		Expect(buf.String()).To(ContainSubstring("level=WARN"))
	})

	It("should resolve benchmarks through the registry", func() {
		reg := workload.NewRegistry()
		reg.Register("X86", "hello", func(s workload.Suite) hw.ProcessSpec {
			return hw.ProcessSpec{Executable: s.Root + "/hello"}
		})

		cfg.Workload.Cmd = ""
		cfg.Workload.Bench = "hello"

		sys, err := p.WithRegistry(reg).Prepare(cfg)

		Expect(err).NotTo(HaveOccurred())
		Expect(sys.Topology.Processes()[0].Executable()).To(HaveSuffix("/hello"))
	})
})

package options_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"

	"github.com/neuralprobe/gem5/options"
)

var _ = Describe("Config", func() {
	It("should have sane defaults", func() {
		cfg := options.Default()

		Expect(cfg.Check()).To(Succeed())
		Expect(cfg.MemBytes()).To(Equal(uint64(512 << 20)))
	})

	It("should parse binary sizes", func() {
		Expect(options.ParseSize("64kB")).To(Equal(uint64(64 << 10)))
		Expect(options.ParseSize("2MB")).To(Equal(uint64(2 << 20)))
		Expect(options.ParseSize("1GB")).To(Equal(uint64(1 << 30)))

		_, err := options.ParseSize("lots")
		Expect(err).To(HaveOccurred())
	})

	It("should parse frequencies", func() {
		Expect(options.ParseFrequency("2GHz")).To(Equal(2e9))
		Expect(options.ParseFrequency("500MHz")).To(Equal(5e8))

		_, err := options.ParseFrequency("fast")
		Expect(err).To(HaveOccurred())
	})

	It("should reject malformed values", func() {
		cfg := options.Default()
		cfg.NumCPUs = 0
		cfg.CacheLineSize = 48
		cfg.L1DSize = "big"
		cfg.TakeCheckpoints = "100"

		err := cfg.Check()

		Expect(err).To(MatchError(ContainSubstring("num_cpus")))
		Expect(err).To(MatchError(ContainSubstring("cacheline_size")))
		Expect(err).To(MatchError(ContainSubstring("l1d_size")))
		Expect(err).To(MatchError(ContainSubstring("take_checkpoints")))
	})

	It("should take the smallest tick limit", func() {
		cfg := options.Default()
		Expect(cfg.MaxTick(0)).To(Equal(uint64(options.MaxTick)))

		cfg.RelMaxTick = 1000
		Expect(cfg.MaxTick(500)).To(Equal(uint64(1500)))

		cfg.MaxTime = 1e-9
		Expect(cfg.MaxTick(0)).To(Equal(uint64(1000)))

		cfg.AbsMaxTick = 10
		Expect(cfg.MaxTick(0)).To(Equal(uint64(10)))
	})

	It("should decode the checkpoint schedule", func() {
		cfg := options.Default()
		cfg.TakeCheckpoints = "1000, 500"

		start, period, err := cfg.CheckpointSchedule()

		Expect(err).NotTo(HaveOccurred())
		Expect(start).To(Equal(uint64(1000)))
		Expect(period).To(Equal(uint64(500)))
	})

	Context("with a YAML file", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "se.yaml")
			content := "num_cpus: 4\ncpu_type: TimingSimpleCPU\ncaches: true\n" +
				"workload:\n  cmd: a;b;c;d\n"
			Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
		})

		It("should load values on top of the defaults", func() {
			cfg := options.Default()

			Expect(options.Load(path, &cfg)).To(Succeed())

			Expect(cfg.NumCPUs).To(Equal(4))
			Expect(cfg.CPUType).To(Equal("TimingSimpleCPU"))
			Expect(cfg.Caches).To(BeTrue())
			Expect(cfg.Workload.Cmd).To(Equal("a;b;c;d"))
			Expect(cfg.MemSize).To(Equal("512MB"))
		})

		It("should let explicit flags win over the file", func() {
			cfg := options.Default()
			fs := pflag.NewFlagSet("se", pflag.ContinueOnError)
			options.RegisterFlags(fs, &cfg)
			Expect(fs.Parse([]string{"--num-cpus=2", "--mem-size=1GB"})).To(Succeed())

			Expect(options.ApplyOverrides(path, &cfg, fs)).To(Succeed())

			Expect(cfg.NumCPUs).To(Equal(2))
			Expect(cfg.MemSize).To(Equal("1GB"))
			Expect(cfg.CPUType).To(Equal("TimingSimpleCPU"))
		})
	})
})

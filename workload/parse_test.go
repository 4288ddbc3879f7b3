package workload_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/neuralprobe/gem5/options"
	"github.com/neuralprobe/gem5/workload"
)

var _ = Describe("Parse", func() {
	host := workload.Host{Cwd: "/work", GID: 42}

	It("should create one process per command", func() {
		w := options.Workload{
			Cmd:     "a;b",
			Options: "-x 1;-y",
			Output:  "a.out",
		}

		procs, err := workload.Parse(w, host)

		Expect(err).NotTo(HaveOccurred())
		Expect(procs).To(HaveLen(2))

		Expect(procs[0].PID()).To(Equal(100))
		Expect(procs[0].Args()).To(Equal([]string{"a", "-x", "1"}))
		Expect(procs[0].Output()).To(Equal("a.out"))
		Expect(procs[0].Cwd()).To(Equal("/work"))

		Expect(procs[1].PID()).To(Equal(101))
		Expect(procs[1].Args()).To(Equal([]string{"b", "-y"}))
		Expect(procs[1].Output()).To(BeEmpty())
		Expect(procs[1].Spec().GID).To(Equal(42))
	})

	It("should run a command without options", func() {
		procs, err := workload.Parse(options.Workload{Cmd: "hello"}, host)

		Expect(err).NotTo(HaveOccurred())
		Expect(procs[0].Args()).To(Equal([]string{"hello"}))
		Expect(procs[0].Env()).To(BeEmpty())
	})

	Context("with an env file", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("should keep the lines in file order", func() {
			path := filepath.Join(dir, "env.txt")
			content := "ZED=1\nPATH=$HOME/bin:/usr/bin\nA=x # y\nB=1\nB=2  \n"
			Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

			procs, err := workload.Parse(options.Workload{Cmd: "a;b", Env: path}, host)

			Expect(err).NotTo(HaveOccurred())
			Expect(procs[0].Env()).To(Equal([]string{
				"ZED=1",
				"PATH=$HOME/bin:/usr/bin",
				"A=x # y",
				"B=1",
				"B=2",
			}))
			Expect(procs[1].Env()).To(Equal(procs[0].Env()))
		})

		It("should pass bare names through", func() {
			path := filepath.Join(dir, "env.txt")
			Expect(os.WriteFile(path, []byte("HOME=/h\nLANG"), 0o644)).To(Succeed())

			env, err := workload.ReadEnvFile(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(env).To(Equal([]string{"HOME=/h", "LANG"}))
		})

		It("should surface a missing file", func() {
			_, err := workload.Parse(
				options.Workload{Cmd: "a", Env: filepath.Join(dir, "missing")}, host)

			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})

		It("should surface a malformed file", func() {
			path := filepath.Join(dir, "bad.txt")
			Expect(os.WriteFile(path, []byte("KEY='unterminated\n"), 0o644)).To(Succeed())

			_, err := workload.Parse(options.Workload{Cmd: "a", Env: path}, host)

			Expect(err).To(MatchError(ContainSubstring("failed to parse env file")))
		})
	})
})

var _ = Describe("Resolve", func() {
	It("should fail without a workload", func() {
		_, err := workload.Resolve(options.Workload{}, "X86", 1,
			workload.Host{}, workload.DefaultRegistry())

		Expect(err).To(MatchError(workload.ErrNoWorkload))
	})

	It("should prefer benchmarks over a command", func() {
		w := options.Default().Workload
		w.Cmd = "hello"
		w.Bench = "mcf"

		procs, err := workload.Resolve(w, "X86", 1,
			workload.Host{}, workload.DefaultRegistry())

		Expect(err).NotTo(HaveOccurred())
		Expect(procs[0].Executable()).To(HaveSuffix("mcf"))
	})
})

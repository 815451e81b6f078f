package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/config"
	"github.com/sarchlab/cachesim/trace"
)

var _ = Describe("cachesim", func() {
	var (
		dir            string
		stdout, stderr *bytes.Buffer
	)

	writeTrace := func(name, text string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(text), 0o600)).To(Succeed())
		return path
	}

	execute := func(args ...string) error {
		cmd := newRootCmd()
		if args == nil {
			args = []string{}
		}
		cmd.SetArgs(args)
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		return cmd.Execute()
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	smallCache := []string{
		"-l1-usize", "8", "-l1-ubsize", "2", "-l1-uassoc", "1",
	}

	Context("default command", func() {
		It("should print the usage without a trace", func() {
			err := execute()

			Expect(errors.Is(err, errUsage)).To(BeTrue())
			Expect(stdout.String()).To(HavePrefix("Usage: cachesim infile <options>\n"))
		})

		It("should print the usage on request", func() {
			Expect(execute("--help")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("-l1-usize"))
		})

		It("should report demand accesses and misses", func() {
			path := writeTrace("t.din", "0 0\n0 0\n1 40\n")

			args := append([]string{path}, smallCache...)
			Expect(execute(args...)).To(Succeed())

			Expect(stdout.String()).To(Equal(
				"Running with input: " + path + ", l1-usize=8, l1-ubsize=2, " +
					"l1-assoc=1, l1-repl=f, l1-uwalloc=a \n" +
					"Number of cache lines is: 4\n" +
					"Demand Accesses  3\n" +
					"Demand Misses 2\n"))
		})

		It("should ignore unrecognized options", func() {
			path := writeTrace("t.din", "0 0\n")

			Expect(execute(path, "-bogus")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring(
				"Ignoring unrecognized option: -bogus\n"))
			Expect(stdout.String()).To(ContainSubstring("Demand Accesses  1\n"))
		})

		It("should fail when the trace does not exist", func() {
			err := execute(filepath.Join(dir, "missing.din"))

			Expect(errors.Is(err, trace.ErrTraceUnavailable)).To(BeTrue())
			Expect(stdout.String()).To(HavePrefix("Running with input:"))
		})

		It("should reject a geometry without lines", func() {
			path := writeTrace("t.din", "0 0\n")

			err := execute(path, "-l1-usize", "16", "-l1-ubsize", "32")
			Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
		})

		It("should reject geometries too large to build", func() {
			path := writeTrace("t.din", "0 0\n")

			err := execute(path, "-l1-uassoc", "4294967296", "-l1-ubsize", "4294967296")
			Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())

			err = execute(path, "-l1-usize", "1099511627776", "-l1-ubsize", "1")
			Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
		})

		It("should keep the counts read before a malformed record", func() {
			path := writeTrace("t.din", "0 0\n0 4\nnot a record\n0 0\n")

			Expect(execute(append([]string{path}, smallCache...)...)).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("Demand Accesses  2\n"))
			Expect(stderr.String()).To(ContainSubstring("stopped reading trace"))
		})

		It("should print the result as JSON", func() {
			path := writeTrace("t.din", "0 0\n2 0\n")

			Expect(execute(append([]string{path, "-json"}, smallCache...)...)).To(Succeed())

			var res map[string]any
			Expect(json.Unmarshal(stdout.Bytes(), &res)).To(Succeed())
			Expect(res["accesses"]).To(BeNumerically("==", 2))
			Expect(res["misses"]).To(BeNumerically("==", 1))
		})

		It("should dump the cache contents", func() {
			path := writeTrace("t.din", "0 0\n")

			Expect(execute(append([]string{path, "-dump"}, smallCache...)...)).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring(
				"line 0: \n\tblock 0: v: 1 tag: 0 counter: 0\n"))
		})

		It("should read compressed traces", func() {
			path := filepath.Join(dir, "t.din.gz")
			wc, err := trace.Create(path)
			Expect(err).NotTo(HaveOccurred())
			_, err = wc.Write([]byte("0 0\n0 0\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(wc.Close()).To(Succeed())

			Expect(execute(append([]string{path}, smallCache...)...)).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("Demand Misses 1\n"))
		})

		It("should record the run into SQLite", func() {
			path := writeTrace("t.din", "0 0\n0 8\n")
			name := filepath.Join(dir, "rec")

			Expect(execute(append([]string{path, "-record", name}, smallCache...)...)).
				To(Succeed())

			_, err := os.Stat(name + ".sqlite3")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should write profiles", func() {
			path := writeTrace("t.din", "0 0\n")
			cpu := filepath.Join(dir, "cpu.prof")
			mem := filepath.Join(dir, "mem.prof")

			Expect(execute(path, "-cpuprofile", cpu, "-memprofile", mem)).To(Succeed())

			_, err := os.Stat(cpu)
			Expect(err).NotTo(HaveOccurred())
			_, err = os.Stat(mem)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("compare", func() {
		It("should report the disagreements", func() {
			path := writeTrace("t.din", "0 0\n0 8\n0 0\n0 10\n0 0\n")

			Expect(execute("compare", path,
				"-l1-usize", "16", "-l1-ubsize", "2", "-l1-uassoc", "2")).To(Succeed())

			Expect(stdout.String()).To(ContainSubstring("Demand Misses 4\n"))
			Expect(stdout.String()).To(ContainSubstring("Disagreements:     1\n"))
		})
	})

	Context("sweep", func() {
		It("should print one CSV row per configuration", func() {
			path := writeTrace("t.din", "0 0\n0 40\n1 80\n2 0\n")

			Expect(execute("sweep", path,
				"--sizes", "64,128", "--block-sizes", "16",
				"--assocs", "1,2", "--repl", "l", "--csv")).To(Succeed())

			lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
			Expect(lines).To(HaveLen(5))
			Expect(lines[1]).To(HavePrefix("64B/16B/1way/l/a,"))
		})

		It("should fail when no configuration is valid", func() {
			path := writeTrace("t.din", "0 0\n")

			err := execute("sweep", path, "--sizes", "8", "--block-sizes", "16")
			Expect(err).To(MatchError(ContainSubstring("no valid cache configuration")))
		})
	})

	Context("gen", func() {
		It("should write a trace to standard output", func() {
			Expect(execute("gen", "sequential", "--count", "3",
				"--base", "256", "--stride", "4")).To(Succeed())

			Expect(stdout.String()).To(Equal("0 100\n0 104\n0 108\n"))
		})

		It("should list the workloads", func() {
			Expect(execute("gen", "--list")).To(Succeed())

			for _, name := range trace.WorkloadNames() {
				Expect(stdout.String()).To(ContainSubstring(name))
			}
		})

		It("should reject an unknown workload", func() {
			Expect(execute("gen", "nope")).NotTo(Succeed())
		})

		It("should write a trace the simulator can read", func() {
			out := filepath.Join(dir, "loop.din.zst")

			Expect(execute("gen", "loop", "--count", "100",
				"--footprint", "64", "--out", out)).To(Succeed())

			stdout.Reset()
			Expect(execute(out, "-l1-usize", "1024", "-l1-ubsize", "16")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("Demand Accesses  100\n"))
			Expect(stdout.String()).To(ContainSubstring("Demand Misses 4\n"))
		})
	})
})

package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/config"
)

var _ = Describe("LoadEnv", func() {
	It("should apply variables from the environment", func() {
		GinkgoT().Setenv(config.EnvSize, "2048")
		GinkgoT().Setenv(config.EnvReplacement, "l")

		c := config.DefaultConfig()
		warnings, err := c.LoadEnv()

		Expect(err).NotTo(HaveOccurred())
		Expect(warnings).To(BeEmpty())
		Expect(c.Size).To(Equal(uint64(2048)))
		Expect(c.Replacement).To(Equal("l"))
	})

	It("should skip env files that do not exist", func() {
		c := config.DefaultConfig()
		_, err := c.LoadEnv(filepath.Join(GinkgoT().TempDir(), "missing.env"))

		Expect(err).NotTo(HaveOccurred())
	})

	It("should load values from an env file", func() {
		file := filepath.Join(GinkgoT().TempDir(), ".env")
		Expect(os.WriteFile(file,
			[]byte(config.EnvWriteAlloc+"=n\n"), 0o600)).To(Succeed())

		// Registered so the variable godotenv sets is removed afterwards.
		GinkgoT().Setenv(config.EnvWriteAlloc, "")
		Expect(os.Unsetenv(config.EnvWriteAlloc)).To(Succeed())

		c := config.DefaultConfig()
		_, err := c.LoadEnv(file)

		Expect(err).NotTo(HaveOccurred())
		Expect(c.WriteAlloc).To(Equal("n"))
	})

	It("should warn about unparsable numbers", func() {
		GinkgoT().Setenv(config.EnvAssociativity, "four")

		c := config.DefaultConfig()
		warnings, err := c.LoadEnv()

		Expect(err).NotTo(HaveOccurred())
		Expect(warnings).To(HaveLen(1))
		Expect(warnings[0].Option).To(Equal(config.EnvAssociativity))
		Expect(c.Associativity).To(Equal(1))
	})
})

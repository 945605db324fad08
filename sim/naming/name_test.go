package naming

import (
	"github.com/jmgilman/go/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Name", func() {
	It("should parse a name", func() {
		name, err := Parse("Core[0].L1D")

		Expect(err).NotTo(HaveOccurred())
		Expect(name.Tokens).To(HaveLen(2))
		Expect(name.Tokens[0].ElemName).To(Equal("Core"))
		Expect(name.Tokens[0].Index).To(Equal([]int{0}))
		Expect(name.Tokens[1].ElemName).To(Equal("L1D"))
		Expect(name.Tokens[1].Index).To(BeEmpty())
	})

	It("should parse multi-dimensional indices", func() {
		name, err := Parse("Bank[1][2]")

		Expect(err).NotTo(HaveOccurred())
		Expect(name.Tokens[0].Index).To(Equal([]int{1, 2}))
		Expect(name.String()).To(Equal("Bank[1][2]"))
	})

	DescribeTable("valid names",
		func(name string) {
			Expect(Validate(name)).To(Succeed())
		},
		Entry("simple", "Cache"),
		Entry("short", "L1"),
		Entry("hierarchical", "Core[3].L2"),
	)

	DescribeTable("invalid names",
		func(name string) {
			err := Validate(name)

			Expect(errors.GetCode(err)).To(Equal(errors.CodeInvalidInput))
		},
		Entry("empty", ""),
		Entry("underscore", "L1_D"),
		Entry("dash", "L1-D"),
		Entry("lower case", "cache"),
		Entry("open bracket", "Core[0"),
		Entry("close bracket", "Core0]"),
		Entry("nested bracket", "Core[[0]]"),
		Entry("empty element", "Core..L1"),
		Entry("trailing dot", "Core."),
		Entry("non-integer index", "Core[x]"),
	)

	It("should panic on invalid names", func() {
		Expect(func() { MustBeValid("l1") }).To(Panic())
		Expect(func() { MustBeValid("L1") }).NotTo(Panic())
	})
})

package accesstrace

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmgilman/go/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/csim/mem/cache"
)

func errContext(err error) map[string]interface{} {
	var platformErr errors.PlatformError
	Expect(errors.As(err, &platformErr)).To(BeTrue())

	return platformErr.Context()
}

var _ = Describe("Parse", func() {
	It("should parse a load", func() {
		a, err := Parse("L 10,1")

		Expect(err).NotTo(HaveOccurred())
		Expect(a.Kind).To(Equal(cache.Load))
		Expect(a.Address).To(Equal(uint64(0x10)))
		Expect(a.Size).To(Equal(1))
	})

	It("should parse a store with leading whitespace", func() {
		a, err := Parse("  S 7ff000a8,8")

		Expect(err).NotTo(HaveOccurred())
		Expect(a.Kind).To(Equal(cache.Store))
		Expect(a.Address).To(Equal(uint64(0x7ff000a8)))
		Expect(a.Size).To(Equal(8))
	})

	It("should accept a 0x prefix", func() {
		a, err := Parse("L 0xFFFFFFFFFFFFFFFF,4")

		Expect(err).NotTo(HaveOccurred())
		Expect(a.Address).To(Equal(^uint64(0)))
	})

	It("should reject unknown operations", func() {
		_, err := Parse("M 10,1")

		Expect(errors.GetCode(err)).To(Equal(errors.CodeInvalidInput))
		Expect(errContext(err)).To(HaveKeyWithValue("op", "M"))
	})

	It("should reject instruction loads", func() {
		_, err := Parse("I 400000,4")

		Expect(errors.GetCode(err)).To(Equal(errors.CodeInvalidInput))
	})

	It("should reject a missing size", func() {
		_, err := Parse("L 10")

		Expect(errors.GetCode(err)).To(Equal(errors.CodeInvalidInput))
	})

	It("should reject a bad address", func() {
		_, err := Parse("L zz,1")

		Expect(errors.GetCode(err)).To(Equal(errors.CodeInvalidInput))
		Expect(errContext(err)).To(HaveKeyWithValue("line", "L zz,1"))
	})

	It("should report the address parsed before a bad size", func() {
		_, err := Parse("S 20,x")

		Expect(errors.GetCode(err)).To(Equal(errors.CodeInvalidInput))
		Expect(errContext(err)).To(HaveKeyWithValue("address", uint64(0x20)))
	})

	It("should reject extra fields", func() {
		_, err := Parse("L 10,1 extra")

		Expect(errors.GetCode(err)).To(Equal(errors.CodeInvalidInput))
	})
})

var _ = Describe("Reader", func() {
	It("should read accesses in order and skip blank lines", func() {
		r := NewReader(strings.NewReader("L 0,1\n\n  S 10,4\n"))

		a, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Line).To(Equal(1))
		Expect(a.Kind).To(Equal(cache.Load))

		a, err = r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Line).To(Equal(3))
		Expect(a.Address).To(Equal(uint64(0x10)))

		_, err = r.Next()
		Expect(err).To(Equal(io.EOF))
	})

	It("should attach the line number to parse errors", func() {
		r := NewReader(strings.NewReader("L 0,1\nX 0,1\n"))

		_, err := r.Next()
		Expect(err).NotTo(HaveOccurred())

		_, err = r.Next()
		Expect(errors.GetCode(err)).To(Equal(errors.CodeInvalidInput))
		Expect(errContext(err)).To(HaveKeyWithValue("line_number", 2))
	})

	It("should report a missing file as not found", func() {
		_, err := Open(filepath.Join(GinkgoT().TempDir(), "missing.trace"))

		Expect(errors.GetCode(err)).To(Equal(errors.CodeNotFound))
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})

	It("should open and close a trace file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "a.trace")
		Expect(os.WriteFile(path, []byte("S 8,1\n"), 0o644)).To(Succeed())

		r, err := Open(path)
		Expect(err).NotTo(HaveOccurred())

		a, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Kind).To(Equal(cache.Store))
		Expect(r.Close()).To(Succeed())
	})

	It("should close readers it does not own without error", func() {
		r := NewReader(strings.NewReader(""))

		Expect(r.Close()).To(Succeed())
	})
})

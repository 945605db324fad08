package accesstrace

import (
	"context"
	"strings"

	"github.com/jmgilman/go/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/csim/mem/cache"
)

type progressCounter struct {
	finished uint64
}

func (p *progressCounter) IncrementFinished(amount uint64) {
	p.finished += amount
}

var _ = Describe("Replay", func() {
	It("should feed every access to the cache", func() {
		c := cache.New(0, 2, 0)
		r := NewReader(strings.NewReader("L 0,1\nL 1,1\nL 0,1\n"))
		progress := &progressCounter{}

		n, err := Replay(context.Background(), r, c, progress)

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(uint64(3)))
		Expect(progress.finished).To(Equal(uint64(3)))
		Expect(c.Finalize()).To(Equal(cache.FinalStats{Hits: 1, Misses: 2}))
	})

	It("should stop at the first bad line", func() {
		c := cache.New(0, 1, 0)
		r := NewReader(strings.NewReader("L 0,1\nQ 1,1\nL 2,1\n"))

		n, err := Replay(context.Background(), r, c, nil)

		Expect(errors.GetCode(err)).To(Equal(errors.CodeInvalidInput))
		Expect(n).To(Equal(uint64(1)))
		Expect(c.Counters().Accesses).To(Equal(uint64(1)))
	})

	It("should stop when cancelled", func() {
		c := cache.New(0, 1, 0)
		r := NewReader(strings.NewReader("L 0,1\n"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		n, err := Replay(ctx, r, c, nil)

		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(n).To(Equal(uint64(0)))
	})
})

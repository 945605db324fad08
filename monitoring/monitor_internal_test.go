package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/csim/mem/cache"
)

func get(m *Monitor, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()

	m.Router().ServeHTTP(rec, req)

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m  *Monitor
		l1 *cache.Cache
	)

	BeforeEach(func() {
		m = NewMonitor()
		l1 = cache.MakeBuilder().
			WithLog2NumSets(1).
			WithWayAssociativity(2).
			WithLog2BlockSize(4).
			Build("L1")
		m.RegisterCache(l1)
	})

	It("should list registered caches", func() {
		m.RegisterCache(cache.New(0, 1, 0))

		rec := get(m, "/api/list_components")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`["L1","Cache"]`))
	})

	It("should report the statistics of a cache", func() {
		l1.Store(0x00)
		l1.Load(0x04)
		l1.Load(0x10)

		rec := get(m, "/api/stats/L1")

		Expect(rec.Code).To(Equal(http.StatusOK))
		stats := cache.FinalStats{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).To(Succeed())
		Expect(stats).To(Equal(cache.FinalStats{
			Hits:       1,
			Misses:     2,
			DirtyBytes: 16,
		}))
	})

	It("should report the lines of a set", func() {
		l1.Store(0x10)

		rec := get(m, "/api/set/L1/1")

		Expect(rec.Code).To(Equal(http.StatusOK))
		lines := []cache.Line{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &lines)).To(Succeed())
		Expect(lines).To(HaveLen(2))
		Expect(lines[0].Valid).To(BeTrue())
		Expect(lines[0].Dirty).To(BeTrue())
		Expect(lines[1].Valid).To(BeFalse())
	})

	It("should reject sets out of range", func() {
		Expect(get(m, "/api/set/L1/2").Code).To(Equal(http.StatusBadRequest))
		Expect(get(m, "/api/set/L1/x").Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 404 for unknown caches", func() {
		Expect(get(m, "/api/stats/L2").Code).To(Equal(http.StatusNotFound))
		Expect(get(m, "/api/component/L2").Code).To(Equal(http.StatusNotFound))
		Expect(get(m, "/api/set/L2/0").Code).To(Equal(http.StatusNotFound))
	})

	It("should serialize component details", func() {
		rec := get(m, "/api/component/L1")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("L1"))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("trace", 0)
		bar.IncrementFinished(5)
		other := m.CreateProgressBar("other", 10)

		Expect(bar.ID).NotTo(Equal(other.ID))

		rec := get(m, "/api/progress")
		bars := []progressBarStatus{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(2))
		Expect(bars[0].Name).To(Equal("trace"))
		Expect(bars[0].Finished).To(Equal(uint64(5)))

		m.CompleteProgressBar(bar)

		rec = get(m, "/api/progress")
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("other"))
	})

	It("should report process resources", func() {
		rec := get(m, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		rsp := resourceRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should collect a CPU profile", func() {
		m.profileDuration = 10 * time.Millisecond

		rec := get(m, "/api/profile")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should serve the dashboard", func() {
		rec := get(m, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("csim monitor"))
	})

	It("should fall back to a random port for reserved ports", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
	})
})

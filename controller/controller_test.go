package controller

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ramulator/dramorg"
	"github.com/sarchlab/ramulator/dramspec"
	"github.com/sarchlab/ramulator/request"
)

func mustSpec() dramspec.Spec {
	spec, err := dramspec.New("DDR4", "DDR4_4Gb_x8", "DDR4_2400R", 1, 1, 0)
	Expect(err).NotTo(HaveOccurred())
	return spec
}

func runUntilIdle(c *Controller, maxCycles int) uint64 {
	var now uint64
	for i := 0; i < maxCycles; i++ {
		c.Tick(now)
		now++
		if c.PendingRequests() == 0 {
			return now
		}
	}
	Fail("controller did not drain within the cycle budget")
	return now
}

var _ = Describe("Controller", func() {
	var spec dramspec.Spec

	BeforeEach(func() {
		spec = mustSpec()
	})

	Context("a read request", func() {
		It("completes and fires its callback with Depart > Arrive", func() {
			c := New("controller.0", 0, 1, spec, Options{})

			var completed *request.Request
			r := request.New(0, request.Read, func(done *request.Request) { completed = done })

			Expect(c.Send(r, 0)).To(BeTrue(), "Send should accept into an empty queue")

			runUntilIdle(c, 1000)

			Expect(completed).To(BeIdenticalTo(r))
			Expect(r.State).To(Equal(request.Completed))
			Expect(r.Depart).To(BeNumerically(">", r.Arrive))
		})
	})

	Context("write-queue capacity", func() {
		It("rejects a send once the queue is full", func() {
			c := New("controller.0", 0, 1, spec, Options{WriteQueueCapacity: 1})

			r1 := request.New(0, request.Write, nil)
			r2 := request.New(0, request.Write, nil)

			Expect(c.Send(r1, 0)).To(BeTrue(), "first write should be admitted")
			Expect(c.Send(r2, 0)).To(BeFalse(), "second write should be rejected: queue is at capacity")
		})
	})

	Context("watermark hysteresis", func() {
		It("switches to write mode once occupancy crosses the high watermark", func() {
			c := New("controller.0", 0, 1, spec, Options{
				WriteQueueCapacity: 4,
				HighWriteWatermark: 0.5,
				LowWriteWatermark:  0.1,
			})

			for i := 0; i < 3; i++ {
				Expect(c.Send(request.New(0, request.Write, nil), 0)).To(BeTrue())
			}

			c.updateWriteMode()
			Expect(c.writeMode).To(BeTrue())
		})
	})

	Context("refresh injection", func() {
		It("retires a refresh once the refresh interval has elapsed", func() {
			c := New("controller.0", 0, 1, spec, Options{})

			// The refresh is injected at interval and retires tRFC later.
			interval := spec.RefreshInterval()
			trfc := spec.Latency(request.REF)
			var now uint64
			for now = 0; now < interval+trfc+10; now++ {
				c.Tick(now)
			}

			Expect(c.lastRefreshAt[0]).NotTo(BeZero())
		})
	})

	Context("pending requests", func() {
		It("reflects queue occupancy", func() {
			c := New("controller.0", 0, 1, spec, Options{})

			Expect(c.PendingRequests()).To(Equal(0))

			c.Send(request.New(0, request.Read, nil), 0)
			Expect(c.PendingRequests()).To(Equal(1))
		})
	})

	Context("FR-FCFS scheduling", func() {
		It("prefers a row hit over an older, non-ready request", func() {
			var coordA, coordB dramorg.Coordinate
			coordA[dramorg.Bank] = 0
			coordA[dramorg.Row] = 0
			coordB[dramorg.Bank] = 1
			coordB[dramorg.Row] = 0

			q := newQueue(4)
			older := request.New(0, request.Read, nil)
			older.Coord = coordA
			newer := request.New(0, request.Read, nil)
			newer.Coord = coordB
			q.push(older)
			q.push(newer)

			ready := func(r *request.Request) bool { return r == newer }

			Expect(FRFCFS.pick(q, ready)).To(BeIdenticalTo(newer))
			Expect(FCFS.pick(q, ready)).To(BeIdenticalTo(older), "FCFS should always prefer arrival order")
		})
	})
})

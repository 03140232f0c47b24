package timeslot_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/slotlink/sim/arbiter"
	"github.com/sarchlab/slotlink/sim/esb"
	"github.com/sarchlab/slotlink/sim/hwtimer"
	"github.com/sarchlab/slotlink/sim/timing"
	"github.com/sarchlab/slotlink/timeslot"
)

type platform struct {
	engine   *timing.SerialEngine
	timer    *hwtimer.Timer
	arbiter  *arbiter.Arbiter
	driver   *esb.Driver
	radio    *esb.Radio
	link     *timeslot.Link
	received []timeslot.Payload
	fatals   []error
}

func newPlatform(arbCfg arbiter.Config, esbCfg esb.Config) *platform {
	p := &platform{}
	p.engine = timing.NewSerialEngine()
	p.timer = hwtimer.NewTimer("Timer", p.engine, timing.PriorityHighest)
	p.arbiter = arbiter.MakeBuilder().
		WithEngine(p.engine).
		WithLeaseTimer(p.timer).
		WithConfig(arbCfg).
		Build("Arbiter")
	p.driver = esb.MakeBuilder().
		WithEngine(p.engine).
		WithIRQRaiser(p.arbiter).
		WithConfig(esbCfg).
		Build("ESB")
	p.radio = esb.NewRadio(p.driver)
	p.link = timeslot.MakeBuilder().
		WithEngine(p.engine).
		WithArbiter(p.arbiter).
		WithLinkDriver(p.driver).
		WithRadio(p.radio).
		WithLeaseTimer(p.timer).
		WithRxHandler(timeslot.RxHandlerFunc(func(pl timeslot.Payload) {
			p.received = append(p.received, pl)
		})).
		WithFatalHandler(func(err error) {
			p.fatals = append(p.fatals, err)
		}).
		Build("Link")

	return p
}

func (p *platform) send(n int) {
	for i := 0; i < n; i++ {
		Expect(p.link.Send([]byte{byte(i), 0x5A})).To(Succeed())
	}
}

func (p *platform) runFor(d time.Duration) {
	Expect(p.engine.RunUntil(p.engine.Now() + d)).To(Succeed())
}

var _ = Describe("Link on simulated hardware", func() {
	var (
		arbCfg arbiter.Config
		esbCfg esb.Config
	)

	BeforeEach(func() {
		arbCfg = arbiter.DefaultConfig()
		esbCfg = esb.DefaultConfig()
	})

	It("should deliver queued packets in order and receive from the peer",
		func() {
			p := newPlatform(arbCfg, esbCfg)
			p.send(5)

			Expect(p.link.Start()).To(Succeed())
			p.runFor(200 * time.Millisecond)

			delivered := p.driver.Delivered()
			Expect(delivered).To(HaveLen(5))
			for i, pl := range delivered {
				Expect(pl.Data).To(Equal([]byte{byte(i), 0x5A}))
			}

			s := p.link.Stats()
			Expect(s.TxDelivered).To(Equal(uint64(5)))
			Expect(s.QueueSize).To(BeZero())
			Expect(s.Extensions).NotTo(BeZero())
			Expect(s.RxDelivered).To(Equal(uint64(len(p.received))))
			Expect(p.received).NotTo(BeEmpty())
			for i := 1; i < len(p.received); i++ {
				Expect(p.received[i].Data[0]).
					To(Equal(p.received[i-1].Data[0] + 1))
			}

			Expect(p.fatals).To(BeEmpty())
			Expect(p.arbiter.Stats().Overruns).To(BeZero())
		})

	It("should move to a new slot when extensions are refused", func() {
		arbCfg.ExtendFailProbability = 1
		p := newPlatform(arbCfg, esbCfg)
		p.send(3)

		Expect(p.link.Start()).To(Succeed())
		p.runFor(200 * time.Millisecond)

		s := p.link.Stats()
		Expect(s.Slots).To(BeNumerically(">", 3))
		Expect(s.ExtendFailed).To(BeNumerically(">", 0))
		Expect(s.LeaseRequested).To(BeNumerically(">=", s.Slots))
		Expect(s.TxDelivered).To(Equal(uint64(3)))
		Expect(p.fatals).To(BeEmpty())
		Expect(p.arbiter.Stats().Overruns).To(BeZero())
	})

	It("should drop packets the peer never acknowledges", func() {
		esbCfg.LossProbability = 1
		p := newPlatform(arbCfg, esbCfg)
		p.send(2)

		Expect(p.link.Start()).To(Succeed())
		p.runFor(time.Second)

		s := p.link.Stats()
		Expect(p.driver.Delivered()).To(BeEmpty())
		Expect(s.TxDropped).To(Equal(uint64(2)))
		Expect(s.TxAttempts).To(Equal(uint64(20)))
		Expect(s.QueueSize).To(BeZero())
		Expect(s.State).To(Equal(timeslot.LinkReceiving))
		Expect(p.fatals).To(BeEmpty())
	})

	It("should keep asking through blocked and canceled requests", func() {
		arbCfg.BlockProbability = 0.3
		arbCfg.CancelProbability = 0.3
		arbCfg.ExtendFailProbability = 1
		arbCfg.Seed = 7
		p := newPlatform(arbCfg, esbCfg)

		Expect(p.link.Start()).To(Succeed())
		p.runFor(500 * time.Millisecond)

		s := p.link.Stats()
		Expect(s.LeasesLost).To(BeNumerically(">", 0))
		Expect(s.Blocked + s.Canceled).To(Equal(s.LeasesLost))
		Expect(s.Slots).To(BeNumerically(">", 0))
		Expect(p.fatals).To(BeEmpty())
	})

	It("should stop between slots", func() {
		p := newPlatform(arbCfg, esbCfg)

		Expect(p.link.Start()).To(Succeed())
		Expect(p.link.Stop()).To(Succeed())
		p.runFor(50 * time.Millisecond)

		s := p.link.Stats()
		Expect(s.Session).To(Equal(timeslot.SessionClosed))
		Expect(s.Slots).To(BeZero())
	})

	It("should refuse to stop while it holds the radio", func() {
		p := newPlatform(arbCfg, esbCfg)

		Expect(p.link.Start()).To(Succeed())
		p.runFor(50 * time.Millisecond)

		Expect(p.arbiter.InSlot()).To(BeTrue())
		Expect(p.link.Stop()).To(MatchError(timeslot.ErrNotSupported))
	})
})

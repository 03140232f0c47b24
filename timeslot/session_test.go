package timeslot

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Session", func() {
	var (
		f        *linkFixture
		earliest LeaseRequest
	)

	BeforeEach(func() {
		f = newLinkFixture()
		earliest = LeaseRequest{
			Kind:     RequestEarliest,
			HFClock:  HFClockXtalGuaranteed,
			Priority: RequestPriorityNormal,
			Length:   5 * time.Millisecond,
			Timeout:  500 * time.Millisecond,
		}
	})

	AfterEach(func() {
		f.mockCtrl.Finish()
	})

	open := func() {
		f.arbiter.EXPECT().OpenSession(f.link).Return(nil)
		f.arbiter.EXPECT().RequestLease(earliest).Return(nil)

		Expect(f.link.Start()).To(Succeed())
	}

	Context("start", func() {
		It("should open a session and request the earliest lease", func() {
			open()

			s := f.link.Stats()
			Expect(s.Session).To(Equal(SessionOpen))
			Expect(s.LeaseRequested).To(Equal(uint64(1)))
		})

		It("should refuse a second start", func() {
			open()

			Expect(f.link.Start()).To(MatchError(ErrAlreadyOpen))
		})

		It("should close the session again when the request fails", func() {
			requestErr := errors.New("no slot")
			f.arbiter.EXPECT().OpenSession(f.link).Return(nil)
			f.arbiter.EXPECT().RequestLease(earliest).Return(requestErr)
			f.arbiter.EXPECT().CloseSession().Return(nil)

			err := f.link.Start()

			Expect(err).To(MatchError(requestErr))
			Expect(f.link.Stats().Session).To(Equal(SessionClosed))
		})

		It("should report a session that cannot be opened", func() {
			f.arbiter.EXPECT().OpenSession(f.link).Return(errors.New("taken"))

			Expect(f.link.Start()).To(MatchError(ContainSubstring("taken")))
		})

		It("should reset the lost lease counters", func() {
			open()
			f.arbiter.EXPECT().RequestLease(earliest).Return(nil).Times(2)
			f.link.OnSessionEvent(SessionEventBlocked)
			f.link.OnSessionEvent(SessionEventCanceled)
			f.arbiter.EXPECT().CloseSession().Return(nil)
			Expect(f.link.Stop()).To(Succeed())
			f.link.OnSessionEvent(SessionEventClosed)

			open()

			s := f.link.Stats()
			Expect(s.Blocked).To(BeZero())
			Expect(s.Canceled).To(BeZero())
			Expect(s.LeasesLost).To(Equal(uint64(2)))
		})

		It("should use the address set given at start", func() {
			addr := Addressing{
				Channel:  40,
				Base0:    []byte{1, 2, 3, 4},
				Base1:    []byte{5, 6, 7, 8},
				Prefixes: []byte{0x11},
			}
			f.arbiter.EXPECT().OpenSession(f.link).Return(nil)
			f.arbiter.EXPECT().RequestLease(earliest).Return(nil)
			Expect(f.link.StartOn(addr)).To(Succeed())

			f.expectSlotStart()
			f.driver.EXPECT().Init(gomock.Any()).Return(nil)
			f.driver.EXPECT().SetAddressing(addr).Return(nil)
			f.driver.EXPECT().StartRx().Return(nil)
			f.link.HandleSignal(SignalSlotStart)
			f.run()

			Expect(f.link.State()).To(Equal(LinkReceiving))
		})
	})

	Context("stop", func() {
		It("should fail without a session", func() {
			Expect(f.link.Stop()).To(MatchError(ErrNotOpen))
		})

		It("should not stop during a lease", func() {
			open()
			f.startReceiving()

			Expect(f.link.Stop()).To(MatchError(ErrNotSupported))
			Expect(f.link.Stats().Session).To(Equal(SessionOpen))
		})

		It("should close the session between leases", func() {
			open()
			f.arbiter.EXPECT().CloseSession().Return(nil)

			Expect(f.link.Stop()).To(Succeed())

			f.link.OnSessionEvent(SessionEventClosed)
			Expect(f.link.Stats().Session).To(Equal(SessionClosed))
		})
	})

	Context("send", func() {
		It("should reject an oversized payload", func() {
			err := f.link.Send(make([]byte, MaxPayloadLength+1))

			Expect(err).To(MatchError(ErrPayloadTooLarge))
			Expect(f.link.Stats().QueueSize).To(BeZero())
		})

		It("should accept a full-size payload", func() {
			Expect(f.link.Send(make([]byte, MaxPayloadLength))).To(Succeed())
		})

		It("should fail without side effects on a full queue", func() {
			for i := 0; i < f.cfg.QueueCapacity; i++ {
				Expect(f.link.Send([]byte{byte(i)})).To(Succeed())
			}

			err := f.link.Send([]byte{0xFF})

			Expect(err).To(MatchError(ErrQueueFull))
			Expect(f.link.Stats().QueueSize).To(Equal(f.cfg.QueueCapacity))
			head, _ := f.link.queue.Peek()
			Expect(head.Data).To(Equal([]byte{0}))
		})

		It("should copy the data", func() {
			data := []byte{1, 2}
			Expect(f.link.Send(data)).To(Succeed())

			data[0] = 9

			head, _ := f.link.queue.Peek()
			Expect(head.Data).To(Equal([]byte{1, 2}))
		})
	})

	Context("session events", func() {
		BeforeEach(func() {
			open()
		})

		It("should request again once when blocked", func() {
			f.arbiter.EXPECT().RequestLease(earliest).Return(nil).Times(1)

			f.link.OnSessionEvent(SessionEventBlocked)

			s := f.link.Stats()
			Expect(s.Blocked).To(Equal(uint64(1)))
			Expect(s.Canceled).To(BeZero())
			Expect(s.LeasesLost).To(Equal(uint64(1)))
			Expect(f.hooked).To(ContainElement(HookPosLeaseLost))
		})

		It("should request again when canceled", func() {
			f.arbiter.EXPECT().RequestLease(earliest).Return(nil)

			f.link.OnSessionEvent(SessionEventCanceled)

			Expect(f.link.Stats().Canceled).To(Equal(uint64(1)))
		})

		It("should end a slot taken back while in use", func() {
			f.startReceiving()
			f.link.lease.Extended = 10 * time.Millisecond

			f.timer.EXPECT().Stop()
			f.driver.EXPECT().IsIdle().Return(false)
			f.radio.EXPECT().ForceDisable()
			f.timer.EXPECT().ClearPending()
			f.arbiter.EXPECT().RequestLease(earliest).Return(nil)
			f.driver.EXPECT().StopRx().Return(nil)
			f.expectQuiesce()

			f.link.OnSessionEvent(SessionEventCanceled)
			f.run()

			Expect(f.link.State()).To(Equal(LinkIdle))
			Expect(f.link.Stats().Lease).To(Equal(Lease{}))
			Expect(f.hooked).To(ContainElement(HookPosSlotEnd))

			f.arbiter.EXPECT().CloseSession().Return(nil)
			Expect(f.link.Stop()).To(Succeed())
		})

		It("should leave the radio alone when blocked between leases", func() {
			f.arbiter.EXPECT().RequestLease(earliest).Return(nil)

			f.link.OnSessionEvent(SessionEventBlocked)
			f.run()

			Expect(f.link.State()).To(Equal(LinkIdle))
			Expect(f.hooked).NotTo(ContainElement(HookPosSlotEnd))
		})

		It("should halt when the request after a loss fails", func() {
			f.arbiter.EXPECT().RequestLease(earliest).
				Return(errors.New("queue full"))

			f.link.OnSessionEvent(SessionEventBlocked)

			Expect(f.fatals).To(HaveLen(1))
		})

		It("should close an idle session", func() {
			f.arbiter.EXPECT().CloseSession().Return(nil)

			f.link.OnSessionEvent(SessionEventIdle)
		})

		It("should halt on an invalid callback return", func() {
			f.link.OnSessionEvent(SessionEventInvalidCallbackReturn)

			Expect(f.fatals).To(HaveLen(1))
			Expect(errors.Is(f.fatals[0], ErrInvalidCallbackReturn)).
				To(BeTrue())
			Expect(f.link.Send([]byte{1})).To(MatchError(ErrHalted))
			Expect(f.link.Start()).To(MatchError(ErrHalted))
		})

		It("should drop queued packets when halted", func() {
			Expect(f.link.Send([]byte{1})).To(Succeed())
			Expect(f.link.Send([]byte{2})).To(Succeed())

			f.link.OnSessionEvent(SessionEventInvalidCallbackReturn)

			Expect(f.fatals).To(HaveLen(1))
			Expect(f.link.Stats().QueueSize).To(BeZero())
			Expect(f.link.queue.Attempts()).To(BeZero())
		})

		It("should ignore flash operations and unknown events", func() {
			f.link.OnSessionEvent(SessionEventFlashOpSuccess)
			f.link.OnSessionEvent(SessionEventFlashOpError)
			f.link.OnSessionEvent(SessionEvent(99))

			Expect(f.fatals).To(BeEmpty())
			Expect(f.link.Stats().Session).To(Equal(SessionOpen))
		})
	})

	It("should name session events", func() {
		Expect(SessionEventIdle.String()).To(Equal("SessionIdle"))
		Expect(SessionEvent(99).String()).To(Equal("SessionEvent(99)"))
	})
})

package timeslot

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Signal handling", func() {
	var f *linkFixture

	BeforeEach(func() {
		f = newLinkFixture()
	})

	AfterEach(func() {
		f.mockCtrl.Finish()
	})

	Context("slot start", func() {
		It("should arm the timer and start receiving on an empty queue", func() {
			f.startReceiving()

			lease := f.link.Stats().Lease
			Expect(lease.Active).To(BeTrue())
			Expect(lease.Length).To(Equal(5 * time.Millisecond))
			Expect(lease.SafetyDeadline).To(Equal(4300 * time.Microsecond))
			Expect(lease.ExtendDeadline).To(Equal(3000 * time.Microsecond))
			Expect(f.link.Stats().Slots).To(Equal(uint64(1)))
			Expect(f.hooked).To(ContainElement(HookPosSlotStart))
		})

		It("should not initialize the driver twice", func() {
			f.startReceiving()

			f.expectSlotStart()
			f.link.HandleSignal(SignalSlotStart)
			f.run()

			Expect(f.link.State()).To(Equal(LinkReceiving))
		})
	})

	It("should forward radio activity to the driver", func() {
		f.driver.EXPECT().HandleRadioIRQ()

		Expect(f.link.HandleSignal(SignalRadioActivity)).To(Equal(NoAction()))
	})

	Context("safety deadline", func() {
		expectSurrender := func(busy bool) {
			gomock.InOrder(
				f.timer.EXPECT().Stop(),
				f.driver.EXPECT().IsIdle().Return(!busy),
			)
			if busy {
				f.radio.EXPECT().ForceDisable()
			}
			f.timer.EXPECT().ClearPending()
		}

		DescribeTable("should always request the next lease and end",
			func(state LinkState, busy bool) {
				f.link.state = state
				f.link.lease.Active = true
				expectSurrender(busy)
				if state == LinkReceiving {
					f.driver.EXPECT().StopRx().Return(nil)
				}
				if state != LinkIdle {
					f.expectQuiesce()
				}

				action := f.link.HandleSignal(SignalTimerSafetyDeadline)

				Expect(action.Kind).To(Equal(ActionRequestAndEnd))
				Expect(*action.Next).To(Equal(LeaseRequest{
					Kind:     RequestEarliest,
					HFClock:  HFClockXtalGuaranteed,
					Priority: RequestPriorityNormal,
					Length:   5 * time.Millisecond,
					Timeout:  500 * time.Millisecond,
				}))

				f.run()

				s := f.link.Stats()
				Expect(s.State).To(Equal(LinkIdle))
				Expect(s.Lease).To(Equal(Lease{}))
				Expect(s.LeaseRequested).To(Equal(uint64(1)))
			},
			Entry("idle", LinkIdle, false),
			Entry("receiving", LinkReceiving, true),
			Entry("transmitting", LinkTransmitting, true),
		)

		It("should surrender a slot in which the link listens", func() {
			f.startReceiving()

			expectSurrender(true)
			f.driver.EXPECT().StopRx().Return(nil)
			f.expectQuiesce()

			action := f.link.HandleSignal(SignalTimerSafetyDeadline)
			f.run()

			Expect(action.Kind).To(Equal(ActionRequestAndEnd))
			Expect(f.hooked).To(ContainElements(
				HookPosLeaseRequested, HookPosSlotEnd))
		})
	})

	Context("extend deadline", func() {
		It("should ask for an extension below the ceiling", func() {
			action := f.link.HandleSignal(SignalTimerExtendDeadline)

			Expect(action).To(Equal(ExtendAction(5 * time.Millisecond)))
		})

		It("should ask while one more extension stays below the ceiling",
			func() {
				f.link.lease.Extended = ExtendCeiling - 5*time.Millisecond -
					time.Nanosecond

				action := f.link.HandleSignal(SignalTimerExtendDeadline)

				Expect(action.Kind).To(Equal(ActionExtend))
			})

		It("should not ask once the ceiling would be reached", func() {
			f.link.lease.Extended = ExtendCeiling - 5*time.Millisecond

			action := f.link.HandleSignal(SignalTimerExtendDeadline)

			Expect(action).To(Equal(NoAction()))
			Expect(f.link.Stats().ExtendDenied).To(Equal(uint64(1)))
		})
	})

	Context("extend succeeded", func() {
		It("should shift the deadlines and grow the lease", func() {
			f.startReceiving()

			gomock.InOrder(
				f.timer.EXPECT().Stop(),
				f.timer.EXPECT().Shift(4975*time.Microsecond),
				f.timer.EXPECT().Start(),
			)

			action := f.link.HandleSignal(SignalExtendSucceeded)
			f.run()

			Expect(action).To(Equal(NoAction()))
			lease := f.link.Stats().Lease
			Expect(lease.Length).To(Equal(10 * time.Millisecond))
			Expect(lease.SafetyDeadline).To(Equal(9275 * time.Microsecond))
			Expect(lease.ExtendDeadline).To(Equal(7975 * time.Microsecond))
			Expect(lease.Extended).To(Equal(5 * time.Millisecond))
			Expect(f.link.Stats().Extensions).To(Equal(uint64(1)))
			Expect(f.hooked).To(ContainElement(HookPosLeaseExtended))
		})

		It("should grow the cumulative length monotonically", func() {
			f.startReceiving()
			f.timer.EXPECT().Stop().AnyTimes()
			f.timer.EXPECT().Shift(gomock.Any()).AnyTimes()
			f.timer.EXPECT().Start().AnyTimes()

			last := time.Duration(0)
			for i := 0; i < 20; i++ {
				Expect(f.link.HandleSignal(SignalTimerExtendDeadline).Kind).
					To(Equal(ActionExtend))
				f.link.HandleSignal(SignalExtendSucceeded)
				f.run()

				extended := f.link.Stats().Lease.Extended
				Expect(extended).To(BeNumerically(">", last))
				Expect(extended).To(BeNumerically("<", ExtendCeiling))
				last = extended
			}
		})
	})

	It("should end the slot when an extension fails", func() {
		f.startReceiving()
		f.link.lease.Extended = 15 * time.Millisecond

		f.driver.EXPECT().StopRx().Return(nil)
		f.expectQuiesce()

		action := f.link.HandleSignal(SignalExtendFailed)
		f.run()

		Expect(action).To(Equal(NoAction()))
		s := f.link.Stats()
		Expect(s.State).To(Equal(LinkIdle))
		Expect(s.Lease.Extended).To(Equal(time.Duration(0)))
		Expect(s.ExtendFailed).To(Equal(uint64(1)))
	})

	Context("unknown signal", func() {
		It("should halt and end the slot", func() {
			action := f.link.HandleSignal(Signal(42))

			Expect(action).To(Equal(EndAction()))
			Expect(f.fatals).To(HaveLen(1))
			Expect(errors.Is(f.fatals[0], ErrUnknownSignal)).To(BeTrue())

			var fatal *FatalError
			Expect(errors.As(f.fatals[0], &fatal)).To(BeTrue())
			Expect(fatal.Link).To(Equal("Link"))
		})

		It("should answer every later signal with end", func() {
			f.link.HandleSignal(Signal(42))

			Expect(f.link.HandleSignal(SignalSlotStart)).To(Equal(EndAction()))
			Expect(f.link.HandleSignal(SignalTimerExtendDeadline)).
				To(Equal(EndAction()))
			Expect(f.link.Stats().Halted).To(BeTrue())
			Expect(f.fatals).To(HaveLen(1))
		})
	})

	It("should name signals", func() {
		Expect(SignalTimerSafetyDeadline.String()).
			To(Equal("TimerSafetyDeadline"))
		Expect(Signal(42).String()).To(Equal("Signal(42)"))
		Expect(ActionRequestAndEnd.String()).To(Equal("RequestAndEnd"))
	})
})

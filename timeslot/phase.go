package timeslot

import (
	"errors"
	"fmt"
)

// runSlotBegin starts link activity at the beginning of a slot and after
// every extension. A queued packet takes priority over listening.
func (l *Link) runSlotBegin() {
	l.cs.Enter()
	cold := l.state == LinkIdle
	l.cs.Exit()

	if cold {
		if err := l.initDriver(); err != nil {
			l.halt("slot-begin", err)
			return
		}
	}

	l.cs.Enter()
	res, err := l.startActivityLocked()
	l.cs.Exit()

	if err != nil {
		l.halt("slot-begin", err)
		return
	}

	if res.dropped != nil {
		l.reportDropped(*res.dropped)
	}

	if res.sent != nil {
		l.logger.Debug().
			Int("attempt", res.attempt).
			Int("len", res.sent.Len()).
			Msg("transmitting head packet")
		l.invokeHook(HookPosTxAttempt, *res.sent, res.attempt)
	}
}

func (l *Link) initDriver() error {
	cfg := l.cfg.Link
	cfg.EventHandler = l.onLinkEvent

	if err := l.driver.Init(cfg); err != nil {
		return fmt.Errorf("init link driver: %w", err)
	}

	l.cs.Enter()
	addr := l.addr
	l.cs.Exit()

	if err := l.driver.SetAddressing(addr); err != nil {
		return fmt.Errorf("set addressing: %w", err)
	}

	return nil
}

type slotBeginResult struct {
	sent    *Payload
	dropped *Payload
	attempt int
}

func (l *Link) startActivityLocked() (slotBeginResult, error) {
	var res slotBeginResult

	if l.queue.Size() > 0 && l.state != LinkTransmitting {
		if l.queue.Attempts() >= l.cfg.MaxTxAttempts {
			p, _ := l.queue.Pop()
			l.stats.TxDropped++
			res.dropped = &p
		}

		if p, ok := l.queue.Peek(); ok {
			if l.state == LinkReceiving {
				if err := l.driver.StopRx(); err != nil {
					return res, fmt.Errorf("stop rx: %w", err)
				}
			}

			res.attempt = l.queue.CountAttempt()

			if err := l.driver.WriteTxPayload(p); err != nil {
				return res, fmt.Errorf("write tx payload: %w", err)
			}

			l.state = LinkTransmitting
			l.stats.TxAttempts++
			res.sent = &p

			return res, nil
		}
	}

	// Only an idle link starts listening here. A link still transmitting
	// keeps its packet in flight: every TX outcome moves it to reception
	// through resumeRxLocked, and slot-end resets it to idle otherwise.
	if l.state == LinkIdle {
		if err := l.driver.StartRx(); err != nil {
			return res, fmt.Errorf("start rx: %w", err)
		}

		l.state = LinkReceiving
	}

	return res, nil
}

// runSlotEnd quiesces the link driver after the slot has been surrendered or
// an extension was refused. An idle link has no driver to quiesce.
func (l *Link) runSlotEnd() {
	var err error

	l.cs.Enter()
	if l.state != LinkIdle {
		err = l.quiesceLocked()
	}
	l.lease.Extended = 0
	if !l.lease.Active {
		l.lease = Lease{}
	}
	l.state = LinkIdle
	lease := l.lease
	l.cs.Exit()

	if err != nil {
		l.halt("slot-end", err)
		return
	}

	l.invokeHook(HookPosSlotEnd, lease, nil)
}

func (l *Link) quiesceLocked() error {
	if l.state == LinkReceiving {
		if err := l.driver.StopRx(); err != nil {
			l.logger.Debug().Err(err).Msg("stop rx at slot end")
		}
	}

	if err := l.driver.FlushTx(); err != nil {
		return fmt.Errorf("flush tx: %w", err)
	}

	if err := l.driver.FlushRx(); err != nil {
		return fmt.Errorf("flush rx: %w", err)
	}

	if err := l.driver.Disable(); err != nil {
		return fmt.Errorf("disable link driver: %w", err)
	}

	return nil
}

// runRxDelivery hands one received packet to the application and comes
// back for the next one while the driver still holds any.
func (l *Link) runRxDelivery() {
	p, err := l.driver.ReadRxPayload()
	if errors.Is(err, ErrRxEmpty) {
		return
	}

	if err != nil {
		l.halt("rx-delivery", fmt.Errorf("read rx payload: %w", err))
		return
	}

	l.cs.Do(func() {
		l.stats.RxDelivered++
	})

	l.invokeHook(HookPosRxDelivered, p, nil)

	if l.rx != nil {
		l.rx.OnReceive(p)
	}

	l.rxDelivery.Pend()
}

// onLinkEvent is installed as the driver's event handler. It runs inside
// the radio signal.
func (l *Link) onLinkEvent(evt LinkEvent) {
	switch evt {
	case LinkEventTxSuccess:
		l.onTxOutcome(true)
	case LinkEventTxFailed:
		l.onTxOutcome(false)
	case LinkEventRxReceived:
		l.rxDelivery.Pend()
	default:
		l.logger.Warn().Stringer("event", evt).Msg("unknown link event")
	}
}

func (l *Link) onTxOutcome(delivered bool) {
	var (
		head    Payload
		removed bool
		stale   bool
		err     error
	)

	l.cs.Enter()
	if l.state != LinkTransmitting {
		stale = true
	} else {
		head, removed, err = l.settleHeadLocked(delivered)
		if err == nil {
			err = l.resumeRxLocked()
		}
	}
	l.cs.Exit()

	switch {
	case stale:
		l.logger.Debug().Bool("delivered", delivered).
			Msg("tx outcome outside a transmission")
	case err != nil:
		l.halt("tx-outcome", err)
	case delivered && removed:
		l.invokeHook(HookPosTxDelivered, head, nil)
	case removed:
		l.reportDropped(head)
	}
}

func (l *Link) settleHeadLocked(delivered bool) (Payload, bool, error) {
	if delivered {
		l.stats.TxDelivered++
		p, ok := l.queue.Pop()

		return p, ok, nil
	}

	l.stats.TxFailed++

	if err := l.driver.FlushTx(); err != nil {
		return Payload{}, false, fmt.Errorf("flush tx: %w", err)
	}

	if l.queue.Attempts() < l.cfg.MaxTxAttempts {
		return Payload{}, false, nil
	}

	p, ok := l.queue.Pop()
	if ok {
		l.stats.TxDropped++
	}

	return p, ok, nil
}

func (l *Link) resumeRxLocked() error {
	if err := l.driver.StartRx(); err != nil {
		return fmt.Errorf("start rx: %w", err)
	}

	l.state = LinkReceiving

	return nil
}

func (l *Link) reportDropped(p Payload) {
	l.logger.Info().
		Int("attempts", l.cfg.MaxTxAttempts).
		Int("len", p.Len()).
		Msg("failed to send, no ack")
	l.invokeHook(HookPosTxDropped, p, nil)
}

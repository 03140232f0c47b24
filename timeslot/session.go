package timeslot

import (
	"fmt"
)

// Start opens a session with the arbiter and asks for the first lease.
func (l *Link) Start() error {
	return l.start(nil)
}

// StartOn is Start with a different channel and address set than the one the
// link was built with. The override stays in effect for later sessions.
func (l *Link) StartOn(addr Addressing) error {
	return l.start(&addr)
}

func (l *Link) start(addr *Addressing) error {
	var err error

	l.cs.Do(func() {
		switch {
		case l.halted:
			err = ErrHalted
		case l.session == SessionOpen:
			err = ErrAlreadyOpen
		default:
			l.stats.Blocked = 0
			l.stats.Canceled = 0
			if addr != nil {
				l.addr = *addr
			}
		}
	})

	if err != nil {
		return err
	}

	if err := l.arbiter.OpenSession(l); err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	if err := l.arbiter.RequestLease(l.earliestRequest()); err != nil {
		if closeErr := l.arbiter.CloseSession(); closeErr != nil {
			l.logger.Warn().Err(closeErr).Msg("close session after failed request")
		}

		return fmt.Errorf("request lease: %w", err)
	}

	l.cs.Do(func() {
		l.session = SessionOpen
		l.stats.LeaseRequested++
	})

	l.logger.Info().Msg("session opened")
	l.invokeHook(HookPosLeaseRequested, l.earliestRequest(), nil)

	return nil
}

// Stop closes the session. Closing while a lease is in use is not
// supported; the caller has to try again between slots.
func (l *Link) Stop() error {
	var err error

	l.cs.Do(func() {
		switch {
		case l.session != SessionOpen:
			err = ErrNotOpen
		case l.lease.Active:
			err = ErrNotSupported
		}
	})

	if err != nil {
		return err
	}

	if err := l.arbiter.CloseSession(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	return nil
}

// Send copies data into the transmit queue. It goes out at the next slot
// begin.
func (l *Link) Send(data []byte) error {
	if len(data) > MaxPayloadLength {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}

	p := Payload{
		Pipe: l.cfg.Link.TxPipe,
		Data: append([]byte(nil), data...),
	}

	var err error

	l.cs.Do(func() {
		if l.halted {
			err = ErrHalted
			return
		}

		err = l.queue.Push(p)
	})

	return err
}

// OnSessionEvent handles the arbiter's lifecycle notifications.
func (l *Link) OnSessionEvent(evt SessionEvent) {
	if l.isHalted() {
		return
	}

	switch evt {
	case SessionEventBlocked, SessionEventCanceled:
		l.onLeaseLost(evt)
	case SessionEventIdle:
		if err := l.arbiter.CloseSession(); err != nil {
			l.halt("session-idle", fmt.Errorf("close session: %w", err))
		}
	case SessionEventClosed:
		l.cs.Do(func() {
			l.session = SessionClosed
			l.lease = Lease{}
		})
		l.logger.Info().Msg("session closed")
	case SessionEventInvalidCallbackReturn:
		l.halt("session-event", ErrInvalidCallbackReturn)
	case SessionEventFlashOpSuccess, SessionEventFlashOpError:
		// Flash operations do not concern the link.
	default:
		l.logger.Debug().
			Stringer("session_event", evt).
			Msg("session event ignored")
	}
}

// onLeaseLost asks again right away. The arbiter gives no hint of when the
// radio will be free, so there is nothing to wait for. A lease taken back
// while in use is surrendered like one that reached its safety deadline.
func (l *Link) onLeaseLost(evt SessionEvent) {
	var (
		lost    uint64
		revoked bool
	)

	l.cs.Do(func() {
		revoked = l.lease.Active
		l.lease.Active = false

		if evt == SessionEventBlocked {
			l.stats.Blocked++
		} else {
			l.stats.Canceled++
		}
		l.stats.LeasesLost++
		l.stats.LeaseRequested++
		lost = l.stats.Blocked + l.stats.Canceled
	})

	if revoked {
		l.surrenderRadio()
		l.slotEnd.Pend()
	}

	l.logger.Debug().
		Bool("revoked", revoked).
		Stringer("session_event", evt).
		Uint64("lost", lost).
		Msg("lease lost, requesting again")
	l.invokeHook(HookPosLeaseLost, evt, lost)

	req := l.earliestRequest()
	if err := l.arbiter.RequestLease(req); err != nil {
		l.halt("lease-lost", fmt.Errorf("request lease: %w", err))
		return
	}

	l.invokeHook(HookPosLeaseRequested, req, nil)
}

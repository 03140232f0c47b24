package timeslot

import "fmt"

// HandleSignal is the arbiter's callback. It is invoked once per signal at
// the highest priority and returns what the arbiter should do next.
func (l *Link) HandleSignal(sig Signal) Action {
	if l.isHalted() {
		return EndAction()
	}

	var action Action

	switch sig {
	case SignalSlotStart:
		action = l.onSlotStart()
	case SignalRadioActivity:
		l.driver.HandleRadioIRQ()
		action = NoAction()
	case SignalTimerSafetyDeadline:
		action = l.onSafetyDeadline()
	case SignalTimerExtendDeadline:
		action = l.onExtendDeadline()
	case SignalExtendSucceeded:
		action = l.onExtendSucceeded()
	case SignalExtendFailed:
		action = l.onExtendFailed()
	default:
		l.halt("signal", fmt.Errorf("%w: %s", ErrUnknownSignal, sig))
		return EndAction()
	}

	if sig != SignalRadioActivity {
		l.logger.Trace().
			Stringer("signal", sig).
			Stringer("action", action.Kind).
			Msg("signal handled")
	}

	return action
}

func (l *Link) onSlotStart() Action {
	safety := l.cfg.SlotLength - l.cfg.SafetyMargin
	extend := l.cfg.SlotLength - l.cfg.ExtendMargin

	var lease Lease

	l.cs.Do(func() {
		l.lease.Active = true
		l.lease.Length = l.cfg.SlotLength
		l.lease.SafetyDeadline = safety
		l.lease.ExtendDeadline = extend
		l.stats.Slots++
		lease = l.lease
	})

	l.timer.Arm(safety, extend)
	l.radio.PowerCycle()
	l.slotBegin.Pend()

	l.invokeHook(HookPosSlotStart, lease, nil)

	return NoAction()
}

// onSafetyDeadline surrenders the slot, whatever the link is doing.
func (l *Link) onSafetyDeadline() Action {
	l.surrenderRadio()

	var lease Lease

	l.cs.Do(func() {
		l.lease.Active = false
		l.stats.LeaseRequested++
		lease = l.lease
	})

	l.slotEnd.Pend()

	next := l.earliestRequest()
	l.invokeHook(HookPosLeaseRequested, next, lease)

	return RequestAndEndAction(next)
}

// surrenderRadio stops the lease timer and silences the radio so that
// nothing touches it once the lease is gone.
func (l *Link) surrenderRadio() {
	l.timer.Stop()

	if !l.driver.IsIdle() {
		l.radio.ForceDisable()
	}

	l.timer.ClearPending()
}

func (l *Link) onExtendDeadline() Action {
	var canExtend bool

	l.cs.Do(func() {
		canExtend = l.lease.Extended+l.cfg.ExtensionLength < ExtendCeiling
		if !canExtend {
			l.stats.ExtendDenied++
		}
	})

	if !canExtend {
		l.logger.Debug().Msg("extension ceiling reached")
		return NoAction()
	}

	return ExtendAction(l.cfg.ExtensionLength)
}

func (l *Link) onExtendSucceeded() Action {
	shift := l.cfg.ExtensionLength - l.cfg.ExtendSlack

	l.timer.Stop()
	l.timer.Shift(shift)
	l.timer.Start()

	var lease Lease

	l.cs.Do(func() {
		l.lease.Length += l.cfg.ExtensionLength
		l.lease.SafetyDeadline += shift
		l.lease.ExtendDeadline += shift
		l.lease.Extended += l.cfg.ExtensionLength
		l.stats.Extensions++
		lease = l.lease
	})

	// Extensions are where a queued packet gets its next chance to go out.
	l.slotBegin.Pend()

	l.invokeHook(HookPosLeaseExtended, lease, nil)

	return NoAction()
}

func (l *Link) onExtendFailed() Action {
	l.cs.Do(func() {
		l.stats.ExtendFailed++
	})

	l.slotEnd.Pend()

	return NoAction()
}

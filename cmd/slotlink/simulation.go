package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/sarchlab/slotlink/config"
	"github.com/sarchlab/slotlink/monitoring"
	"github.com/sarchlab/slotlink/sim/arbiter"
	"github.com/sarchlab/slotlink/sim/esb"
	"github.com/sarchlab/slotlink/sim/hwtimer"
	"github.com/sarchlab/slotlink/sim/timing"
	"github.com/sarchlab/slotlink/timeslot"
	"github.com/sarchlab/slotlink/tracing"
)

// progressSteps is how many pieces a run is cut into between checks for a
// halted link.
const progressSteps = 100

// A simulation is a link on simulated hardware driven by a traffic
// generator.
type simulation struct {
	cfg    config.File
	logger zerolog.Logger

	engine  *timing.SerialEngine
	timer   *hwtimer.Timer
	arbiter *arbiter.Arbiter
	driver  *esb.Driver
	radio   *esb.Radio
	link    *timeslot.Link
	traffic *trafficGenerator

	tracer    *tracing.SQLiteTracer
	occupancy *tracing.BusyTimeTracer
	monitor   *monitoring.Monitor

	received uint64
	fatal    error
}

func newSimulation(cfg config.File, logger zerolog.Logger) (*simulation, error) {
	s := &simulation{cfg: cfg, logger: logger}

	s.engine = timing.NewSerialEngine()
	if logger.GetLevel() <= zerolog.TraceLevel {
		s.engine.AcceptHook(timing.NewEventLogger(logger))
	}

	s.timer = hwtimer.NewTimer("Timer", s.engine, timing.PriorityHighest)
	s.arbiter = arbiter.MakeBuilder().
		WithEngine(s.engine).
		WithLeaseTimer(s.timer).
		WithConfig(cfg.Sim.Arbiter).
		WithLogger(logger).
		Build("Arbiter")
	s.driver = esb.MakeBuilder().
		WithEngine(s.engine).
		WithIRQRaiser(s.arbiter).
		WithConfig(cfg.Sim.Radio).
		WithLogger(logger).
		Build("ESB")
	s.radio = esb.NewRadio(s.driver)
	s.link = timeslot.MakeBuilder().
		WithEngine(s.engine).
		WithConfig(cfg.Link).
		WithLogger(logger).
		WithArbiter(s.arbiter).
		WithLinkDriver(s.driver).
		WithRadio(s.radio).
		WithLeaseTimer(s.timer).
		WithRxHandler(timeslot.RxHandlerFunc(s.onReceive)).
		WithFatalHandler(s.onFatal).
		Build("Link")
	s.traffic = newTrafficGenerator(
		s.engine, s.link, cfg.Sim.SendInterval, cfg.Sim.PayloadSize)

	s.occupancy = tracing.NewBusyTimeTracer(
		s.engine, tracing.KindFilter(tracing.KindSlot))
	tracing.CollectTrace(s.link, s.occupancy)

	if cfg.Sim.TracePath != "" {
		s.tracer = tracing.NewSQLiteTracer(cfg.Sim.TracePath, s.engine)
		if err := s.tracer.Init(); err != nil {
			return nil, err
		}
		tracing.CollectTrace(s.link, s.tracer)
	}

	if cfg.Monitor.Enabled {
		s.monitor = monitoring.NewMonitor().
			WithPortNumber(cfg.Monitor.Port).
			WithBrowser(cfg.Monitor.OpenBrowser).
			WithLogger(logger)
		s.monitor.RegisterEngine(s.engine)
		s.monitor.RegisterLink(s.link)
		s.monitor.RegisterOccupancy(s.link.Name(), s.occupancy)
	}

	return s, nil
}

func (s *simulation) onReceive(p timeslot.Payload) {
	s.received++
	s.logger.Debug().
		Uint8("pipe", p.Pipe).
		Hex("data", p.Data).
		Msg("received")
}

func (s *simulation) onFatal(err error) {
	s.fatal = err
}

// run starts the link, covers the configured duration and stops the link
// again if it is between slots.
func (s *simulation) run() error {
	if s.monitor != nil {
		if err := s.monitor.StartServer(); err != nil {
			return err
		}
	}

	if err := s.link.Start(); err != nil {
		return fmt.Errorf("start link: %w", err)
	}

	s.traffic.start()

	if err := s.advance(s.cfg.Sim.Duration); err != nil {
		return err
	}

	err := s.link.Stop()
	switch {
	case err == nil:
		s.logger.Info().Msg("session closed")
	case errors.Is(err, timeslot.ErrNotSupported), errors.Is(err, timeslot.ErrNotOpen):
		s.logger.Info().Err(err).Msg("session left as it is")
	default:
		return fmt.Errorf("stop link: %w", err)
	}

	return nil
}

func (s *simulation) advance(duration time.Duration) error {
	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("Virtual time (µs)",
			uint64(duration/time.Microsecond))
		defer s.monitor.CompleteProgressBar(bar)
	}

	start := s.engine.Now()
	step := max(duration/progressSteps, time.Microsecond)

	for elapsed := time.Duration(0); elapsed < duration; {
		elapsed = min(elapsed+step, duration)

		if err := s.engine.RunUntil(start + elapsed); err != nil {
			return fmt.Errorf("run: %w", err)
		}

		if bar != nil {
			bar.SetFinished(uint64(elapsed / time.Microsecond))
		}

		if s.fatal != nil {
			return s.fatal
		}
	}

	return nil
}

// close flushes the trace and stops the monitor.
func (s *simulation) close() error {
	var errs []error

	if s.tracer != nil {
		errs = append(errs, s.tracer.Close())
	}

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		errs = append(errs, s.monitor.Shutdown(ctx))
	}

	return errors.Join(errs...)
}

func (s *simulation) report(w io.Writer) {
	ls := s.link.Stats()
	as := s.arbiter.Stats()
	ds := s.driver.Stats()
	now := s.engine.Now()

	share := 0.0
	if now > 0 {
		share = float64(s.occupancy.BusyTime()) / float64(now)
	}

	fmt.Fprintf(w, "virtual time      %s\n", now)
	fmt.Fprintf(w, "link state        %s, session %s\n", ls.State, ls.Session)
	fmt.Fprintf(w, "slots             %d (%.1f%% of the time)\n",
		ls.Slots, 100*share)
	fmt.Fprintf(w, "extensions        %d granted, %d refused, %d not asked\n",
		ls.Extensions, ls.ExtendFailed, ls.ExtendDenied)
	fmt.Fprintf(w, "leases lost       %d blocked, %d canceled\n",
		ls.Blocked, ls.Canceled)
	fmt.Fprintf(w, "offered           %d accepted, %d refused (queue full)\n",
		s.traffic.accepted, s.traffic.rejected)
	fmt.Fprintf(w, "transmitted       %d delivered, %d failed, %d dropped, %d queued\n",
		ls.TxDelivered, ls.TxFailed, ls.TxDropped, ls.QueueSize)
	fmt.Fprintf(w, "received          %d\n", s.received)
	fmt.Fprintf(w, "radio             %d attempts, %d acked, %d aborted\n",
		ds.Attempts, ds.Acked, ds.Aborted)
	fmt.Fprintf(w, "arbiter           %d requests, %d grants, %d overruns\n",
		as.Requests, as.Grants, as.Overruns)

	if s.tracer != nil {
		fmt.Fprintf(w, "trace             %s\n", s.tracer.Path())
	}
}
